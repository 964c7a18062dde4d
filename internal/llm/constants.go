package llm

// Provider constants
const (
	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI Provider = "openai"

	// ProviderOllama represents the Ollama provider
	ProviderOllama Provider = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic Provider = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultProvider is used when configuration names no provider.
const DefaultProvider = ProviderOpenAI

// DefaultOllamaURL is the default URL for a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// DefaultModelForProvider returns the default chat model ID for a provider.
func DefaultModelForProvider(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderOllama:
		return "llama3.1"
	case ProviderAnthropic:
		return "claude-sonnet-4-20250514"
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return ""
	}
}
