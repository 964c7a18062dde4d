package llm

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// StructuredChain is a reusable pipeline: template -> model -> parser.
// Each caller declares its own result type T, so the model reply arrives
// already typed instead of as free text.
type StructuredChain[T any] struct {
	chain compose.Runnable[map[string]any, T]
	name  string
}

// NewStructuredChain compiles an Eino graph that renders templateStr with the
// invocation input, sends it to chatModel, and parses the reply into T.
func NewStructuredChain[T any](
	ctx context.Context,
	name string,
	chatModel model.BaseChatModel,
	templateStr string,
) (*StructuredChain[T], error) {

	tmpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	templateFunc := func(ctx context.Context, input map[string]any) ([]*schema.Message, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, input); err != nil {
			return nil, fmt.Errorf("execute template: %w", err)
		}
		return []*schema.Message{
			{Role: schema.User, Content: buf.String()},
		}, nil
	}

	// Wrapping BaseChatModel in a lambda accepts models without tool support.
	modelFunc := func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
		return chatModel.Generate(ctx, input)
	}

	parserFunc := func(ctx context.Context, output *schema.Message) (T, error) {
		return ParseStructured[T](output.Content)
	}

	graph := compose.NewGraph[map[string]any, T]()

	_ = graph.AddLambdaNode("prompt", compose.InvokableLambda(templateFunc))
	_ = graph.AddLambdaNode("model", compose.InvokableLambda(modelFunc))
	_ = graph.AddLambdaNode("parser", compose.InvokableLambda(parserFunc))

	_ = graph.AddEdge(compose.START, "prompt")
	_ = graph.AddEdge("prompt", "model")
	_ = graph.AddEdge("model", "parser")
	_ = graph.AddEdge("parser", compose.END)

	compiled, err := graph.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chain: %w", err)
	}

	return &StructuredChain[T]{chain: compiled, name: name}, nil
}

// Name returns the chain's identifier, used in error wrapping and logs.
func (c *StructuredChain[T]) Name() string { return c.name }

// Invoke executes the chain with the given template input.
func (c *StructuredChain[T]) Invoke(ctx context.Context, input map[string]any) (T, error) {
	out, err := c.chain.Invoke(ctx, input)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("chain %s: %w", c.name, err)
	}
	return out, nil
}
