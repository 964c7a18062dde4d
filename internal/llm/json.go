package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Repair regexes for common structured-output defects, compiled once.
var (
	// ,} or ,] -> } or ]
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

	// {'key': -> {"key":
	singleQuoteKeyRegex = regexp.MustCompile(`([{,]\s*)'(\w+)'(\s*:)`)
)

// ParseStructured extracts a JSON value from a model reply and unmarshals it
// into T. Markdown fences and trailing prose are tolerated; a small set of
// syntax repairs is attempted before giving up.
func ParseStructured[T any](response string) (T, error) {
	var result T

	cleaned := stripFences(response)
	if cleaned == "" {
		return result, fmt.Errorf("no JSON found in response")
	}

	idx := strings.IndexAny(cleaned, "{[")
	if idx == -1 {
		// The whole reply may be a quoted string that itself contains JSON.
		var asString string
		if err := json.Unmarshal([]byte(cleaned), &asString); err == nil {
			return ParseStructured[T](asString)
		}
		return result, fmt.Errorf("no JSON start ({ or [) found")
	}

	// Decoder parses one value and ignores trailing text.
	jsonPart := cleaned[idx:]
	if err := json.NewDecoder(strings.NewReader(jsonPart)).Decode(&result); err != nil {
		repaired := repairJSON(jsonPart)
		if repaired != jsonPart {
			if err2 := json.NewDecoder(strings.NewReader(repaired)).Decode(&result); err2 == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("parse JSON: %w", err)
	}

	return result, nil
}

// repairJSON fixes trailing commas, single-quoted keys, and truncation.
func repairJSON(input string) string {
	out := trailingCommaRegex.ReplaceAllString(input, `$1`)
	out = singleQuoteKeyRegex.ReplaceAllString(out, `$1"$2"$3`)
	return closeTruncated(out)
}

// closeTruncated balances quotes, braces, and brackets on replies that were
// cut off mid-value.
func closeTruncated(input string) string {
	quotes := 0
	escaped := false
	for _, c := range input {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			quotes++
		}
	}
	if quotes%2 != 0 {
		input += `"`
	}

	for i := strings.Count(input, "[") - strings.Count(input, "]"); i > 0; i-- {
		input += "]"
	}
	for i := strings.Count(input, "{") - strings.Count(input, "}"); i > 0; i-- {
		input += "}"
	}
	return input
}

// stripFences removes surrounding markdown code fences.
func stripFences(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
