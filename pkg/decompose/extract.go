package decompose

import "strings"

// ExtractJSON returns the JSON object embedded in model output.
//
// Text that already starts with '{' and ends with '}' after trimming is
// returned unchanged. Otherwise the span from the first '{' to the last '}'
// is returned. Without braces the input is returned as is.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return text
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
