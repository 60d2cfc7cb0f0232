package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeBlockPattern matches markdown code blocks with an optional language tag.
var codeBlockPattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// ExtractJSON extracts a JSON document from a completion response that may be
// wrapped in markdown or prose. Code blocks are preferred over raw objects.
func ExtractJSON(response string) (string, error) {
	if s, ok := extractFromCodeBlock(response); ok {
		return s, nil
	}
	if s, ok := extractRawJSON(response); ok {
		return s, nil
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

func extractFromCodeBlock(response string) (string, bool) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if isValidJSON(content) {
			return content, true
		}
	}
	return "", false
}

func extractRawJSON(response string) (string, bool) {
	startObj := strings.Index(response, "{")
	startArr := strings.Index(response, "[")

	start, openBr, closeBr := -1, byte('{'), byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start, openBr, closeBr = startArr, '[', ']'
	}
	if start < 0 {
		return "", false
	}

	// Scan for the matching close bracket, ignoring brackets inside strings.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case openBr:
			depth++
		case closeBr:
			depth--
			if depth == 0 {
				candidate := response[start : i+1]
				if isValidJSON(candidate) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}

func isValidJSON(s string) bool {
	return json.Valid([]byte(s))
}
