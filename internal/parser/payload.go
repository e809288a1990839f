// internal/parser/payload.go
package parser

import (
	"encoding/json"
	"strings"
	"unicode"
)

// PayloadKind tells whether the generative service wrapped its answer in JSON.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadJSON
)

// Payload is the generative-service answer resolved once at the boundary.
type Payload struct {
	Kind PayloadKind
	// Roteiro is the script string found inside a JSON wrapper.
	Roteiro string
	// Value is the untouched raw input.
	Value string
	// Object is the decoded JSON object when Kind is PayloadJSON.
	Object map[string]any
}

// Text returns the script to parse: the wrapped script for JSON payloads that carry
// one, otherwise the raw input.
func (p Payload) Text() string {
	if p.Kind == PayloadJSON && p.Roteiro != "" {
		return p.Roteiro
	}
	return p.Value
}

var scriptKeys = []string{"roteiro", "content", "script", "texto_completo"}

var knownPayloadKeys = map[string]bool{
	"roteiro": true, "content": true, "script": true, "texto_completo": true,
	"slides": true, "texto": true, "imagem": true, "title": true, "titulo": true,
	"stories": true, "gpsc": true,
}

// Unwrap decodes a `{"roteiro": "..."}` style wrapper. Anything that is not a JSON
// object with a known key is treated as plain text; decoding errors stay local.
func Unwrap(raw string) Payload {
	p := Payload{Kind: PayloadText, Value: raw}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return p
	}

	obj, ok := decodeObject(trimmed)
	if !ok {
		return p
	}
	recognized := false
	for k := range obj {
		if knownPayloadKeys[strings.ToLower(k)] {
			recognized = true
			break
		}
	}
	if !recognized {
		return p
	}

	p.Kind = PayloadJSON
	p.Object = obj
	p.Roteiro = lookupString(obj, scriptKeys...)
	return p
}

// decodeObject decodes the JSON object that closes s. A preamble is tolerated, but
// text after the object means the braces belong to prose and s is not a payload.
func decodeObject(s string) (map[string]any, bool) {
	cleaned := cleanJSONString(s)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, false
	}
	if !strings.HasSuffix(strings.TrimSpace(jsonNoiseReplacer.Replace(s)), cleaned) {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj, true
	}
	// Models often emit raw line breaks inside string values.
	if err := json.Unmarshal([]byte(escapeRawNewlines(cleaned)), &obj); err == nil {
		return obj, true
	}
	return nil, false
}

// escapeRawNewlines escapes literal line breaks and tabs found inside JSON strings.
func escapeRawNewlines(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString && c == '\n':
			b.WriteString(`\n`)
			continue
		case inString && c == '\t':
			b.WriteString(`\t`)
			continue
		case inString && c == '\r':
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// lookupString returns the first non-empty string value among keys (case-insensitive).
func lookupString(obj map[string]any, keys ...string) string {
	for _, want := range keys {
		for k, v := range obj {
			if !strings.EqualFold(k, want) {
				continue
			}
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```JSON", "",
	"```", "",
	"\ufeff", "",
	"\u00a0", " ",
	"\u2028", "\n",
	"\u2029", "\n",
)

// cleanJSONString strips markdown fences, invisible characters and any preamble
// before the first '{' or '[', then cuts at the matching closing bracket.
func cleanJSONString(s string) string {
	if s == "" {
		return s
	}

	s = jsonNoiseReplacer.Replace(s)
	s = strings.TrimSpace(s)

	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	s = strings.TrimSpace(s[start:])

	openCh, closeCh := byte('{'), byte('}')
	if s[0] == '[' {
		openCh, closeCh = '[', ']'
	}

	balance := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case openCh:
			balance++
		case closeCh:
			balance--
			if balance == 0 {
				return strings.TrimSpace(s[:i+1])
			}
		}
	}

	if end := strings.LastIndexByte(s, closeCh); end != -1 {
		return strings.TrimSpace(s[:end+1])
	}
	return s
}
