package logging

import (
	"regexp"
	"strings"
)

// Redactor masks credentials in log values.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternJWT         = "jwt"
	PatternAPIKey      = "api_key"
	PatternQueryCode   = "query_code"
)

// NewRedactor creates a Redactor with the built-in patterns. Order matters:
// bearer headers are masked before the bare JWT pattern sees them.
func NewRedactor() *Redactor {
	defs := []struct {
		name        string
		regex       string
		replacement string
	}{
		{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
		{PatternJWT, `eyJ[a-zA-Z0-9_\-]+\.[a-zA-Z0-9_\-]+\.[a-zA-Z0-9_\-]*`, "eyJ***"},
		{PatternAPIKey, `(?i)(api[-_]?key|x-functions-key)([=:]\s*)[^\s&"]+`, "$1$2***"},
		{PatternQueryCode, `([?&]code=)[^&\s"]+`, "$1***"},
	}

	r := &Redactor{}
	for _, d := range defs {
		r.patterns = append(r.patterns, &redactPattern{
			name:        d.name,
			regex:       regexp.MustCompile(d.regex),
			replacement: d.replacement,
		})
	}
	return r
}

// RedactString masks every credential-looking substring of value.
func (r *Redactor) RedactString(value string) string {
	if r == nil || value == "" {
		return value
	}

	redacted := value
	for _, p := range r.patterns {
		redacted = p.regex.ReplaceAllString(redacted, p.replacement)
	}
	return redacted
}

// RedactArgs redacts variadic log arguments of the form key1, value1, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if r == nil || len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = redactValue(redacted[i])
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

// isSensitiveKey checks if a key name indicates secret material.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	for _, sensitive := range []string{
		"password", "secret", "token", "api_key", "apikey",
		"authorization", "functions_key", "functions-key", "private_key",
	} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue replaces a sensitive value, keeping a short prefix of longer
// strings for correlation.
func redactValue(value any) any {
	v, ok := value.(string)
	if !ok {
		return "***"
	}
	if v == "" {
		return ""
	}
	return RedactKey(v)
}

// RedactKey keeps the first four characters of a key.
func RedactKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "***"
}
