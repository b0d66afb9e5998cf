package resilience

import (
	"encoding/json"
	"html"
	"regexp"
)

// Upstream feeds occasionally relay user-authored text (team descriptions,
// venue notes). Strip anything that could execute if the value ever reaches
// a browser, then entity-encode the rest.
var (
	scriptRe     = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	iframeRe     = regexp.MustCompile(`(?is)<iframe.*?>.*?</iframe>`)
	jsProtocolRe = regexp.MustCompile(`(?i)javascript:`)
)

// SanitizeBody decodes a JSON payload, scrubs every string value recursively
// through nested objects and arrays, and re-encodes it. Non-JSON input is a
// KindParse error (retryable at the client level).
func SanitizeBody(provider string, body []byte) ([]byte, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &Error{
			Kind:     KindParse,
			Provider: provider,
			Msg:      "response is not valid JSON",
			Err:      err,
		}
	}

	cleaned := sanitizeValue(decoded)

	out, err := json.Marshal(cleaned)
	if err != nil {
		return nil, &Error{
			Kind:     KindParse,
			Provider: provider,
			Msg:      "failed to re-encode sanitized payload",
			Err:      err,
		}
	}
	return out, nil
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return SanitizeString(val)
	case map[string]any:
		for k, inner := range val {
			val[k] = sanitizeValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = sanitizeValue(inner)
		}
		return val
	default:
		return v
	}
}

// SanitizeString removes script/iframe blocks and javascript: schemes,
// then HTML-entity-encodes what remains.
func SanitizeString(s string) string {
	s = scriptRe.ReplaceAllString(s, "")
	s = iframeRe.ReplaceAllString(s, "")
	s = jsProtocolRe.ReplaceAllString(s, "")
	return html.EscapeString(s)
}
