package logging

import (
	"net/url"
	"regexp"
	"strings"
)

// RedactedText is the replacement text for sensitive data
const RedactedText = "[REDACTED]"

var (
	// Query parameters whose values must never reach the logs
	sensitiveParams = []string{"token", "access_token", "api_key", "apikey", "key", "password", "secret", "sig"}

	// user:pass@host inside free text such as error messages
	userinfoPattern = regexp.MustCompile(`://[^/\s:@]+:[^/\s@]+@`)

	// key=value pairs for the sensitive parameters inside free text
	paramPattern = regexp.MustCompile(`(?i)\b(token|access_token|api_key|apikey|key|password|secret|sig)=[^&\s"]+`)
)

// SanitizeURL removes userinfo and the values of secret-looking query
// parameters from a URI before it is logged. Unparsable input is returned
// with the same substitutions applied as free text.
func SanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return SanitizeText(raw)
	}

	if u.User != nil {
		u.User = url.User(RedactedText)
	}

	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for name := range q {
			for _, s := range sensitiveParams {
				if strings.EqualFold(name, s) {
					q.Set(name, RedactedText)
					changed = true
				}
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	out := u.String()
	// url.User escapes the brackets; keep the marker readable.
	return strings.ReplaceAll(out, "%5BREDACTED%5D", RedactedText)
}

// SanitizeText applies URL credential redaction to arbitrary text, such as an
// error message that embeds a request URI.
func SanitizeText(s string) string {
	s = userinfoPattern.ReplaceAllString(s, "://"+RedactedText+"@")
	return paramPattern.ReplaceAllString(s, "${1}="+RedactedText)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
