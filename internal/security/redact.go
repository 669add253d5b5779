package security

import "strings"

const masked = "***"

var sensitiveSubstrings = []string{
	"token",
	"password",
	"passwd",
	"pwd",
	"authorization",
	"apikey",
	"api_key",
	"access_key",
	"secretkey",
	"secret_key",
	"private_key",
	"privatekey",
	"credential",
	"cookie",
	"bearer",
	"passphrase",
}

var allowList = map[string]struct{}{
	"secret_name":      {},
	"credentialsmode":  {},
	"credentials_mode": {},
}

// RedactArguments returns a copy of arguments with sensitive values replaced.
// Nested maps are redacted recursively.
func RedactArguments(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	redacted := make(map[string]any, len(values))
	for key, value := range values {
		if IsSensitiveKey(key) {
			redacted[key] = masked
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			redacted[key] = RedactArguments(nested)
			continue
		}
		redacted[key] = value
	}
	return redacted
}

// DropSecrets returns a copy of params without sensitive keys at any depth.
// Connection parameters returned by DSS are passed through it before they
// leave the process.
func DropSecrets(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for key, value := range params {
		if IsSensitiveKey(key) {
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			out[key] = DropSecrets(nested)
			continue
		}
		out[key] = value
	}
	return out
}

// IsSensitiveKey reports whether key names a credential-like value.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	if _, ok := allowList[lower]; ok {
		return false
	}
	if strings.Contains(lower, "secret") && strings.Contains(lower, "name") {
		return false
	}
	if strings.Contains(lower, "secret") {
		return true
	}
	for _, part := range sensitiveSubstrings {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
