package auth

import "fmt"

// Profile is the provider-specific user-info document. Its shape is not
// ours to define, so access goes through typed accessors that fail
// explicitly instead of assuming a schema.
type Profile map[string]interface{}

// StringField resolves key to a non-empty string value.
func (p Profile) StringField(key string) (string, error) {
	raw, ok := p[key]
	if !ok {
		return "", fmt.Errorf("profile field %q is missing", key)
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("profile field %q is not a string", key)
	}

	if value == "" {
		return "", fmt.Errorf("profile field %q is empty", key)
	}

	return value, nil
}

// Identity returns the best available principal name, trying the given
// keys in order. Falls back to "unknown" so a granted login is never
// blocked on a cosmetic field.
func (p Profile) Identity(keys ...string) string {
	for _, key := range keys {
		if value, err := p.StringField(key); err == nil {
			return value
		}
	}
	return "unknown"
}
