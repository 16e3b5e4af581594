package validation

import (
	"fmt"
	"strings"
)

func requiredKey(obj map[string]any, shape, key string) (any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, schemaError(shape, key, ErrMissingKey, "")
	}
	return v, nil
}

// nonEmptyString returns the trimmed string under key.
func nonEmptyString(obj map[string]any, shape, key string) (string, error) {
	v, err := requiredKey(obj, shape, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", schemaError(shape, key, ErrWrongType, fmt.Sprintf("want string, got %T", v))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", schemaError(shape, key, ErrInvalidValue, "empty string")
	}
	return s, nil
}

// optionalString accepts a missing key or null as the empty value.
func optionalString(obj map[string]any, shape, key string) (*string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, nil //nolint:nilnil // absent is not an error
	}
	s, ok := v.(string)
	if !ok {
		return nil, schemaError(shape, key, ErrWrongType, fmt.Sprintf("want string or null, got %T", v))
	}
	return &s, nil
}

func stringList(obj map[string]any, shape, key string) ([]string, error) {
	v, err := requiredKey(obj, shape, key)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, schemaError(shape, key, ErrWrongType, fmt.Sprintf("want list, got %T", v))
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, schemaError(shape, key, ErrWrongType, fmt.Sprintf("item %d: want string, got %T", i, item))
		}
		out = append(out, s)
	}
	return out, nil
}

// nonEmptyStrings trims every item and rejects empty ones.
func nonEmptyStrings(shape, key string, items []string) ([]string, error) {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.TrimSpace(s)
		if out[i] == "" {
			return nil, schemaError(shape, key, ErrInvalidValue, fmt.Sprintf("item %d is empty", i))
		}
	}
	return out, nil
}
