package tools

// Args holds the validated, defaulted arguments of one call. The getters
// return zero values for absent keys, which is safe because validation has
// already rejected anything malformed and filled every default in.
type Args map[string]any

// Has reports whether a value is present for key. Optional fields without
// defaults are the only ones that can be absent after validation.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns the string value for key, or "" when absent.
func (a Args) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the numeric value for key truncated to int, or 0 when
// absent. Numbers arrive as float64 from JSON decoding but defaults may
// be declared as untyped ints, so both are accepted.
func (a Args) Int(key string) int {
	switch n := a[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// Float returns the numeric value for key, or 0 when absent.
func (a Args) Float(key string) float64 {
	switch n := a[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Bool returns the boolean value for key, or false when absent.
func (a Args) Bool(key string) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return false
}

// StringSlice returns the validated array value for key as strings.
func (a Args) StringSlice(key string) []string {
	items, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// IntSlice returns the validated array value for key as ints.
func (a Args) IntSlice(key string) []int {
	items, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		}
	}
	return out
}

// StringMap returns the validated record value for key as a string map.
func (a Args) StringMap(key string) map[string]string {
	m, ok := a[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
