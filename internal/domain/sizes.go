package domain

// DefaultSizes is the size list injected whenever a game's configuration has
// no usable sizes entry.
func DefaultSizes() []map[string]any {
	return []map[string]any{{"width": 600, "height": 400}}
}

// SanitizeConfiguration normalizes the sizes key of an incoming
// configuration. Best-effort: malformed entries are silently discarded, never
// rejected, and an unusable list falls back to the default. Every other
// configuration key passes through untouched.
func SanitizeConfiguration(cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}

	sizes := sanitizeSizes(out["sizes"])
	if len(sizes) == 0 {
		sizes = DefaultSizes()
	}
	out["sizes"] = sizes
	return out
}

// sanitizeSizes keeps only entries carrying both width and height as
// non-negative numbers. Strings, missing keys and negatives are dropped.
func sanitizeSizes(value any) []map[string]any {
	var entries []any
	switch v := value.(type) {
	case []any:
		entries = v
	case []map[string]any:
		// Already-sanitized lists re-enter here on subsequent updates.
		for _, e := range v {
			entries = append(entries, e)
		}
	default:
		return nil
	}

	sizes := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		size, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		width, ok := toDimension(size["width"])
		if !ok {
			continue
		}
		height, ok := toDimension(size["height"])
		if !ok {
			continue
		}
		sizes = append(sizes, map[string]any{"width": width, "height": height})
	}
	return sizes
}

// toDimension accepts numeric values only; numeric strings do not count.
func toDimension(value any) (int, bool) {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	default:
		return 0, false
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}
