package fplsync

// DedupeLast collapses items sharing a natural key, keeping the last
// occurrence in source order. Output preserves each key's first-seen
// position. Runs on every batch before it reaches the sink: a single
// multi-row upsert cannot touch the same key twice.
func DedupeLast[T any, K comparable](items []T, key func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	out := make([]T, 0, len(items))
	seen := make(map[K]int, len(items))
	for _, item := range items {
		k := key(item)
		if idx, ok := seen[k]; ok {
			out[idx] = item
			continue
		}
		seen[k] = len(out)
		out = append(out, item)
	}
	return out
}
