package domain

// group holds the items that share a key, in input order.
type group[T any] struct {
	key   string
	items []T
}

// groupOrdered buckets items by key in a single pass. Groups appear in the
// order their key is first seen.
func groupOrdered[T any](items []T, key func(T) string) []group[T] {
	index := make(map[string]int)
	var groups []group[T]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group[T]{key: k})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}

func byName(o StormObservation) string { return o.Name }

func byType(o StormObservation) string { return o.Type }
