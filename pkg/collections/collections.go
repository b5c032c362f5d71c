package collections

// Apply applies the applicator function to each item in the input slice.
func Apply[T, V any](items []T, applicator func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = applicator(item)
	}
	return result
}

func ApplyVariadic[T, V any](applicator func(T) V, items ...T) []V {
	return Apply(items, applicator)
}

// Find returns the first item matching the predicate.
func Find[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}

	var zero T
	return zero, false
}

// FindOrFirst returns the first item matching the predicate, falling back
// to the first item. ok is false only when items is empty.
func FindOrFirst[T any](items []T, match func(T) bool) (T, bool) {
	if item, ok := Find(items, match); ok {
		return item, true
	}

	if len(items) == 0 {
		var zero T
		return zero, false
	}

	return items[0], true
}
