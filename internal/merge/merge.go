// Package merge holds the only primitives allowed to combine settings data:
// ordered list union, list concatenation and map overlay.
package merge

// ListOptions controls List
type ListOptions struct {
	// Dedupe keeps the first occurrence of each value and drops later ones
	Dedupe bool
}

// MapOptions controls Map
type MapOptions struct {
	// Overwrite lets incoming values replace existing ones
	Overwrite bool
}

// List merges incoming into existing. With Dedupe the result holds each value
// once, existing order first, then new values in incoming order. Duplicates
// already present in existing collapse to their first position.
// Without Dedupe it is plain concatenation.
func List[T comparable](existing, incoming []T, opts ListOptions) []T {
	if !opts.Dedupe {
		return Append(existing, incoming)
	}

	seen := make(map[T]struct{}, len(existing)+len(incoming))
	result := make([]T, 0, len(existing)+len(incoming))
	for _, group := range [][]T{existing, incoming} {
		for _, v := range group {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// Append concatenates incoming after existing. Used for values without
// identity, such as hook entries, where repeats are meaningful.
func Append[T any](existing, incoming []T) []T {
	result := make([]T, 0, len(existing)+len(incoming))
	result = append(result, existing...)
	return append(result, incoming...)
}

// Map overlays incoming onto existing and returns existing (allocated when
// nil). Without Overwrite a key is only set when existing lacks it.
func Map[K comparable, V any](existing, incoming map[K]V, opts MapOptions) map[K]V {
	if existing == nil {
		existing = make(map[K]V, len(incoming))
	}
	for k, v := range incoming {
		if _, ok := existing[k]; ok && !opts.Overwrite {
			continue
		}
		existing[k] = v
	}
	return existing
}

// Contains reports whether v is in list
func Contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Missing returns the values of before that are absent from after, in order.
func Missing[T comparable](before, after []T) []T {
	present := make(map[T]struct{}, len(after))
	for _, v := range after {
		present[v] = struct{}{}
	}
	var missing []T
	for _, v := range before {
		if _, ok := present[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
