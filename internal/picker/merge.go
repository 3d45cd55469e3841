package picker

// IndexOf returns the position of the option with the given key, or -1
func IndexOf[T Keyed](options []T, key string) int {
	for i, o := range options {
		if o.Key() == key {
			return i
		}
	}
	return -1
}

// MergePreload puts item in front of options unless an option with the same
// key is already present, in which case options is returned untouched
func MergePreload[T Keyed](options []T, item T) []T {
	if IndexOf(options, item.Key()) >= 0 {
		return options
	}
	merged := make([]T, 0, len(options)+1)
	merged = append(merged, item)
	return append(merged, options...)
}
