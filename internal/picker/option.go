package picker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Keyed is implemented by every record a picker can list. Keys are compared
// as strings whatever the underlying id type is
type Keyed interface {
	Key() string
}

// Page is one page of search results as returned by the backend
type Page[T Keyed] struct {
	Data  []T
	Total int
}

// SearchFunc returns the options matching query. An empty query means the
// unfiltered default page
type SearchFunc[T Keyed] func(ctx context.Context, query string) (Page[T], error)

// LookupFunc resolves a single option by id. It is only used for preloading
type LookupFunc[T Keyed] func(ctx context.Context, id string) (T, error)

// LabelFunc renders an option for display. It must not panic for any option
// the search or lookup functions can return
type LabelFunc[T Keyed] func(T) string

// KeyOf formats an identifier of any JSON-ish type the same way, so 42,
// int64(42), float64(42) and "42" all compare equal
func KeyOf(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
