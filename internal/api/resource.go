package api

import (
	"context"
	"fmt"

	"erpick/internal/picker"
)

// Endpoint describes where a list of options lives
type Endpoint struct {
	Path        string
	SearchParam string
	Params      map[string]string
}

// Resource adapts one list endpoint to the picker fetch contract
type Resource[T picker.Keyed] struct {
	client   *Client
	cred     Credentials
	endpoint Endpoint
	pageSize int
}

// NewResource binds an endpoint to a client and the caller's credentials
func NewResource[T picker.Keyed](c *Client, cred Credentials, ep Endpoint, pageSize int) *Resource[T] {
	return &Resource[T]{client: c, cred: cred, endpoint: ep, pageSize: pageSize}
}

// Search returns the first page of records matching query
func (r *Resource[T]) Search(ctx context.Context, query string) (picker.Page[T], error) {
	env, err := r.client.List(ctx, r.cred, r.endpoint.Path, ListParams{
		Search:      query,
		SearchParam: r.endpoint.SearchParam,
		Page:        1,
		PageSize:    r.pageSize,
		Params:      r.endpoint.Params,
	})
	if err != nil {
		return picker.Page[T]{}, fmt.Errorf("search %s: %w", r.endpoint.Path, err)
	}

	data, err := Decode[[]T](env)
	if err != nil {
		return picker.Page[T]{}, fmt.Errorf("search %s: %w", r.endpoint.Path, err)
	}
	total := len(data)
	if env.Meta != nil {
		total = int(env.Meta.Total)
	}
	return picker.Page[T]{Data: data, Total: total}, nil
}

// Lookup returns one record by id
func (r *Resource[T]) Lookup(ctx context.Context, id string) (T, error) {
	env, err := r.client.Get(ctx, r.cred, r.endpoint.Path, id)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s/%s: %w", r.endpoint.Path, id, err)
	}
	return Decode[T](env)
}

// Path is the endpoint path, used in log fields and events
func (r *Resource[T]) Path() string {
	return r.endpoint.Path
}
