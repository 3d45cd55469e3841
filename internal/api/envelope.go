package api

import "encoding/json"

// Envelope is the standard response wrapper of the ERP backend
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
}

// ErrorInfo carries the backend's error code and message
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta is the pagination block of list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ListParams are the standard list query parameters
type ListParams struct {
	Search      string
	SearchParam string // defaults to "search"
	Page        int
	PageSize    int
	Params      map[string]string
}
