//go:build e2e && unix

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testToken = "e2e-token"

type record map[string]any

// fakeERP serves the list, lookup and create endpoints erpick talks to,
// using the success/data/meta envelope
type fakeERP struct {
	srv *httptest.Server

	mu          sync.Mutex
	collections map[string][]record
	queries     []string
	documents   []record
	uploads     []string
}

func newFakeERP(t *testing.T) *fakeERP {
	t.Helper()
	f := &fakeERP{
		collections: map[string][]record{
			"partner/customers": {
				{"id": 1, "code": "C-001", "name": "ACME Trading"},
				{"id": 2, "code": "C-002", "name": "Borneo Supplies"},
			},
			"partner/suppliers": {
				{"id": 7, "code": "V-007", "name": "Java Steel"},
			},
			"partner/warehouses": {
				{"id": 1, "code": "WH-JKT", "name": "Jakarta"},
				{"id": 2, "code": "WH-SBY", "name": "Surabaya"},
			},
			"finance/currencies": {
				{"code": "IDR", "name": "Rupiah", "symbol": "Rp", "rate": "1"},
				{"code": "USD", "name": "US Dollar", "symbol": "$", "rate": "16000"},
			},
			"catalog/products": {
				{"id": 1, "sku": "BLT-10", "name": "Hex Bolt", "unit": "pcs", "price": "1500", "stock": "900"},
				{"id": 2, "sku": "NUT-10", "name": "Hex Nut", "unit": "pcs", "price": "2500", "stock": "400"},
			},
		},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

// BaseURL is the value for --base-url
func (f *fakeERP) BaseURL() string {
	return f.srv.URL + "/api/v1"
}

func (f *fakeERP) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeEnvelope(w, http.StatusUnauthorized, record{
			"success": false,
			"error":   record{"code": "UNAUTHORIZED", "message": "invalid token"},
		})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
	switch {
	case r.Method == http.MethodPost && (path == "trade/sales-orders" || path == "trade/purchase-orders"):
		f.createDocument(w, r)
		return
	case r.Method == http.MethodPost && path == "attachments":
		f.upload(w, r)
		return
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "attachments/"):
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if rows, ok := f.collection(path); ok {
		f.list(w, r, path, rows)
		return
	}
	i := strings.LastIndex(path, "/")
	if i > 0 {
		if rows, ok := f.collection(path[:i]); ok {
			for _, row := range rows {
				if keyOf(row) == path[i+1:] {
					writeEnvelope(w, http.StatusOK, record{"success": true, "data": row})
					return
				}
			}
		}
	}
	writeEnvelope(w, http.StatusNotFound, record{
		"success": false,
		"error":   record{"code": "NOT_FOUND", "message": "not found"},
	})
}

func (f *fakeERP) collection(path string) ([]record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows, ok := f.collections[path]
	return rows, ok
}

func (f *fakeERP) list(w http.ResponseWriter, r *http.Request, path string, rows []record) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	f.mu.Lock()
	f.queries = append(f.queries, path+"?"+search)
	f.mu.Unlock()

	matched := []record{}
	for _, row := range rows {
		if search == "" || strings.Contains(strings.ToLower(fmt.Sprint(row["name"])), search) {
			matched = append(matched, row)
		}
	}
	writeEnvelope(w, http.StatusOK, record{
		"success": true,
		"data":    matched,
		"meta":    record{"total": len(matched), "page": 1, "page_size": 20, "total_pages": 1},
	})
}

func (f *fakeERP) createDocument(w http.ResponseWriter, r *http.Request) {
	var doc record
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeEnvelope(w, http.StatusBadRequest, record{
			"success": false,
			"error":   record{"code": "BAD_REQUEST", "message": err.Error()},
		})
		return
	}
	f.mu.Lock()
	f.documents = append(f.documents, doc)
	id := fmt.Sprintf("SO-%d", len(f.documents))
	f.mu.Unlock()
	writeEnvelope(w, http.StatusCreated, record{"success": true, "data": record{"id": id}})
}

func (f *fakeERP) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, record{
			"success": false,
			"error":   record{"code": "BAD_REQUEST", "message": err.Error()},
		})
		return
	}
	defer file.Close()
	body, _ := io.ReadAll(file)

	f.mu.Lock()
	f.uploads = append(f.uploads, header.Filename)
	id := fmt.Sprintf("att-%d", len(f.uploads))
	f.mu.Unlock()
	writeEnvelope(w, http.StatusCreated, record{"success": true, "data": record{
		"id": id, "filename": header.Filename, "size": len(body),
	}})
}

// Searched reports whether a list request with the given search text reached path
func (f *fakeERP) Searched(path, search string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q == path+"?"+search {
			return true
		}
	}
	return false
}

// Documents returns the submitted documents
func (f *fakeERP) Documents() []record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]record(nil), f.documents...)
}

// Uploads returns the uploaded filenames
func (f *fakeERP) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func keyOf(row record) string {
	if id, ok := row["id"]; ok {
		return fmt.Sprint(id)
	}
	return fmt.Sprint(row["code"])
}

func writeEnvelope(w http.ResponseWriter, status int, body record) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// configFor returns a config file pointing at the fake backend with short
// picker delays
func configFor(baseURL, kind string) string {
	return fmt.Sprintf(`version = 1

[api]
base_url = %q
token_env = "ERPICK_TOKEN"
timeout_seconds = 5
page_size = 20

[picker]
debounce_ms = 50
focus_delay_ms = 0
visible_rows = 8

[document]
kind = %q
max_lines = 50
discount_percent = "0"
tax_percent = "11"

[log]
level = "debug"
format = "json"
output = "erpick.log"
`, baseURL, kind)
}
