package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpick/internal/domain"
)

var testCred = Credentials{Token: "secret-token"}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api/v1", WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("api/v1")
	assert.Error(t, err)
}

func TestResourceSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/customers", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err, "request id is a uuid")

		q := r.URL.Query()
		assert.Equal(t, "ACME", q.Get("q"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "10", q.Get("page_size"))
		assert.Equal(t, "active", q.Get("status"))

		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": 7, "code": "C-007", "name": "ACME Trading"},
			},
			"meta": map[string]any{"total": 1, "page": 1, "page_size": 10, "total_pages": 1},
		})
	})

	res := NewResource[domain.Customer](c, testCred, Endpoint{
		Path:        "customers",
		SearchParam: "q",
		Params:      map[string]string{"status": "active"},
	}, 10)

	page, err := res.Search(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "7", page.Data[0].Key())
	assert.Equal(t, 1, page.Total)
}

func TestResourceSearchEmptyQueryOmitsParam(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, has := r.URL.Query()["search"]
		assert.False(t, has)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})

	page, err := NewResource[domain.Warehouse](c, testCred, Endpoint{Path: "warehouses"}, 20).
		Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Zero(t, page.Total)
}

func TestResourceLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/currencies/IDR", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"code": "IDR", "name": "Rupiah", "symbol": "Rp", "rate": "1"},
		})
	})

	cur, err := NewResource[domain.Currency](c, testCred, Endpoint{Path: "currencies"}, 20).
		Lookup(context.Background(), "IDR")
	require.NoError(t, err)
	assert.Equal(t, "IDR", cur.Key())
	assert.True(t, decimal.NewFromInt(1).Equal(cur.Rate))
}

func TestErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   map[string]any{"code": "NOT_FOUND", "message": "customer not found"},
		})
	})

	_, err := NewResource[domain.Customer](c, testCred, Endpoint{Path: "customers"}, 20).
		Lookup(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Contains(t, err.Error(), "customer not found")
}

func TestUnauthorizedWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.List(context.Background(), Credentials{}, "items", ListParams{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.List(ctx, testCred, "items", ListParams{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentSubmit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sales-orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var doc domain.Document
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Equal(t, domain.KindSales, doc.Kind)
		assert.Equal(t, "7", doc.PartnerID)

		writeJSON(t, w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    map[string]any{"id": 1200345},
		})
	})

	svc := NewDocumentService(c, testCred, "sales-orders", "purchase-orders")
	id, err := svc.Submit(context.Background(), domain.Document{Kind: domain.KindSales, PartnerID: "7"})
	require.NoError(t, err)
	assert.Equal(t, "1200345", id)

	_, err = svc.Submit(context.Background(), domain.Document{Kind: "transfer"})
	assert.Error(t, err)
}

func TestAttachmentUploadAndDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			body, _ := io.ReadAll(file)
			assert.Equal(t, "invoice scan", string(body))
			writeJSON(t, w, http.StatusCreated, map[string]any{
				"success": true,
				"data":    map[string]any{"id": "att-1", "filename": header.Filename, "size": len(body)},
			})
		case http.MethodDelete:
			assert.Equal(t, "/api/v1/attachments/att-1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	svc := NewAttachmentService(c, testCred, "attachments")
	att, err := svc.Upload(context.Background(), "scan.pdf", strings.NewReader("invoice scan"))
	require.NoError(t, err)
	assert.Equal(t, "att-1", att.ID)
	assert.Equal(t, "scan.pdf", att.Filename)
	assert.EqualValues(t, 12, att.Size)

	require.NoError(t, svc.Delete(context.Background(), "att-1"))
}

func TestNestedEndpointPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/partner/customers/a%20b", r.URL.EscapedPath())
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": 7, "code": "C-007", "name": "Spaced"},
		})
	})

	cust, err := NewResource[domain.Customer](c, testCred, Endpoint{Path: "/partner/customers/"}, 20).
		Lookup(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "Spaced", cust.Name)
}
