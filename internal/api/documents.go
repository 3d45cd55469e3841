package api

import (
	"context"
	"fmt"
	"io"

	"erpick/internal/domain"
	"erpick/internal/picker"
)

// DocumentService submits sales and purchase documents
type DocumentService struct {
	client *Client
	cred   Credentials
	paths  map[domain.DocumentKind]string
}

// NewDocumentService binds the document endpoints to a client
func NewDocumentService(c *Client, cred Credentials, salesPath, purchasePath string) *DocumentService {
	return &DocumentService{
		client: c,
		cred:   cred,
		paths: map[domain.DocumentKind]string{
			domain.KindSales:    salesPath,
			domain.KindPurchase: purchasePath,
		},
	}
}

// Submit creates the document and returns the id assigned by the backend
func (s *DocumentService) Submit(ctx context.Context, doc domain.Document) (string, error) {
	path, ok := s.paths[doc.Kind]
	if !ok || path == "" {
		return "", fmt.Errorf("no endpoint for %q documents", doc.Kind)
	}
	env, err := s.client.Create(ctx, s.cred, path, doc)
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", doc.Kind, err)
	}
	created, err := Decode[struct {
		ID any `json:"id"`
	}](env)
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", doc.Kind, err)
	}
	if created.ID == nil {
		return "", fmt.Errorf("submit %s: response has no id", doc.Kind)
	}
	return picker.KeyOf(created.ID), nil
}

// AttachmentService stores files for draft documents
type AttachmentService struct {
	client *Client
	cred   Credentials
	path   string
}

// NewAttachmentService binds the attachment endpoint to a client
func NewAttachmentService(c *Client, cred Credentials, path string) *AttachmentService {
	return &AttachmentService{client: c, cred: cred, path: path}
}

// Upload sends one file
func (s *AttachmentService) Upload(ctx context.Context, filename string, r io.Reader) (domain.Attachment, error) {
	env, err := s.client.Upload(ctx, s.cred, s.path, filename, r)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	return Decode[domain.Attachment](env)
}

// Delete removes an uploaded file
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, s.cred, s.path, id); err != nil {
		return fmt.Errorf("delete attachment %s: %w", id, err)
	}
	return nil
}
