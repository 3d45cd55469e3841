// Package attachment keeps the files attached to a draft document
package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"erpick/internal/domain"
)

// ErrUnknown is returned when removing an id that is not in the set
var ErrUnknown = errors.New("unknown attachment")

// Remote stores files on the backend
type Remote interface {
	Upload(ctx context.Context, filename string, r io.Reader) (domain.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// Set is the list of attachments of one draft. A failed call never changes
// the list
type Set struct {
	remote Remote

	mu    sync.Mutex
	items []domain.Attachment
}

// NewSet creates an empty set backed by remote
func NewSet(remote Remote) *Set {
	return &Set{remote: remote}
}

// UploadFile opens path and uploads it
func (s *Set) UploadFile(ctx context.Context, path string) (domain.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return domain.Attachment{}, fmt.Errorf("%s is a directory", path)
	}
	return s.Upload(ctx, filepath.Base(path), f)
}

// Upload sends exactly one file and records it on success
func (s *Set) Upload(ctx context.Context, filename string, r io.Reader) (domain.Attachment, error) {
	att, err := s.remote.Upload(ctx, filename, r)
	if err != nil {
		return domain.Attachment{}, err
	}
	if att.Filename == "" {
		att.Filename = filename
	}

	s.mu.Lock()
	s.items = append(s.items, att)
	s.mu.Unlock()
	return att, nil
}

// Remove deletes the attachment remotely, then forgets it
func (s *Set) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	s.mu.Unlock()
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknown, id)
	}

	if err := s.remote.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The list may have changed while the delete was in flight
	if idx = s.indexOf(id); idx >= 0 {
		s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	}
	return nil
}

// Items returns a copy of the attachments
func (s *Set) Items() []domain.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Attachment, len(s.items))
	copy(out, s.items)
	return out
}

// IDs returns the attachment ids in upload order
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.items))
	for _, a := range s.items {
		ids = append(ids, a.ID)
	}
	return ids
}

// Len returns the number of attachments
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Reset forgets all attachments locally. Files stay on the server, linked
// to the document they were submitted with
func (s *Set) Reset() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *Set) indexOf(id string) int {
	for i, a := range s.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}
