package attachment

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpick/internal/domain"
)

type fakeRemote struct {
	uploads   int
	failNext  error
	deleteErr error
	deleted   []string
}

func (f *fakeRemote) Upload(_ context.Context, filename string, r io.Reader) (domain.Attachment, error) {
	f.uploads++
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return domain.Attachment{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Attachment{}, err
	}
	return domain.Attachment{ID: "att-" + strconv.Itoa(f.uploads), Filename: filename, Size: int64(len(data))}, nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestUploadAppends(t *testing.T) {
	remote := &fakeRemote{}
	set := NewSet(remote)

	att, err := set.Upload(context.Background(), "a.pdf", strings.NewReader("aaa"))
	require.NoError(t, err)
	assert.Equal(t, "att-1", att.ID)

	_, err = set.Upload(context.Background(), "b.pdf", strings.NewReader("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"att-1", "att-2"}, set.IDs())
}

func TestFailedUploadKeepsExistingState(t *testing.T) {
	remote := &fakeRemote{}
	set := NewSet(remote)
	_, err := set.Upload(context.Background(), "a.pdf", strings.NewReader("aaa"))
	require.NoError(t, err)
	before := set.Items()

	remote.failNext = errors.New("413 payload too large")
	_, err = set.Upload(context.Background(), "huge.pdf", strings.NewReader("x"))
	require.Error(t, err)

	assert.Equal(t, before, set.Items())
	assert.Equal(t, 2, remote.uploads, "no retry")
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.txt")
	require.NoError(t, os.WriteFile(path, []byte("paid"), 0o644))

	set := NewSet(&fakeRemote{})
	att, err := set.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "receipt.txt", att.Filename)
	assert.EqualValues(t, 4, att.Size)

	_, err = set.UploadFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
	_, err = set.UploadFile(context.Background(), dir)
	assert.Error(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestRemove(t *testing.T) {
	remote := &fakeRemote{}
	set := NewSet(remote)
	_, _ = set.Upload(context.Background(), "a.pdf", strings.NewReader("a"))
	_, _ = set.Upload(context.Background(), "b.pdf", strings.NewReader("b"))

	require.NoError(t, set.Remove(context.Background(), "att-1"))
	assert.Equal(t, []string{"att-2"}, set.IDs())
	assert.Equal(t, []string{"att-1"}, remote.deleted)

	assert.ErrorIs(t, set.Remove(context.Background(), "att-9"), ErrUnknown)

	remote.deleteErr = errors.New("500")
	assert.Error(t, set.Remove(context.Background(), "att-2"))
	assert.Equal(t, []string{"att-2"}, set.IDs(), "failed delete keeps the attachment")
}

func TestReset(t *testing.T) {
	remote := &fakeRemote{}
	set := NewSet(remote)
	_, _ = set.Upload(context.Background(), "a.pdf", strings.NewReader("a"))

	set.Reset()
	assert.Zero(t, set.Len())
	assert.Empty(t, set.IDs())
	assert.Empty(t, remote.deleted)
}
