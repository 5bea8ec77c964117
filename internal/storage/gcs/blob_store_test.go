package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type upload struct {
	name string
	body string
}

func newTestStore(t *testing.T, cfg Config, status int) (*BlobStore, *[]upload) {
	t.Helper()

	var (
		mu      sync.Mutex
		uploads []upload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, fmt.Sprintf("/upload/storage/v1/b/%s/o", cfg.Bucket))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		name := r.URL.Query().Get("name")
		mu.Lock()
		uploads = append(uploads, upload{name: name, body: string(body)})
		mu.Unlock()
		if status != http.StatusOK {
			http.Error(w, `{"error":{"code":403,"message":"denied"}}`, status)
			return
		}
		fmt.Fprintf(w, `{"name":%q,"bucket":%q}`, name, cfg.Bucket)
	}))
	t.Cleanup(srv.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client, cfg)
	require.NoError(t, err)
	return store, &uploads
}

func TestPutObjectUploadsWithPrefix(t *testing.T) {
	t.Parallel()

	store, uploads := newTestStore(t, Config{Bucket: "tables", Prefix: "/yoweb/latest/"}, http.StatusOK)

	uri, err := store.PutObject(context.Background(), "royals.csv", "text/csv", strings.NewReader("Pirate Name\nAnne\n"))
	require.NoError(t, err)
	assert.Equal(t, "gs://tables/yoweb/latest/royals.csv", uri)

	require.Len(t, *uploads, 1)
	assert.Equal(t, "yoweb/latest/royals.csv", (*uploads)[0].name)
	assert.Contains(t, (*uploads)[0].body, "Pirate Name\nAnne\n")
}

func TestPutObjectServerError(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, Config{Bucket: "tables"}, http.StatusForbidden)
	_, err := store.PutObject(context.Background(), "crews.csv", "text/csv", strings.NewReader("x"))
	require.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "b"})
	require.Error(t, err)

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()
	_, err = New(client, Config{})
	require.Error(t, err)

	store, err := New(client, Config{Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "crews.csv", store.ObjectName("/crews.csv"))
	_, err = store.PutObject(context.Background(), " ", "", strings.NewReader(""))
	require.Error(t, err)
}
