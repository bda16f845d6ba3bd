package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/config"
	"medscan/internal/port"
	s3storage "medscan/internal/storage/s3"
)

// fakeS3 accepts path-style PUT and DELETE requests and records them.
type fakeS3 struct {
	method string
	path   string
	body   string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.method = r.Method
	f.path = r.URL.Path
	b, _ := io.ReadAll(r.Body)
	f.body = string(b)
	switch r.Method {
	case http.MethodPut:
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStorage(t *testing.T, url string) port.ObjectStorage {
	t.Helper()
	store, err := s3storage.NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  url,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return store
}

func TestS3Client_Upload(t *testing.T) {
	fake := &fakeS3{}
	server := httptest.NewServer(fake)
	defer server.Close()

	out, err := newTestStorage(t, server.URL).Upload(context.Background(), port.UploadInput{
		Bucket:      "medscan-uploads",
		Key:         "reports/abc/cbc.pdf",
		Body:        strings.NewReader("%PDF-1.4 data"),
		ContentType: "application/pdf",
		Size:        13,
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, fake.method)
	assert.Equal(t, "/medscan-uploads/reports/abc/cbc.pdf", fake.path)
	assert.Equal(t, `"abc123"`, out.ETag)
}

func TestS3Client_Delete(t *testing.T) {
	fake := &fakeS3{}
	server := httptest.NewServer(fake)
	defer server.Close()

	err := newTestStorage(t, server.URL).Delete(context.Background(), "medscan-uploads", "reports/abc/cbc.pdf")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, fake.method)
	assert.Equal(t, "/medscan-uploads/reports/abc/cbc.pdf", fake.path)
}

func TestS3Client_GetPresignedURL(t *testing.T) {
	url, err := newTestStorage(t, "http://localhost:9000").GetPresignedURL(context.Background(), "bucket", "reports/x.png", 600)

	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/bucket/reports/x.png")
	assert.Contains(t, url, "X-Amz-Expires=600")
}
