package exportstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{}, nil
}

func TestArchiveKeysAndContentType(t *testing.T) {
	up := &fakeUploader{}
	a := &S3Archiver{uploader: up, bucket: "claims-exports", prefix: "exports/"}

	loc, err := a.Archive(context.Background(), "xlsx", "2026-01-01", "2026-01-31", []byte("PK"))
	require.NoError(t, err)
	assert.Equal(t, "s3://claims-exports/exports/claims_2026-01-01_to_2026-01-31.xlsx", loc)
	assert.Equal(t, "claims-exports", aws.ToString(up.input.Bucket))
	assert.Equal(t, "exports/claims_2026-01-01_to_2026-01-31.xlsx", aws.ToString(up.input.Key))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", aws.ToString(up.input.ContentType))
	assert.Equal(t, []byte("PK"), up.body)
}

func TestArchiveWithoutPrefix(t *testing.T) {
	a := &S3Archiver{uploader: &fakeUploader{}, bucket: "b"}
	assert.Equal(t, "claims_a_to_b.csv", a.Key("csv", "a", "b"))
}

func TestArchiveErrors(t *testing.T) {
	a := &S3Archiver{uploader: &fakeUploader{err: errors.New("access denied")}, bucket: "b"}

	_, err := a.Archive(context.Background(), "csv", "a", "b", nil)
	assert.ErrorContains(t, err, "access denied")

	_, err = a.Archive(context.Background(), "pdf", "a", "b", nil)
	assert.ErrorContains(t, err, `unsupported export format "pdf"`)
}

func TestNewS3ArchiverRequiresBucket(t *testing.T) {
	_, err := NewS3Archiver(context.Background(), Config{})
	assert.Error(t, err)
}

func TestS3ArchiverAgainstEndpoint(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		types []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		types = append(types, r.Header.Get("Content-Type"))
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := NewS3Archiver(context.Background(),
		Config{Bucket: "claims-exports", Prefix: "exports", Region: "us-east-1", Endpoint: srv.URL},
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	)
	require.NoError(t, err)

	loc, err := a.Archive(context.Background(), "csv", "2026-01-01", "2026-01-07", []byte("Insurer,Total\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3://claims-exports/exports/claims_2026-01-01_to_2026-01-07.csv", loc)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /claims-exports/exports/claims_2026-01-01_to_2026-01-07.csv"}, paths)
	assert.Equal(t, []string{"text/csv"}, types)
}
