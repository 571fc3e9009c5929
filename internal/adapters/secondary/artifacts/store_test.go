package artifacts

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-nfc-api/internal/config"
	"pos-nfc-api/internal/core/domain"
)

func TestFSStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir)
	require.NoError(t, err)

	uri, err := store.Put(context.Background(), "apdu-1.json", []byte(`{"format":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.Join(dir, "apdu-1.json"), uri)

	data, err := store.Get(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, `{"format":"x"}`, string(data))

	// overwrite keeps a single file
	_, err = store.Put(context.Background(), "apdu-1.json", []byte(`{}`))
	require.NoError(t, err)
	matches, _ := filepath.Glob(filepath.Join(dir, "*"))
	assert.Len(t, matches, 1)
}

func TestFSStore_Errors(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.json", nil)
	assert.Error(t, err)

	_, err = store.Get(context.Background(), "s3://bucket/key")
	assert.ErrorContains(t, err, "unsupported artifact uri")

	_, err = store.Get(context.Background(), "file:///does/not/exist.json")
	assert.ErrorIs(t, err, domain.ErrArtifactMissing)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store_PutGet(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	store := NewS3Store(client, "models", "/apdu-models/")

	uri, err := store.Put(context.Background(), "nightly.json", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "s3://models/apdu-models/nightly.json", uri)
	assert.Contains(t, client.objects, "models/apdu-models/nightly.json")

	data, err := store.Get(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestS3Store_PutRejectsPathNames(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	store := NewS3Store(client, "models", "apdu-models")

	for _, name := range []string{"../x.json", "team/nightly.json", "..", ""} {
		_, err := store.Put(context.Background(), name, []byte("payload"))
		assert.ErrorContains(t, err, "invalid artifact name", name)
	}
	assert.Empty(t, client.objects)
}

func TestS3Store_GetErrors(t *testing.T) {
	store := NewS3Store(&fakeS3{objects: map[string][]byte{}}, "models", "")

	_, err := store.Get(context.Background(), "s3://models/missing.json")
	assert.ErrorIs(t, err, domain.ErrArtifactMissing)

	_, err = store.Get(context.Background(), "s3://models")
	assert.ErrorContains(t, err, "malformed")

	_, err = store.Get(context.Background(), "file:///tmp/x.json")
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}

func TestNew_FSBackend(t *testing.T) {
	store, err := New(context.Background(), config.ArtifactConfig{Backend: config.ArtifactBackendFS, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = New(context.Background(), config.ArtifactConfig{Backend: "ftp"})
	assert.Error(t, err)
}
