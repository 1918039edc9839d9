package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	headErr error
	heads   []string
	puts    []*s3.PutObjectInput
	bodies  [][]byte
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.heads = append(f.heads, aws.ToString(in.Key))
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreExists(t *testing.T) {
	cases := []struct {
		name    string
		headErr error
		found   bool
		wantErr bool
	}{
		{"present", nil, true, false},
		{"not found", &types.NotFound{}, false, false},
		{"no such key", &types.NoSuchKey{}, false, false},
		{"generic 404 code", &smithy.GenericAPIError{Code: "NotFound"}, false, false},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false, true},
		{"network", errors.New("dial tcp: i/o timeout"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeS3{headErr: tc.headErr}
			store := &S3Store{Client: api, Bucket: "photos"}

			found, err := store.Exists(context.Background(), "2023/05/14/photo.jpg")
			assert.Equal(t, tc.found, found)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{"2023/05/14/photo.jpg"}, api.heads)
		})
	}
}

func TestS3StorePut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0o644))

	api := &fakeS3{}
	store := &S3Store{Client: api, Bucket: "photos"}
	err := store.Put(context.Background(), "2023/05/14/photo.jpg", path, PutOptions{
		StorageClass: "DEEP_ARCHIVE",
		Checksum:     "abc123",
	})
	require.NoError(t, err)

	require.Len(t, api.puts, 1)
	in := api.puts[0]
	assert.Equal(t, "photos", aws.ToString(in.Bucket))
	assert.Equal(t, "2023/05/14/photo.jpg", aws.ToString(in.Key))
	assert.Equal(t, types.StorageClassDeepArchive, in.StorageClass)
	assert.Equal(t, int64(len("image-bytes")), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "image/jpeg", aws.ToString(in.ContentType))
	assert.Equal(t, "abc123", in.Metadata["xxhash64"])
	assert.Equal(t, "image-bytes", string(api.bodies[0]))
}

func TestS3StorePutWithoutStorageClass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	api := &fakeS3{}
	store := &S3Store{Client: api, Bucket: "photos"}
	require.NoError(t, store.Put(context.Background(), "2021/01/02/image.png", path, PutOptions{}))

	require.Len(t, api.puts, 1)
	assert.Empty(t, api.puts[0].StorageClass)
	assert.Nil(t, api.puts[0].Metadata)
}

func TestS3StorePutMissingFile(t *testing.T) {
	api := &fakeS3{}
	store := &S3Store{Client: api, Bucket: "photos"}
	err := store.Put(context.Background(), "k.jpg", filepath.Join(t.TempDir(), "missing.jpg"), PutOptions{})
	assert.Error(t, err)
	assert.Empty(t, api.puts)
}
