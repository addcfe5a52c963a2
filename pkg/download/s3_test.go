package download

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	input *s3.GetObjectInput
	body  string
	err   error
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(m.body))}, nil
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		url        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{url: "s3://tooling/vm-1.0.0-rc6/graalvm-ce-1.0.0-rc6-linux-amd64.tar.gz", wantBucket: "tooling", wantKey: "vm-1.0.0-rc6/graalvm-ce-1.0.0-rc6-linux-amd64.tar.gz"},
		{url: "s3://tooling/", wantErr: true},
		{url: "s3:///key", wantErr: true},
		{url: "https://tooling/key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			bucket, key, err := ParseS3URL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestS3Fetcher_Fetch(t *testing.T) {
	t.Run("streams object", func(t *testing.T) {
		mock := &mockS3{body: "archive"}
		f := &S3Fetcher{client: mock}

		body, err := f.Fetch(context.Background(), "s3://tooling/graal/a.tar.gz")
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "archive", string(data))
		assert.Equal(t, "tooling", aws.ToString(mock.input.Bucket))
		assert.Equal(t, "graal/a.tar.gz", aws.ToString(mock.input.Key))
	})

	t.Run("get error", func(t *testing.T) {
		f := &S3Fetcher{client: &mockS3{err: errors.New("NoSuchKey")}}
		_, err := f.Fetch(context.Background(), "s3://tooling/graal/a.tar.gz")
		require.ErrorIs(t, err, ErrTransferFailed)
		assert.Contains(t, err.Error(), "NoSuchKey")
	})
}
