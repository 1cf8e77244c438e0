package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/bodyfile/internal/engine"
)

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    engine.Algorithm
		wantErr bool
	}{
		{"", engine.HashMD5, false},
		{"md5", engine.HashMD5, false},
		{"MD5", engine.HashMD5, false},
		{" sha256 ", engine.HashSHA256, false},
		{"sha1", engine.HashSHA1, false},
		{"blake3", engine.HashBLAKE3, false},
		{"none", engine.HashNone, false},
		{"crc32", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := engine.ParseAlgorithm(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlgorithmEnabled(t *testing.T) {
	t.Parallel()
	assert.True(t, engine.HashMD5.Enabled())
	assert.True(t, engine.HashBLAKE3.Enabled())
	assert.False(t, engine.HashNone.Enabled())
	assert.False(t, engine.Algorithm("").Enabled())
}

func TestHashReader(t *testing.T) {
	t.Parallel()

	digest, n, err := engine.HashReader(context.Background(), strings.NewReader("hello"), engine.HashMD5, nil)
	require.NoError(t, err)
	assert.Equal(t, md5Hello, digest)
	assert.Equal(t, int64(5), n)

	digest, _, err = engine.HashReader(context.Background(), strings.NewReader(""), engine.HashBLAKE3, nil)
	require.NoError(t, err)
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", digest)

	digest, _, err = engine.HashReader(
		context.Background(), strings.NewReader("hello"), engine.HashMD5, engine.NewReadLimiter(1<<20),
	)
	require.NoError(t, err)
	assert.Equal(t, md5Hello, digest)
}

func TestHashReader_NoneFails(t *testing.T) {
	t.Parallel()
	_, _, err := engine.HashReader(context.Background(), strings.NewReader("x"), engine.HashNone, nil)
	require.Error(t, err)
}

func TestHashReader_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := engine.HashReader(ctx, strings.NewReader("hello"), engine.HashMD5, nil)
	require.ErrorIs(t, err, context.Canceled)
}
