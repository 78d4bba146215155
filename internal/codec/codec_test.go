package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPath(t *testing.T) {
	cases := map[string]Kind{
		"out.txt":          None,
		"out":              None,
		"words.zst":        Zstd,
		"WORDS.ZSTD":       Zstd,
		"words.txt.gz":     Gzip,
		"/tmp/list.lz4":    LZ4,
		"archive.tar.gzip": None,
	}
	for path, want := range cases {
		assert.Equal(t, want, FromPath(path), path)
	}
}

func TestParse(t *testing.T) {
	k, err := Parse("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, Zstd, k)

	k, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, None, k)

	_, err = Parse("brotli")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	payload := strings.Repeat("password123\nletmein\n", 5000)
	for _, kind := range []Kind{None, Zstd, Gzip, LZ4} {
		t.Run(kind.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(kind, &buf)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			if kind != None {
				assert.Less(t, buf.Len(), len(payload))
			}

			r, err := NewReader(kind, &buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, string(got))
		})
	}
}
