package fetcher

import (
	"bytes"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatin1Reader(t *testing.T) {
	// "Commune siège" in ISO-8859-1
	raw := []byte{'C', 'o', 'm', 'm', 'u', 'n', 'e', ' ', 's', 'i', 0xE8, 'g', 'e'}
	out, err := io.ReadAll(Latin1Reader(bytes.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, "Commune siège", string(out))
}

func TestStripBOM(t *testing.T) {
	out, err := io.ReadAll(StripBOM(strings.NewReader("\ufeffsiren;insee\n")))
	require.NoError(t, err)
	assert.Equal(t, "siren;insee\n", string(out))

	out, err = io.ReadAll(StripBOM(strings.NewReader("siren;insee\n")))
	require.NoError(t, err)
	assert.Equal(t, "siren;insee\n", string(out))
}

func TestOpenGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv.gz")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, writeTestFile(path, buf.String()))

	rc, err := OpenGzip(path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.NoError(t, rc.Close())
}

func TestOpenGzip_Missing(t *testing.T) {
	_, err := OpenGzip(filepath.Join(t.TempDir(), "nope.gz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip: open")
}

func TestOpenGzip_NotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.gz")
	require.NoError(t, writeTestFile(path, "not compressed"))
	_, err := OpenGzip(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip: read header")
}
