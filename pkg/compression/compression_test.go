package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"", TypeNone, false},
		{"none", TypeNone, false},
		{" GZIP ", TypeGzip, false},
		{"zstd", TypeZstd, false},
		{"brotli", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "", TypeNone.Extension())
	assert.Equal(t, ".gz", TypeGzip.Extension())
	assert.Equal(t, ".zst", TypeZstd.Extension())
}

func TestWriterReader(t *testing.T) {
	payload := strings.Repeat(`{"nodeId":42,"triangles":7}`+"\n", 500)

	for _, typ := range []Type{TypeNone, TypeGzip, TypeZstd} {
		for _, level := range []Level{LevelFastest, LevelDefault, LevelBest} {
			t.Run(string(typ), func(t *testing.T) {
				var buf bytes.Buffer
				w, err := NewWriter(&buf, typ, level)
				require.NoError(t, err)
				_, err = io.WriteString(w, payload)
				require.NoError(t, err)
				require.NoError(t, w.Close())

				assert.Equal(t, typ, Detect(buf.Bytes()))
				if typ != TypeNone {
					assert.Less(t, buf.Len(), len(payload))
				}

				r, err := NewReader(&buf, typ)
				require.NoError(t, err)
				defer r.Close()
				got, err := io.ReadAll(r)
				require.NoError(t, err)
				assert.Equal(t, payload, string(got))
			})
		}
	}
}

func TestUnknownType(t *testing.T) {
	_, err := NewWriter(io.Discard, Type("lz4"), LevelDefault)
	assert.Error(t, err)

	_, err = NewReader(strings.NewReader(""), Type("lz4"))
	assert.Error(t, err)
}

func TestDetect_Plain(t *testing.T) {
	assert.Equal(t, TypeNone, Detect([]byte("1,2\n")))
	assert.Equal(t, TypeNone, Detect(nil))
}
