package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource struct {
	name string
	data []byte
	err  error
}

func (m memSource) Name() string { return m.name }

func (m memSource) Open(ctx context.Context) ([]byte, error) {
	return m.data, m.err
}

type fakeDownloader struct {
	objects map[string][]byte
}

func (f *fakeDownloader) Download(ctx context.Context, uri string) ([]byte, error) {
	data, ok := f.objects[uri]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func TestResolveSource(t *testing.T) {
	src, err := ResolveSource("data/currency_merged.xlsx", nil)
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "data/currency_merged.xlsx"}, src)

	src, err = ResolveSource("file:///srv/df.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/df.csv", src.Name())

	_, err = ResolveSource("s3://bucket/df.xlsx", nil)
	assert.True(t, errors.Is(err, ErrNoObjectStore))

	_, err = ResolveSource("  ", nil)
	assert.Error(t, err)
}

func TestObjectSource_Open(t *testing.T) {
	dl := &fakeDownloader{objects: map[string][]byte{"s3://bucket/df.csv": []byte("a,b\n")}}

	src, err := ResolveSource("s3://bucket/df.csv", dl)
	require.NoError(t, err)

	data, err := src.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestFileSource_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekly.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\n1\n"), 0644))

	data, err := FileSource{Path: path}.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(data))

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.Open(context.Background())
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"currency_merged.xlsx", FormatXLSX},
		{"s3://bucket/DF.XLSX", FormatXLSX},
		{"weekly.csv", FormatCSV},
		{"neer.db", FormatSQLite},
		{"neer.sqlite", FormatSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DetectFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.format, f)
		})
	}

	_, err := DetectFormat("weekly.parquet")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
