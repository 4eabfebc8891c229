// Package dataset loads the weekly and index-level tables the analysis runs on.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

// ErrNoObjectStore is returned when an s3:// source is configured without a client.
var ErrNoObjectStore = errors.New("object store client not configured")

// Source yields the raw bytes of one input table.
type Source interface {
	Name() string
	Open(ctx context.Context) ([]byte, error)
}

// Downloader fetches whole objects by URI.
type Downloader interface {
	Download(ctx context.Context, uri string) ([]byte, error)
}

// FileSource reads a table from the local filesystem.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// LocalPath returns the file path so readers that need a real file can skip spooling.
func (s FileSource) LocalPath() string { return s.Path }

// Open reads the whole file.
func (s FileSource) Open(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return data, nil
}

// ObjectSource reads a table from S3.
type ObjectSource struct {
	URI    string
	Client Downloader
}

// Name returns the object URI.
func (s ObjectSource) Name() string { return s.URI }

// Open downloads the object.
func (s ObjectSource) Open(ctx context.Context) ([]byte, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("%s: %w", s.URI, ErrNoObjectStore)
	}
	return s.Client.Download(ctx, s.URI)
}

// ResolveSource picks a source implementation from the URI scheme.
// client may be nil when no s3:// sources are used.
func ResolveSource(uri string, client Downloader) (Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("empty source location")
	}
	if strings.HasPrefix(uri, "s3://") {
		if client == nil {
			return nil, fmt.Errorf("%s: %w", uri, ErrNoObjectStore)
		}
		return ObjectSource{URI: uri, Client: client}, nil
	}
	return FileSource{Path: strings.TrimPrefix(uri, "file://")}, nil
}

// Format identifies the table encoding of a source.
type Format string

const (
	FormatXLSX   Format = "xlsx"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// DetectFormat derives the format from the source name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
}
