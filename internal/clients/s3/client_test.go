package s3

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	bucket, key, err := ParseURI("s3://neer-data/weekly/currency_merged.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "neer-data", bucket)
	assert.Equal(t, "weekly/currency_merged.xlsx", key)
}

func TestParseURI_Invalid(t *testing.T) {
	tests := []string{
		"https://example.com/file.xlsx",
		"s3:///key-only.xlsx",
		"s3://bucket-only",
		"s3://bucket/",
	}
	for _, uri := range tests {
		t.Run(uri, func(t *testing.T) {
			_, _, err := ParseURI(uri)
			assert.True(t, errors.Is(err, ErrInvalidURI))
		})
	}
}
