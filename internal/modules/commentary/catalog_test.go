package commentary

import (
	"errors"
	"testing"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "SGDNEER Tracking Analysis", c.Title())
	assert.Len(t, c.Introduction(), 3)
	assert.NotEmpty(t, c.Comparison().Commentary)
	assert.Len(t, c.RegressionIntro().Paragraphs, 3)

	cts := c.For(domain.IndexCTSGSGD)
	gss := c.For(domain.IndexGSSGSGD)
	assert.Empty(t, cts.missing())
	assert.Empty(t, gss.missing())
	assert.NotEqual(t, cts.Conclusion, gss.Conclusion)
	assert.NotEqual(t, cts.Regression, gss.Regression)
	assert.Contains(t, cts.Conclusion, "Citi")
	assert.Contains(t, gss.TrackingError, "GSSGSGD")
}

const validDoc = `
title: Test
introduction:
  - one
indices:
  CTSGSGD:
    deviation: a
    tracking_error: b
    regression: c
    conclusion: d
  GSSGSGD:
    deviation: e
    tracking_error: f
    regression: g
    conclusion: h
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	assert.Equal(t, Bundle{Deviation: "e", TrackingError: "f", Regression: "g", Conclusion: "h"}, c.For(domain.IndexGSSGSGD))
}

func TestParse_MissingBlock(t *testing.T) {
	doc := `
indices:
  CTSGSGD:
    deviation: a
    tracking_error: b
    regression: c
    conclusion: d
  GSSGSGD:
    deviation: e
    tracking_error: "   "
    regression: g
    conclusion: h
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))
	assert.Contains(t, err.Error(), "tracking_error")
}

func TestParse_MissingIndex(t *testing.T) {
	doc := `
indices:
  CTSGSGD:
    deviation: a
    tracking_error: b
    regression: c
    conclusion: d
`
	_, err := Parse([]byte(doc))
	assert.True(t, errors.Is(err, ErrIncomplete))
}

func TestParse_UnknownIndex(t *testing.T) {
	_, err := Parse([]byte(validDoc + "  JPMSGD:\n    deviation: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JPMSGD")
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(validDoc + "footer: nope\n"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	in := "\n        first line   \n\n          indented more\n        last\n    "
	assert.Equal(t, "first line\n\n  indented more\nlast", Normalize(in))
	assert.Equal(t, "", Normalize("  \n \n"))
	assert.Equal(t, "plain", Normalize("plain"))
}
