package pipeline

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCompleteness(t *testing.T) {
	cfg := testConfig() // FillRateMin 0.5

	df := dataframe.New(
		series.New([]string{"a", "b", "c", "d"}, series.String, "id"),
		series.New([]string{"train", "train", "train", "test"}, series.String, "origin"),
		series.New([]string{"0", "1", "0", "NaN"}, series.String, "default"),
		series.New([]float64{1, 2, 3, 4}, series.Float, "full"),
		series.New([]string{"1", "NaN", "3", "4"}, series.String, "partial"),
		series.New([]string{"1", "NaN", "NaN", "NaN"}, series.String, "sparse"),
		series.New([]string{"NaN", "NaN", "NaN", "NaN"}, series.String, "void"),
	)

	c := SplitCompleteness(df, cfg)
	assert.Equal(t, []string{"full"}, c.Complete)
	assert.Equal(t, []string{"partial"}, c.Imputable)
	// Both the low-fill and the entirely empty column drop; fill rate 0 is
	// not a special case.
	assert.Equal(t, []string{"sparse", "void"}, c.Dropped)

	assert.Equal(t, 1.0, c.Rates["full"])
	assert.Equal(t, 0.75, c.Rates["partial"])
	assert.Equal(t, 0.0, c.Rates["void"])

	// id, origin, and target are never classified.
	_, ok := c.Rates["id"]
	assert.False(t, ok)

	complete, err := c.CompleteTable(df, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "origin", "default", "full"}, complete.Names())

	part, err := c.ImputableTable(df, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "partial"}, part.Names())
}
