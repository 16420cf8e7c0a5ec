package pipeline

import (
	"math"
	"strconv"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanprep/loanprep/pkg/table"
)

func TestImputeMean(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"a", "b", "c", "d"}, series.String, "id"),
		series.New([]string{"1", "2", "NaN", "3"}, series.String, "income"),
	)

	out, err := Impute(df, []string{"income"})
	require.NoError(t, err)

	// Fully populated afterwards, with the pre-imputation mean in the gap.
	s := out.Col("income")
	assert.Equal(t, 1.0, table.FillRate(s))
	vals := make([]float64, s.Len())
	for i, rec := range s.Records() {
		v, err := strconv.ParseFloat(rec, 64)
		require.NoError(t, err)
		vals[i] = v
	}
	assert.InDelta(t, 2.0, vals[2], 1e-9)

	// The mean of present values is unchanged by imputation.
	assert.InDelta(t, 2.0, (vals[0]+vals[1]+vals[3])/3, 1e-9)

	// Indicator marks exactly the originally missing row.
	ind := out.Col("income" + MissingSuffix)
	assert.Equal(t, []string{"false", "false", "true", "false"}, ind.Records())
}

func TestImputeNoIndicatorForCompleteColumn(t *testing.T) {
	cfg := testConfig()

	df := dataframe.New(
		series.New([]string{"a", "b"}, series.String, "id"),
		series.New([]string{"train", "train"}, series.String, "origin"),
		series.New([]string{"0", "1"}, series.String, "default"),
		series.New([]float64{1, 2}, series.Float, "full"),
		series.New([]string{"1", "NaN"}, series.String, "partial"),
	)

	c := SplitCompleteness(df, cfg)
	part, err := c.ImputableTable(df, cfg)
	require.NoError(t, err)

	out, err := Impute(part, c.Imputable)
	require.NoError(t, err)

	// Only the imputed column gets an indicator, never the complete one.
	assert.True(t, table.HasColumn(out, "partial"+MissingSuffix))
	assert.False(t, table.HasColumn(out, "full"+MissingSuffix))
}

func TestImputeCategorical(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"a", "b", "c"}, series.String, "id"),
		series.New([]string{"RENT", "NaN", "OWN"}, series.String, "home_ownership"),
	)

	out, err := Impute(df, []string{"home_ownership"})
	require.NoError(t, err)

	s := out.Col("home_ownership")
	assert.Equal(t, []string{"RENT", table.MissingLevel, "OWN"}, s.Records())
	assert.False(t, table.HasColumn(out, "home_ownership"+MissingSuffix))
}

func TestImputeEmptyColumn(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"a", "b"}, series.String, "id"),
		series.New([]float64{math.NaN(), math.NaN()}, series.Float, "void"),
	)

	_, err := Impute(df, []string{"void"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyColumn)
}

func TestImputeMissingColumn(t *testing.T) {
	df := dataframe.New(series.New([]string{"a"}, series.String, "id"))
	_, err := Impute(df, []string{"absent"})
	assert.Error(t, err)
}
