package pipeline

import (
	"strconv"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanprep/loanprep/pkg/table"
)

func TestNormalizePercent(t *testing.T) {
	cfg := testConfig()
	cfg.PercentColumns = []string{"int_rate"}

	df := dataframe.New(
		series.New([]string{"a", "b", "c"}, series.String, "id"),
		series.New([]string{"10.5%", " 7.2% ", "NaN"}, series.String, "int_rate"),
		series.New([]string{"0", "1", "0"}, series.String, "default"),
	)

	out, _, err := Normalize(df, cfg)
	require.NoError(t, err)

	s := out.Col("int_rate")
	assert.Equal(t, series.Float, s.Type())
	v, err := strconv.ParseFloat(s.Records()[0], 64)
	require.NoError(t, err)
	assert.InDelta(t, 10.5, v, 1e-9)
	v, err = strconv.ParseFloat(s.Records()[1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 7.2, v, 1e-9)
	assert.True(t, table.IsMissing(s.Records()[2]) || s.Elem(2).IsNA())
}

func TestNormalizePercentResidue(t *testing.T) {
	cfg := testConfig()
	cfg.PercentColumns = []string{"int_rate"}

	df := dataframe.New(
		series.New([]string{"a"}, series.String, "id"),
		series.New([]string{"ten%"}, series.String, "int_rate"),
		series.New([]string{"0"}, series.String, "default"),
	)

	_, _, err := Normalize(df, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "int_rate")
}

func TestNormalizeTargetRelabel(t *testing.T) {
	cfg := testConfig()

	df := dataframe.New(
		series.New([]string{"a", "b", "c"}, series.String, "id"),
		series.New([]string{"0", "1", "NaN"}, series.String, "default"),
	)

	out, _, err := Normalize(df, cfg)
	require.NoError(t, err)
	recs := out.Col("default").Records()
	assert.Equal(t, ClassNoDefault, recs[0])
	assert.Equal(t, ClassDefault, recs[1])
	assert.True(t, table.IsMissing(recs[2]))
}

func TestNormalizeTargetUnknownCode(t *testing.T) {
	cfg := testConfig()

	df := dataframe.New(
		series.New([]string{"a"}, series.String, "id"),
		series.New([]string{"2"}, series.String, "default"),
	)

	_, _, err := Normalize(df, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestNormalizeCategoricalVocabulary(t *testing.T) {
	cfg := testConfig()
	cfg.CategoricalColumns = []string{"home_ownership"}

	df := dataframe.New(
		series.New([]string{"a", "b", "c", "d"}, series.String, "id"),
		series.New([]string{"RENT", "OWN", "NA", "RENT"}, series.String, "home_ownership"),
		series.New([]string{"0", "1", "0", "1"}, series.String, "default"),
	)

	out, vocabs, err := Normalize(df, cfg)
	require.NoError(t, err)

	v, ok := vocabs["home_ownership"]
	require.True(t, ok)
	assert.Equal(t, []string{"RENT", "OWN", table.MissingLevel}, v.Levels)

	// The missing entry now carries the explicit level.
	assert.Equal(t, table.MissingLevel, out.Col("home_ownership").Records()[2])

	i, err := v.Encode("OWN")
	assert.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = v.Encode("")
	assert.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = v.Encode("MORTGAGE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
