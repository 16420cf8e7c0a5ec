package pipeline

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanprep/loanprep/pkg/table"
)

func TestOutlierBounds(t *testing.T) {
	lo, hi := OutlierBounds([]float64{1, 2, 3, 4, 100}, 1.5)
	// Q1=2, Q3=4, IQR=2.
	assert.InDelta(t, -1.0, lo, 1e-9)
	assert.InDelta(t, 7.0, hi, 1e-9)
}

func TestFlagOutliers(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierColumns = []string{"income"}

	df := dataframe.New(
		series.New([]string{"a", "b", "c", "d", "e"}, series.String, "id"),
		series.New([]float64{1, 2, 3, 4, 100}, series.Float, "income"),
	)

	out, err := FlagOutliers(df, cfg)
	require.NoError(t, err)

	flags := out.Col("income" + OutlierSuffix)
	assert.Equal(t, []string{"false", "false", "false", "false", "true"}, flags.Records())

	// Raw column dropped by default once flagged.
	assert.False(t, table.HasColumn(out, "income"))
}

func TestFlagOutliersKeepRaw(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierColumns = []string{"income"}
	cfg.KeepRawFlagged = true

	df := dataframe.New(
		series.New([]string{"a", "b", "c", "d", "e"}, series.String, "id"),
		series.New([]float64{1, 2, 3, 4, 100}, series.Float, "income"),
	)

	out, err := FlagOutliers(df, cfg)
	require.NoError(t, err)
	assert.True(t, table.HasColumn(out, "income"))
	assert.True(t, table.HasColumn(out, "income"+OutlierSuffix))
}

func TestFlagOutliersMissingNeverFlagged(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierColumns = []string{"income"}

	df := dataframe.New(
		series.New([]string{"a", "b", "c", "d", "e", "f"}, series.String, "id"),
		series.New([]string{"1", "2", "3", "4", "100", "NaN"}, series.String, "income"),
	)

	out, err := FlagOutliers(df, cfg)
	require.NoError(t, err)
	flags := out.Col("income" + OutlierSuffix).Records()
	assert.Equal(t, "true", flags[4])
	assert.Equal(t, "false", flags[5])
}

func TestFlagOutliersIgnoresImputedRows(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierColumns = []string{"income"}

	// Bounds over the present values contain everything: Q1=4, Q3=100.
	vals := []float64{3, 4, 4, 4, 100, 100, 100}
	for i := 0; i < 20; i++ {
		vals = append(vals, math.NaN())
	}
	df := dataframe.New(series.New(vals, series.Float, "income"))

	df, err := Impute(df, []string{"income"})
	require.NoError(t, err)

	// The imputed mass must not collapse the quartiles onto the mean.
	cfg.OutlierCountMax = 100
	assert.Empty(t, AutoSelectOutlierColumns(df, cfg))

	out, err := FlagOutliers(df, cfg)
	require.NoError(t, err)
	for i, rec := range out.Col("income" + OutlierSuffix).Records() {
		assert.Equal(t, "false", rec, "row %d", i)
	}
}

func TestFlagOutliersNonNumeric(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierColumns = []string{"grade"}

	df := dataframe.New(
		series.New([]string{"a"}, series.String, "id"),
		series.New([]string{"A"}, series.String, "grade"),
	)

	_, err := FlagOutliers(df, cfg)
	assert.Error(t, err)
}

func TestAutoSelectOutlierColumns(t *testing.T) {
	cfg := testConfig()
	cfg.OutlierColumns = nil
	cfg.OutlierCountMax = 1

	df := dataframe.New(
		series.New([]string{"a", "b", "c", "d", "e"}, series.String, "id"),
		series.New([]float64{1, 2, 3, 4, 100}, series.Float, "spiky"),
		series.New([]float64{1, 2, 3, 4, 5}, series.Float, "flat"),
		series.New([]string{"x", "y", "z", "x", "y"}, series.String, "cat"),
	)

	cols := AutoSelectOutlierColumns(df, cfg)
	assert.Equal(t, []string{"spiky"}, cols)

	// A threshold of zero rejects every column with outliers.
	cfg.OutlierCountMax = 0
	assert.Empty(t, AutoSelectOutlierColumns(df, cfg))
}
