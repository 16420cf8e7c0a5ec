package pipeline

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanprep/loanprep/pkg/model"
)

func TestSelectFeatures(t *testing.T) {
	cfg := testConfig()
	cfg.TopFeatures = 2

	order := []string{"a", "b", "c", "d"}
	scores := []model.FeatureScore{
		{Name: "d", Score: 0.5},
		{Name: "a", Score: 0.5},
		{Name: "b", Score: 0.9},
		{Name: "c", Score: 0.1},
	}

	// b wins outright; the 0.5 tie resolves to a by original column order.
	got := SelectFeatures(scores, order, cfg)
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestSelectFeaturesMustKeep(t *testing.T) {
	cfg := testConfig()
	cfg.TopFeatures = 1
	cfg.MustKeep = []string{"c", "b", "ghost"}

	order := []string{"a", "b", "c"}
	scores := []model.FeatureScore{
		{Name: "a", Score: 0.9},
		{Name: "b", Score: 0.8},
		{Name: "c", Score: 0.1},
	}

	// Top pick plus must-keeps, deduplicated, unknown names dropped.
	got := SelectFeatures(scores, order, cfg)
	assert.Equal(t, []string{"a", "c", "b"}, got)
}

func TestSelectFeaturesFewerThanN(t *testing.T) {
	cfg := testConfig()
	cfg.TopFeatures = 10

	scores := []model.FeatureScore{{Name: "a", Score: 0.9}}
	got := SelectFeatures(scores, []string{"a"}, cfg)
	assert.Equal(t, []string{"a"}, got)
}

func TestRankerInput(t *testing.T) {
	cfg := testConfig()

	df := dataframe.New(
		series.New([]string{"a", "b", "c"}, series.String, "id"),
		series.New([]string{"train", "train", "test"}, series.String, "origin"),
		series.New([]string{ClassNoDefault, ClassDefault, "NaN"}, series.String, "default"),
		series.New([]float64{1, 2, 3}, series.Float, "x"),
	)

	input, err := RankerInput(df, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, input.Nrow())
	assert.Equal(t, []string{"default", "x"}, input.Names())
}
