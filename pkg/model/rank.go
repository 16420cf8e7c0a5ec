package model

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// CorrelationRanker scores each feature by the absolute Pearson correlation
// between the encoded feature and the binary target. It stands in for an
// impurity-based importance where no fitted ensemble is available; the
// ranking contract is the same either way.
type CorrelationRanker struct {
	// PositiveClass is the target label encoded as 1.
	PositiveClass string
}

// Rank returns all non-target columns ordered by descending score, ties kept
// in original column order.
func (r CorrelationRanker) Rank(df dataframe.DataFrame, target string) ([]FeatureScore, error) {
	encoded, err := EncodeNumeric(df, target)
	if err != nil {
		return nil, err
	}

	ts := encoded.Col(target)
	if ts.Err != nil {
		return nil, errors.Wrapf(ts.Err, "target column %s", target)
	}
	ys := make([]float64, ts.Len())
	for i, rec := range ts.Records() {
		if rec == r.PositiveClass {
			ys[i] = 1
		}
	}

	var scores []FeatureScore
	for _, name := range encoded.Names() {
		if name == target {
			continue
		}
		xs := encoded.Col(name).Float()
		c := stat.Correlation(xs, ys, nil)
		if math.IsNaN(c) {
			c = 0
		}
		scores = append(scores, FeatureScore{Name: name, Score: math.Abs(c)})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}
