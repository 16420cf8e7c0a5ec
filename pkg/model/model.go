// Package model is the boundary to the external learning machinery. The
// pipeline assembles tables and consumes ordered scores and probabilities;
// the ensemble algorithms themselves live in third-party libraries behind
// the two interfaces below.
package model

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// FeatureScore is one entry of an importance ranking.
type FeatureScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Ranker produces an importance ranking over the feature columns of a table,
// ordered by descending score.
type Ranker interface {
	Rank(df dataframe.DataFrame, target string) ([]FeatureScore, error)
}

// Classifier fits on the train partition and returns one positive-class
// probability per test row, each in [0, 1].
type Classifier interface {
	FitPredict(train, test dataframe.DataFrame, target string) ([]float64, error)
}

// EncodeNumeric converts every non-target column of the frame to floats:
// numeric columns are parsed, booleans become 0/1, and string categories are
// label-encoded in first-seen order. The target column passes through
// untouched.
func EncodeNumeric(df dataframe.DataFrame, target string) (dataframe.DataFrame, error) {
	for _, name := range df.Names() {
		if name == target {
			continue
		}
		s := df.Col(name)
		vals, err := columnFloats(s)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(err, "encoding column %s", name)
		}
		df = df.Mutate(series.New(vals, series.Float, name))
		if df.Err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(df.Err, "replacing column %s", name)
		}
	}
	return df, nil
}

func columnFloats(s series.Series) ([]float64, error) {
	recs := s.Records()
	out := make([]float64, len(recs))

	switch s.Type() {
	case series.Bool:
		for i, rec := range recs {
			if rec == "true" {
				out[i] = 1
			}
		}
		return out, nil
	case series.Float, series.Int:
		for i, rec := range recs {
			v, err := strconv.ParseFloat(rec, 64)
			if err != nil {
				return nil, errors.Errorf("row %d: %q", i, rec)
			}
			out[i] = v
		}
		return out, nil
	}

	// Try numeric first; fall back to label encoding.
	numeric := true
	for _, rec := range recs {
		if _, err := strconv.ParseFloat(rec, 64); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		for i, rec := range recs {
			v, _ := strconv.ParseFloat(rec, 64)
			out[i] = v
		}
		return out, nil
	}

	labels := make(map[string]int)
	for i, rec := range recs {
		code, ok := labels[rec]
		if !ok {
			code = len(labels)
			labels[rec] = code
		}
		out[i] = float64(code)
	}
	return out, nil
}
