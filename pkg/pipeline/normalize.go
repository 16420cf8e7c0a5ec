package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/table"
)

// Class labels for the binary target. The 0/1 mapping is fixed and never
// inferred from the data.
const (
	ClassNoDefault = "no_default"
	ClassDefault   = "default"
)

// Vocabulary is the fixed category set of one categorical column, derived
// from the distinct values observed over the unioned table, in first-seen
// order. Absent values are represented by the explicit missing level.
type Vocabulary struct {
	Levels []string
	index  map[string]int
}

// BuildVocabulary derives the vocabulary of a series.
func BuildVocabulary(s series.Series) Vocabulary {
	v := Vocabulary{index: make(map[string]int)}
	for i, rec := range s.Records() {
		if table.IsMissing(rec) || s.Elem(i).IsNA() {
			rec = table.MissingLevel
		}
		if _, ok := v.index[rec]; !ok {
			v.index[rec] = len(v.Levels)
			v.Levels = append(v.Levels, rec)
		}
	}
	return v
}

// Encode maps a value to its level index. A value never observed during
// vocabulary construction is an error: the batch run unions train and test
// before encoding, so this only fires when the vocabulary is reused against
// data outside that union.
func (v Vocabulary) Encode(val string) (int, error) {
	if table.IsMissing(val) {
		val = table.MissingLevel
	}
	i, ok := v.index[val]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownCategory, "value %q not in vocabulary", val)
	}
	return i, nil
}

// Normalize coerces column types on the working table: percent-suffixed
// strings become floats, designated categorical columns get fixed
// vocabularies with an explicit missing level, and the binary target is
// relabeled into named classes.
func Normalize(df dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, map[string]Vocabulary, error) {
	var err error
	for _, col := range cfg.PercentColumns {
		if !table.HasColumn(df, col) {
			continue
		}
		if df, err = parsePercent(df, col); err != nil {
			return dataframe.DataFrame{}, nil, err
		}
	}

	if df, err = relabelTarget(df, cfg.TargetColumn); err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	vocabs := make(map[string]Vocabulary)
	for _, col := range cfg.CategoricalColumns {
		if !table.HasColumn(df, col) {
			continue
		}
		s := df.Col(col)
		recs := s.Records()
		for i := range recs {
			if table.IsMissing(recs[i]) || s.Elem(i).IsNA() {
				recs[i] = table.MissingLevel
			}
		}
		norm := series.New(recs, series.String, col)
		vocabs[col] = BuildVocabulary(norm)
		df = df.Mutate(norm)
		if df.Err != nil {
			return dataframe.DataFrame{}, nil, errors.Wrapf(df.Err, "normalizing column %s", col)
		}
	}

	log.WithFields(log.Fields{
		"percent_columns":     len(cfg.PercentColumns),
		"categorical_columns": len(vocabs),
	}).Debug("normalized working table")

	return df, vocabs, nil
}

// parsePercent strips a trailing percent sign and parses the remainder as a
// float. Missing entries stay missing; anything else non-numeric is fatal.
func parsePercent(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	s := df.Col(col)
	vals := make([]float64, s.Len())
	for i, rec := range s.Records() {
		if table.IsMissing(rec) || s.Elem(i).IsNA() {
			vals[i] = math.NaN()
			continue
		}
		raw := strings.TrimSuffix(strings.TrimSpace(rec), "%")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(ErrParse, "column %s row %d: %q", col, i, rec)
		}
		vals[i] = v
	}
	out := df.Mutate(series.New(vals, series.Float, col))
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(out.Err, "replacing column %s", col)
	}
	return out, nil
}

func relabelTarget(df dataframe.DataFrame, target string) (dataframe.DataFrame, error) {
	s := df.Col(target)
	recs := s.Records()
	for i, rec := range recs {
		if table.IsMissing(rec) || s.Elem(i).IsNA() {
			recs[i] = "NaN"
			continue
		}
		switch strings.TrimSpace(rec) {
		case "0", ClassNoDefault:
			recs[i] = ClassNoDefault
		case "1", ClassDefault:
			recs[i] = ClassDefault
		default:
			return dataframe.DataFrame{}, errors.Wrapf(ErrParse, "column %s row %d: unexpected label %q", target, i, rec)
		}
	}
	out := df.Mutate(series.New(recs, series.String, target))
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(out.Err, "relabeling column %s", target)
	}
	return out, nil
}
