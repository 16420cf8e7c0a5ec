package pipeline

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/loanprep/loanprep/pkg/table"
)

// MissingSuffix is appended to a column name to form its missingness
// indicator column.
const MissingSuffix = "_missing"

// Impute fills the gaps of every listed column in the sub-table. Numeric
// columns get a boolean missingness indicator and are filled with the
// column's pre-imputation mean; the mean is computed once over the present
// values before any entry is overwritten, so the result is independent of row
// order. Categorical columns are filled with the explicit missing level and
// carry no indicator.
func Impute(df dataframe.DataFrame, cols []string) (dataframe.DataFrame, error) {
	for _, col := range cols {
		s, err := table.Column(df, col)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		if table.IsNumeric(s) {
			df, err = imputeMean(df, s, col)
		} else {
			df, err = imputeMissingLevel(df, s, col)
		}
		if err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	return df, nil
}

func imputeMean(df dataframe.DataFrame, s series.Series, col string) (dataframe.DataFrame, error) {
	present := table.PresentFloats(s)
	if len(present) == 0 {
		return dataframe.DataFrame{}, errors.Wrapf(ErrEmptyColumn, "column %s has no present values", col)
	}
	mean := stat.Mean(present, nil)

	n := s.Len()
	missing := make([]bool, n)
	filled := make([]float64, n)
	for i, rec := range s.Records() {
		if table.IsMissing(rec) || s.Elem(i).IsNA() {
			missing[i] = true
			filled[i] = mean
			continue
		}
		v, err := strconv.ParseFloat(rec, 64)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(ErrParse, "column %s row %d: %q", col, i, rec)
		}
		filled[i] = v
	}

	// Indicator first, then the overwrite.
	df = df.Mutate(series.New(missing, series.Bool, col+MissingSuffix))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "adding indicator for %s", col)
	}
	df = df.Mutate(series.New(filled, series.Float, col))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "filling column %s", col)
	}

	log.WithFields(log.Fields{"column": col, "mean": mean}).Debug("imputed numeric column")
	return df, nil
}

func imputeMissingLevel(df dataframe.DataFrame, s series.Series, col string) (dataframe.DataFrame, error) {
	recs := s.Records()
	for i := range recs {
		if table.IsMissing(recs[i]) || s.Elem(i).IsNA() {
			recs[i] = table.MissingLevel
		}
	}
	df = df.Mutate(series.New(recs, series.String, col))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "filling column %s", col)
	}
	log.WithField("column", col).Debug("imputed categorical column")
	return df, nil
}
