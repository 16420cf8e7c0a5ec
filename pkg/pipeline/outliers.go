package pipeline

import (
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/table"
)

// OutlierSuffix is appended to a column name to form its outlier flag column.
const OutlierSuffix = "_outlier"

// OutlierBounds returns the interval outside which a value counts as an
// outlier: [Q1 - k*IQR, Q3 + k*IQR] over the given values.
func OutlierBounds(vals []float64, k float64) (float64, float64) {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}

// FlagOutliers adds one boolean flag column per checked numeric column. The
// checked set comes from configuration, or is auto-selected by outlier count
// when the configured list is empty. Bounds are computed over the values that
// were present before any imputation, so filled-in means never shift the
// quartiles; originally missing entries are never flagged. Raw columns are
// dropped after flagging unless configured otherwise.
func FlagOutliers(df dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, error) {
	cols := cfg.OutlierColumns
	if len(cols) == 0 {
		cols = AutoSelectOutlierColumns(df, cfg)
		log.WithField("columns", cols).Debug("auto-selected outlier columns")
	}

	for _, col := range cols {
		if !table.HasColumn(df, col) {
			continue
		}
		s := df.Col(col)
		if !table.IsNumeric(s) {
			return dataframe.DataFrame{}, errors.Errorf("outlier column %s is not numeric", col)
		}

		present := presentUnimputed(df, col)
		if len(present) == 0 {
			return dataframe.DataFrame{}, errors.Wrapf(ErrEmptyColumn, "outlier column %s has no present values", col)
		}
		lo, hi := OutlierBounds(present, cfg.IQRMultiplier)

		imputed := imputedRows(df, col)
		flags := make([]bool, s.Len())
		for i, rec := range s.Records() {
			if imputed != nil && imputed[i] {
				continue
			}
			if table.IsMissing(rec) || s.Elem(i).IsNA() {
				continue
			}
			v, err := strconv.ParseFloat(rec, 64)
			if err != nil {
				return dataframe.DataFrame{}, errors.Wrapf(ErrParse, "column %s row %d: %q", col, i, rec)
			}
			flags[i] = v < lo || v > hi
		}

		df = df.Mutate(series.New(flags, series.Bool, col+OutlierSuffix))
		if df.Err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(df.Err, "adding outlier flag for %s", col)
		}
		if !cfg.KeepRawFlagged {
			var err error
			if df, err = table.DropColumn(df, col); err != nil {
				return dataframe.DataFrame{}, err
			}
		}
		log.WithFields(log.Fields{"column": col, "low": lo, "high": hi}).Debug("flagged outliers")
	}
	return df, nil
}

// AutoSelectOutlierColumns picks the numeric columns worth flagging: those
// with at least one outlier but no more than the configured count threshold.
func AutoSelectOutlierColumns(df dataframe.DataFrame, cfg *config.Config) []string {
	var out []string
	for _, name := range df.Names() {
		switch name {
		case cfg.IDColumn, cfg.TargetColumn, cfg.OriginColumn:
			continue
		}
		s := df.Col(name)
		if !table.IsNumeric(s) {
			continue
		}
		present := presentUnimputed(df, name)
		if len(present) == 0 {
			continue
		}
		lo, hi := OutlierBounds(present, cfg.IQRMultiplier)
		count := 0
		for _, v := range present {
			if v < lo || v > hi {
				count++
			}
		}
		if count > 0 && count <= cfg.OutlierCountMax {
			out = append(out, name)
		}
	}
	return out
}

// imputedRows returns the column's missingness-indicator values, or nil when
// the column was never imputed.
func imputedRows(df dataframe.DataFrame, col string) []bool {
	if !table.HasColumn(df, col+MissingSuffix) {
		return nil
	}
	recs := df.Col(col + MissingSuffix).Records()
	out := make([]bool, len(recs))
	for i, rec := range recs {
		out[i] = rec == "true"
	}
	return out
}

// presentUnimputed returns the column's numeric values for the rows that were
// present before imputation, falling back to plain present values when the
// column carries no missingness indicator.
func presentUnimputed(df dataframe.DataFrame, col string) []float64 {
	s := df.Col(col)
	imputed := imputedRows(df, col)
	if imputed == nil {
		return table.PresentFloats(s)
	}

	out := make([]float64, 0, s.Len())
	for i, rec := range s.Records() {
		if imputed[i] || table.IsMissing(rec) || s.Elem(i).IsNA() {
			continue
		}
		if v, err := strconv.ParseFloat(rec, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}
