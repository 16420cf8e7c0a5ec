package table

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// MissingLevel is the explicit category assigned to absent categorical values.
const MissingLevel = "missing"

// IsMissing reports whether a raw record represents an absent value.
func IsMissing(v string) bool {
	switch v {
	case "", "NA", "NaN", "null", "<nil>":
		return true
	}
	return false
}

// HasColumn reports whether the frame carries a column with the given name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns the named series or an error instead of gota's panic.
func Column(df dataframe.DataFrame, name string) (series.Series, error) {
	if !HasColumn(df, name) {
		return series.Series{}, errors.Errorf("column not found: %s", name)
	}
	return df.Col(name), nil
}

// FillRate returns the fraction of rows with a present value in the series.
func FillRate(s series.Series) float64 {
	n := s.Len()
	if n == 0 {
		return 0
	}
	present := 0
	for i, rec := range s.Records() {
		if !IsMissing(rec) && !s.Elem(i).IsNA() {
			present++
		}
	}
	return float64(present) / float64(n)
}

// PresentFloats returns the parseable numeric values of the series, in row
// order, skipping missing entries.
func PresentFloats(s series.Series) []float64 {
	out := make([]float64, 0, s.Len())
	for i, rec := range s.Records() {
		if IsMissing(rec) || s.Elem(i).IsNA() {
			continue
		}
		if v, err := strconv.ParseFloat(rec, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// IsNumeric reports whether the series holds numeric data: either typed as
// such by gota or string-typed with every present value parseable.
func IsNumeric(s series.Series) bool {
	switch s.Type() {
	case series.Float, series.Int:
		return true
	case series.Bool:
		return false
	}
	seen := false
	for i, rec := range s.Records() {
		if IsMissing(rec) || s.Elem(i).IsNA() {
			continue
		}
		if _, err := strconv.ParseFloat(rec, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// Select returns a sub-frame with exactly the named columns, in order.
func Select(df dataframe.DataFrame, names []string) (dataframe.DataFrame, error) {
	for _, n := range names {
		if !HasColumn(df, n) {
			return dataframe.DataFrame{}, errors.Errorf("column not found: %s", n)
		}
	}
	sub := df.Select(names)
	if sub.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(sub.Err, "selecting columns")
	}
	return sub, nil
}

// DropColumn removes one column, leaving the rest in order.
func DropColumn(df dataframe.DataFrame, name string) (dataframe.DataFrame, error) {
	keep := make([]string, 0, len(df.Names()))
	for _, n := range df.Names() {
		if n != name {
			keep = append(keep, n)
		}
	}
	if len(keep) == len(df.Names()) {
		return df, nil
	}
	return Select(df, keep)
}

// FilterEq returns the rows where the named column equals val.
func FilterEq(df dataframe.DataFrame, name, val string) (dataframe.DataFrame, error) {
	if !HasColumn(df, name) {
		return dataframe.DataFrame{}, errors.Errorf("column not found: %s", name)
	}
	sub := df.Filter(dataframe.F{Colname: name, Comparator: series.Eq, Comparando: val})
	if sub.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(sub.Err, "filtering on %s", name)
	}
	return sub, nil
}

// Join inner-joins two frames on the given key column.
func Join(a, b dataframe.DataFrame, key string) (dataframe.DataFrame, error) {
	if !HasColumn(a, key) || !HasColumn(b, key) {
		return dataframe.DataFrame{}, errors.Errorf("join key not found: %s", key)
	}
	out := a.InnerJoin(b, key)
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(out.Err, "joining on %s", key)
	}
	return out, nil
}
