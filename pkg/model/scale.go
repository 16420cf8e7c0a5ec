package model

import (
	"github.com/ezoic/scigo/preprocessing"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ScaleColumns standardizes the named numeric columns in place (zero mean,
// unit variance) and returns the updated frame.
func ScaleColumns(df dataframe.DataFrame, cols []string) (dataframe.DataFrame, error) {
	if len(cols) == 0 {
		return df, nil
	}

	n := df.Nrow()
	data := make([]float64, 0, n*len(cols))
	columns := make([][]float64, len(cols))
	for j, name := range cols {
		s := df.Col(name)
		if s.Err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(s.Err, "column %s", name)
		}
		vals, err := columnFloats(s)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(err, "column %s", name)
		}
		columns[j] = vals
	}
	for i := 0; i < n; i++ {
		for j := range cols {
			data = append(data, columns[j][i])
		}
	}

	x := mat.NewDense(n, len(cols), data)
	scaler := preprocessing.NewStandardScaler(true, true)
	if err := scaler.Fit(x); err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "fitting scaler")
	}
	scaled, err := scaler.Transform(x)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "scaling columns")
	}

	for j, name := range cols {
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = scaled.At(i, j)
		}
		df = df.Mutate(series.New(vals, series.Float, name))
		if df.Err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(df.Err, "replacing column %s", name)
		}
	}
	return df, nil
}
