package pipeline

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/table"
)

const (
	// OriginTrain and OriginTest are the values of the provenance column.
	OriginTrain = "train"
	OriginTest  = "test"
)

// Load reads the train and test CSV files and unions them into one working
// table with a provenance column.
func Load(trainPath, testPath string, cfg *config.Config) (dataframe.DataFrame, error) {
	tf, err := os.Open(trainPath)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "error opening train file: %s", trainPath)
	}
	defer tf.Close()

	sf, err := os.Open(testPath)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "error opening test file: %s", testPath)
	}
	defer sf.Close()

	return LoadReaders(tf, sf, cfg)
}

// LoadReaders is Load for already-open sources.
func LoadReaders(train, test io.Reader, cfg *config.Config) (dataframe.DataFrame, error) {
	trainDF := dataframe.ReadCSV(train, dataframe.HasHeader(true))
	if trainDF.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(trainDF.Err, "error reading train csv")
	}
	testDF := dataframe.ReadCSV(test, dataframe.HasHeader(true))
	if testDF.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(testDF.Err, "error reading test csv")
	}
	return Union(trainDF, testDF, cfg)
}

// Union tags both partitions with the origin column and stacks them. The
// target column's type is aligned across the two sources first: the test
// partition may carry an integer-coded stand-in or no target at all.
func Union(train, test dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, error) {
	if err := checkSchema(train, test, cfg); err != nil {
		return dataframe.DataFrame{}, err
	}

	train = alignTarget(train, cfg.TargetColumn)
	test = alignTarget(test, cfg.TargetColumn)

	train = train.Mutate(constantColumn(OriginTrain, cfg.OriginColumn, train.Nrow()))
	test = test.Mutate(constantColumn(OriginTest, cfg.OriginColumn, test.Nrow()))

	// Column order must agree before stacking.
	test = test.Select(train.Names())
	if test.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(test.Err, "reordering test columns")
	}

	out := train.RBind(test)
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(out.Err, "stacking train and test")
	}

	log.WithFields(log.Fields{
		"train_rows": train.Nrow(),
		"test_rows":  test.Nrow(),
		"columns":    out.Ncol(),
	}).Debug("loaded working table")

	return out, nil
}

// SplitOrigin partitions the working table back into its train and test row
// sets, dropping the provenance column from each.
func SplitOrigin(df dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, dataframe.DataFrame, error) {
	train, err := table.FilterEq(df, cfg.OriginColumn, OriginTrain)
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}
	test, err := table.FilterEq(df, cfg.OriginColumn, OriginTest)
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}
	if train, err = table.DropColumn(train, cfg.OriginColumn); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}
	if test, err = table.DropColumn(test, cfg.OriginColumn); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}
	return train, test, nil
}

func checkSchema(train, test dataframe.DataFrame, cfg *config.Config) error {
	if !table.HasColumn(train, cfg.IDColumn) || !table.HasColumn(test, cfg.IDColumn) {
		return errors.Wrapf(ErrSchemaMismatch, "both sources must carry the %s column", cfg.IDColumn)
	}
	if !table.HasColumn(train, cfg.TargetColumn) {
		return errors.Wrapf(ErrSchemaMismatch, "train source must carry the %s column", cfg.TargetColumn)
	}

	a := nonTargetColumns(train, cfg.TargetColumn)
	b := nonTargetColumns(test, cfg.TargetColumn)
	if diff := symmetricDiff(a, b); len(diff) > 0 {
		return errors.Wrapf(ErrSchemaMismatch, "train/test columns differ: %s", strings.Join(diff, ", "))
	}
	return nil
}

// alignTarget coerces the target column to string records so integer-coded
// labels union cleanly, and adds an all-missing target when the source
// (typically the test partition) lacks one.
func alignTarget(df dataframe.DataFrame, target string) dataframe.DataFrame {
	if !table.HasColumn(df, target) {
		blank := make([]string, df.Nrow())
		for i := range blank {
			blank[i] = "NaN"
		}
		return df.Mutate(series.New(blank, series.String, target))
	}
	return df.Mutate(series.New(df.Col(target).Records(), series.String, target))
}

func constantColumn(val, name string, n int) series.Series {
	vals := make([]string, n)
	for i := range vals {
		vals[i] = val
	}
	return series.New(vals, series.String, name)
}

func nonTargetColumns(df dataframe.DataFrame, target string) []string {
	out := make([]string, 0, df.Ncol())
	for _, n := range df.Names() {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

func symmetricDiff(a, b []string) []string {
	seen := make(map[string]int, len(a)+len(b))
	for _, n := range a {
		seen[n] |= 1
	}
	for _, n := range b {
		seen[n] |= 2
	}
	var out []string
	for n, m := range seen {
		if m != 3 {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
