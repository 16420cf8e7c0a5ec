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

// Job-title buckets. Executive keywords are checked before specialist
// keywords, so a title matching both lands in the executive bucket.
const (
	BucketExecutive  = "executive"
	BucketSpecialist = "specialist"
	BucketOther      = "other"
)

var (
	executiveKeywords  = []string{"manager", "director", "ceo"}
	specialistKeywords = []string{"engineer", "specialist"}
)

// BucketJobTitle maps a free-text job title to a coarse category. Missing or
// empty titles map to the other bucket.
func BucketJobTitle(title string) string {
	if table.IsMissing(title) {
		return BucketOther
	}
	lower := strings.ToLower(title)
	for _, kw := range executiveKeywords {
		if strings.Contains(lower, kw) {
			return BucketExecutive
		}
	}
	for _, kw := range specialistKeywords {
		if strings.Contains(lower, kw) {
			return BucketSpecialist
		}
	}
	return BucketOther
}

// SplitDateParts splits a composite "Mon-YYYY" string into its month and
// year parts by fixed offsets.
func SplitDateParts(val string) (string, string, error) {
	if len(val) < 8 {
		return "", "", errors.Wrapf(ErrMalformedDate, "value %q shorter than Mon-YYYY", val)
	}
	return val[:3], val[len(val)-4:], nil
}

// absent reports whether a record carries no real value: a raw missing
// marker, a gota NA, or the explicit missing level a categorical imputation
// pass may already have filled in.
func absent(s series.Series, i int, rec string) bool {
	return rec == table.MissingLevel || table.IsMissing(rec) || s.Elem(i).IsNA()
}

// EngineerFeatures derives the engineered columns: job-title buckets, date
// month/year splits, relationship length from the membership year, and
// truncated postal regions. Source columns are dropped once derived. Absent
// values, including gaps already filled with the missing level, propagate as
// missing parts instead of failing the derivation.
func EngineerFeatures(df dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, error) {
	var err error
	if df, err = bucketColumn(df, cfg.JobTitleColumn); err != nil {
		return dataframe.DataFrame{}, err
	}
	for _, col := range cfg.DateColumns {
		if df, err = splitDateColumn(df, col); err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	if df, err = relationshipLength(df, cfg.YearColumn, cfg.ReferenceYear); err != nil {
		return dataframe.DataFrame{}, err
	}
	if df, err = truncateZip(df, cfg.ZipColumn); err != nil {
		return dataframe.DataFrame{}, err
	}
	return df, nil
}

func bucketColumn(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	if col == "" || !table.HasColumn(df, col) {
		return df, nil
	}
	s := df.Col(col)
	buckets := make([]string, s.Len())
	for i, rec := range s.Records() {
		if absent(s, i, rec) {
			rec = ""
		}
		buckets[i] = BucketJobTitle(rec)
	}
	df = df.Mutate(series.New(buckets, series.String, col+"_bucket"))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "bucketing column %s", col)
	}
	log.WithField("column", col).Debug("bucketed job titles")
	return table.DropColumn(df, col)
}

func splitDateColumn(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	if col == "" || !table.HasColumn(df, col) {
		return df, nil
	}
	s := df.Col(col)
	months := make([]string, s.Len())
	years := make([]string, s.Len())
	for i, rec := range s.Records() {
		if absent(s, i, rec) {
			months[i] = table.MissingLevel
			years[i] = table.MissingLevel
			continue
		}
		m, y, err := SplitDateParts(rec)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(err, "column %s row %d", col, i)
		}
		months[i] = m
		years[i] = y
	}
	df = df.Mutate(series.New(months, series.String, col+"_month"))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "splitting column %s", col)
	}
	df = df.Mutate(series.New(years, series.String, col+"_year"))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "splitting column %s", col)
	}
	return table.DropColumn(df, col)
}

func relationshipLength(df dataframe.DataFrame, col string, referenceYear int) (dataframe.DataFrame, error) {
	if col == "" || !table.HasColumn(df, col) {
		return df, nil
	}
	s := df.Col(col)
	lengths := make([]float64, s.Len())
	for i, rec := range s.Records() {
		if absent(s, i, rec) {
			lengths[i] = math.NaN()
			continue
		}
		y, err := strconv.ParseFloat(rec, 64)
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(ErrParse, "column %s row %d: %q", col, i, rec)
		}
		lengths[i] = float64(referenceYear) - y
	}
	df = df.Mutate(series.New(lengths, series.Float, "relationship_years"))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "deriving relationship length from %s", col)
	}
	return table.DropColumn(df, col)
}

func truncateZip(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	if col == "" || !table.HasColumn(df, col) {
		return df, nil
	}
	s := df.Col(col)
	regions := make([]string, s.Len())
	for i, rec := range s.Records() {
		if absent(s, i, rec) {
			regions[i] = table.MissingLevel
			continue
		}
		if len(rec) > 2 {
			rec = rec[:2]
		}
		regions[i] = rec
	}
	df = df.Mutate(series.New(regions, series.String, col+"_region"))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "truncating column %s", col)
	}
	return table.DropColumn(df, col)
}
