package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ProfileBaseline is the default pipeline profile.
	ProfileBaseline = "baseline"
	// ProfileExtended widens the feature count and auto-selects outlier columns.
	ProfileExtended = "extended"

	fillRateMinDefault     = 0.75
	iqrMultiplierDefault   = 1.5
	outlierCountMaxDefault = 10000
	referenceYearDefault   = 2018
)

// Config holds every tunable of the preparation pipeline. All thresholds the
// pipeline uses come from here, never from literals in stage code.
type Config struct {
	Profile string `yaml:"profile"`

	IDColumn     string `yaml:"id_column"`
	TargetColumn string `yaml:"target_column"`
	OriginColumn string `yaml:"origin_column"`

	// FillRateMin is the drop threshold: columns with a fill rate at or below
	// it are excluded, columns strictly between it and 1 are imputed.
	FillRateMin float64 `yaml:"fill_rate_min"`

	IQRMultiplier   float64  `yaml:"iqr_multiplier"`
	OutlierColumns  []string `yaml:"outlier_columns"`
	OutlierCountMax int      `yaml:"outlier_count_max"`
	KeepRawFlagged  bool     `yaml:"keep_raw_after_flagging"`

	TopFeatures int      `yaml:"top_features"`
	MustKeep    []string `yaml:"must_keep"`

	ReferenceYear int `yaml:"reference_year"`

	PercentColumns     []string `yaml:"percent_columns"`
	CategoricalColumns []string `yaml:"categorical_columns"`
	JobTitleColumn     string   `yaml:"job_title_column"`
	DateColumns        []string `yaml:"date_columns"`
	YearColumn         string   `yaml:"year_column"`
	ZipColumn          string   `yaml:"zip_column"`

	ScaleFeatures bool `yaml:"scale_features"`
}

// Baseline returns the default profile: fixed outlier column list, top 10
// features, raw columns dropped once flagged.
func Baseline() *Config {
	return &Config{
		Profile:         ProfileBaseline,
		IDColumn:        "id",
		TargetColumn:    "default",
		OriginColumn:    "origin",
		FillRateMin:     fillRateMinDefault,
		IQRMultiplier:   iqrMultiplierDefault,
		OutlierCountMax: outlierCountMaxDefault,
		TopFeatures:     10,
		ReferenceYear:   referenceYearDefault,
		PercentColumns:  []string{"int_rate", "revol_util"},
		CategoricalColumns: []string{
			"home_ownership", "purpose", "term", "grade",
		},
		OutlierColumns: []string{"annual_inc", "revol_bal"},
		JobTitleColumn: "emp_title",
		DateColumns:    []string{"issue_d", "earliest_cr_line"},
		YearColumn:     "member_since_year",
		ZipColumn:      "zip_code",
		MustKeep:       []string{"int_rate", "annual_inc_outlier"},
	}
}

// Extended mirrors the second source pipeline variant: top 20 features,
// outlier columns derived by outlier-count threshold, raw columns retained.
func Extended() *Config {
	c := Baseline()
	c.Profile = ProfileExtended
	c.TopFeatures = 20
	c.OutlierColumns = nil
	c.KeepRawFlagged = true
	return c
}

// ForProfile returns the built-in config for the given profile name.
func ForProfile(name string) (*Config, error) {
	switch name {
	case "", ProfileBaseline:
		return Baseline(), nil
	case ProfileExtended:
		return Extended(), nil
	default:
		return nil, errors.Errorf("unknown profile: %s", name)
	}
}

// Read loads a config file, starting from the built-in profile the file names
// (or baseline) and overlaying the file's values on top of it.
func Read(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path required")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	var probe struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(b, &probe); err != nil {
		return nil, errors.Wrapf(err, "error parsing config file: %s", path)
	}

	c, err := ForProfile(probe.Profile)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error parsing config file: %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config: %s", path)
	}
	return c, nil
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	if c.IDColumn == "" || c.TargetColumn == "" || c.OriginColumn == "" {
		return errors.New("id, target, and origin column names required")
	}
	if c.FillRateMin < 0 || c.FillRateMin >= 1 {
		return errors.Errorf("fill_rate_min must be in [0, 1): %f", c.FillRateMin)
	}
	if c.IQRMultiplier <= 0 {
		return errors.Errorf("iqr_multiplier must be positive: %f", c.IQRMultiplier)
	}
	if c.TopFeatures <= 0 {
		return errors.Errorf("top_features must be positive: %d", c.TopFeatures)
	}
	if c.OutlierCountMax < 0 {
		return errors.Errorf("outlier_count_max must not be negative: %d", c.OutlierCountMax)
	}
	return nil
}
