package pipeline

import (
	"github.com/go-gota/gota/dataframe"
	log "github.com/sirupsen/logrus"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/table"
)

// Completeness is the per-column fill-rate partition of the working table.
// Roles are fixed once computed: a column is complete, imputable, or dropped
// for the remainder of the run.
type Completeness struct {
	Complete  []string
	Imputable []string
	Dropped   []string
	Rates     map[string]float64
}

// SplitCompleteness computes fill rates over the unioned table and partitions
// the non-target columns. A fill rate of exactly 1 bypasses imputation, a
// rate at or below the threshold drops the column (a rate of 0 is dropped
// like any other, not special-cased).
func SplitCompleteness(df dataframe.DataFrame, cfg *config.Config) Completeness {
	c := Completeness{Rates: make(map[string]float64)}
	for _, name := range df.Names() {
		switch name {
		case cfg.IDColumn, cfg.TargetColumn, cfg.OriginColumn:
			continue
		}
		rate := table.FillRate(df.Col(name))
		c.Rates[name] = rate
		switch {
		case rate == 1:
			c.Complete = append(c.Complete, name)
		case rate > cfg.FillRateMin:
			c.Imputable = append(c.Imputable, name)
		default:
			c.Dropped = append(c.Dropped, name)
		}
	}

	log.WithFields(log.Fields{
		"complete":  len(c.Complete),
		"imputable": len(c.Imputable),
		"dropped":   len(c.Dropped),
	}).Debug("partitioned columns by fill rate")

	return c
}

// CompleteTable returns the fully populated columns together with the
// identifier, provenance, and target columns.
func (c Completeness) CompleteTable(df dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, error) {
	cols := append([]string{cfg.IDColumn, cfg.OriginColumn, cfg.TargetColumn}, c.Complete...)
	return table.Select(df, cols)
}

// ImputableTable returns the partially populated columns keyed by the
// identifier, ready for imputation and a later re-join.
func (c Completeness) ImputableTable(df dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, error) {
	cols := append([]string{cfg.IDColumn}, c.Imputable...)
	return table.Select(df, cols)
}
