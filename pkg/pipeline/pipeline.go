// Package pipeline implements the loan dataset preparation pipeline: load,
// normalize, partition by fill rate, impute, flag outliers, engineer
// features, select by importance, and export predictions. Stages run
// strictly in sequence over a single in-memory table; every failure is fatal
// to the run.
package pipeline

import (
	"database/sql"
	"time"

	"github.com/go-gota/gota/dataframe"
	log "github.com/sirupsen/logrus"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/model"
	"github.com/loanprep/loanprep/pkg/runlog"
	"github.com/loanprep/loanprep/pkg/table"
)

// Pipeline wires the stages to a configuration and the external model
// boundary.
type Pipeline struct {
	cfg    *config.Config
	ranker model.Ranker
	clf    model.Classifier
	db     *sql.DB
}

// Result summarizes a completed run.
type Result struct {
	RunID        string
	Profile      string
	TrainRows    int
	TestRows     int
	Selected     []string
	Completeness Completeness
	Vocabularies map[string]Vocabulary
	Duration     time.Duration
}

// New returns a pipeline for the given configuration and model boundary.
func New(cfg *config.Config, ranker model.Ranker, clf model.Classifier) *Pipeline {
	return &Pipeline{cfg: cfg, ranker: ranker, clf: clf}
}

// WithRunLog attaches an optional run-metadata database.
func (p *Pipeline) WithRunLog(db *sql.DB) *Pipeline {
	p.db = db
	return p
}

// Run executes the full pipeline and writes the prediction file. Each stage's
// output replaces the previous binding so superseded tables are released as
// the run progresses.
func (p *Pipeline) Run(trainPath, testPath, outPath string) (*Result, error) {
	started := time.Now()
	cfg := p.cfg

	df, err := Load(trainPath, testPath, cfg)
	if err != nil {
		return nil, err
	}

	df, vocabs, err := Normalize(df, cfg)
	if err != nil {
		return nil, err
	}

	comp := SplitCompleteness(df, cfg)
	complete, err := comp.CompleteTable(df, cfg)
	if err != nil {
		return nil, err
	}

	if len(comp.Imputable) > 0 {
		part, err := comp.ImputableTable(df, cfg)
		if err != nil {
			return nil, err
		}
		df = dataframe.DataFrame{}

		if part, err = Impute(part, comp.Imputable); err != nil {
			return nil, err
		}
		if complete, err = table.Join(complete, part, cfg.IDColumn); err != nil {
			return nil, err
		}
	} else {
		df = dataframe.DataFrame{}
	}

	if complete, err = FlagOutliers(complete, cfg); err != nil {
		return nil, err
	}
	if complete, err = EngineerFeatures(complete, cfg); err != nil {
		return nil, err
	}

	input, err := RankerInput(complete, cfg)
	if err != nil {
		return nil, err
	}
	scores, err := p.ranker.Rank(input, cfg.TargetColumn)
	if err != nil {
		return nil, err
	}
	order := nonTargetColumns(input, cfg.TargetColumn)
	input = dataframe.DataFrame{}

	selected := SelectFeatures(scores, order, cfg)
	log.WithField("features", selected).Debug("selected features")

	if cfg.ScaleFeatures {
		if complete, err = model.ScaleColumns(complete, numericOnly(complete, selected)); err != nil {
			return nil, err
		}
	}

	cols := append([]string{cfg.IDColumn, cfg.OriginColumn, cfg.TargetColumn}, selected...)
	modelTable, err := table.Select(complete, cols)
	if err != nil {
		return nil, err
	}
	complete = dataframe.DataFrame{}

	trainDF, testDF, err := SplitOrigin(modelTable, cfg)
	if err != nil {
		return nil, err
	}
	modelTable = dataframe.DataFrame{}

	trainModel, err := table.DropColumn(trainDF, cfg.IDColumn)
	if err != nil {
		return nil, err
	}
	testModel, err := table.DropColumn(testDF, cfg.IDColumn)
	if err != nil {
		return nil, err
	}

	probs, err := p.clf.FitPredict(trainModel, testModel, cfg.TargetColumn)
	if err != nil {
		return nil, err
	}

	if err := ExportFile(outPath, testDF, probs, cfg); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:        runlog.NewRunID(started),
		Profile:      cfg.Profile,
		TrainRows:    trainDF.Nrow(),
		TestRows:     testDF.Nrow(),
		Selected:     selected,
		Completeness: comp,
		Vocabularies: vocabs,
		Duration:     time.Since(started),
	}

	if p.db != nil {
		if err := p.record(res, outPath); err != nil {
			// Metadata only, the export already succeeded.
			log.WithField("error", err).Warn("failed to record run")
		}
	}

	log.WithFields(log.Fields{
		"run":      res.RunID,
		"duration": res.Duration,
		"features": len(res.Selected),
	}).Info("pipeline complete")

	return res, nil
}

func (p *Pipeline) record(res *Result, outPath string) error {
	r := runlog.Run{
		ID:         res.RunID,
		Profile:    res.Profile,
		Started:    time.Now().Add(-res.Duration),
		DurationMS: res.Duration.Milliseconds(),
		TrainRows:  res.TrainRows,
		TestRows:   res.TestRows,
		OutPath:    outPath,
		Features:   res.Selected,
	}
	return runlog.Save(p.db, r, columnStats(res.Completeness))
}

func columnStats(c Completeness) []runlog.ColumnStat {
	var out []runlog.ColumnStat
	add := func(names []string, role string) {
		for _, n := range names {
			out = append(out, runlog.ColumnStat{Name: n, Role: role, FillRate: c.Rates[n]})
		}
	}
	add(c.Complete, "complete")
	add(c.Imputable, "imputable")
	add(c.Dropped, "dropped")
	return out
}

func numericOnly(df dataframe.DataFrame, names []string) []string {
	var out []string
	for _, n := range names {
		if table.HasColumn(df, n) && table.IsNumeric(df.Col(n)) {
			out = append(out, n)
		}
	}
	return out
}
