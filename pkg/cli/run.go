package cli

import (
	urfave "github.com/urfave/cli/v2"

	"github.com/loanprep/loanprep/pkg/model"
	"github.com/loanprep/loanprep/pkg/pipeline"
)

const forestSizeDefault = 100

var (
	trainFileFlag = &urfave.StringFlag{
		Name:     "train",
		Usage:    "Path to the training CSV file",
		Required: true,
	}

	testFileFlag = &urfave.StringFlag{
		Name:     "test",
		Usage:    "Path to the test CSV file",
		Required: true,
	}

	outFileFlag = &urfave.StringFlag{
		Name:  "out",
		Usage: "Path of the prediction output file",
		Value: "predictions.csv",
	}

	treesFlag = &urfave.IntFlag{
		Name:  "trees",
		Usage: "Number of trees in the random forest",
		Value: forestSizeDefault,
	}

	runCmd = &urfave.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Runs the full preparation pipeline and exports predictions",
		Action:  cmdRun,
		Flags: []urfave.Flag{
			trainFileFlag,
			testFileFlag,
			outFileFlag,
			treesFlag,
		},
	}
)

type runSummary struct {
	RunID     string   `json:"run_id" yaml:"run_id"`
	Profile   string   `json:"profile" yaml:"profile"`
	TrainRows int      `json:"train_rows" yaml:"train_rows"`
	TestRows  int      `json:"test_rows" yaml:"test_rows"`
	Out       string   `json:"out" yaml:"out"`
	Features  []string `json:"features" yaml:"features"`
	Duration  string   `json:"duration" yaml:"duration"`
}

func cmdRun(c *urfave.Context) error {
	app := getConfig(c)

	ranker := model.CorrelationRanker{PositiveClass: pipeline.ClassDefault}
	forest := model.NewForest(c.Int(treesFlag.Name), pipeline.ClassDefault)

	p := pipeline.New(app.Cfg, ranker, forest).WithRunLog(app.DB)
	res, err := p.Run(
		c.String(trainFileFlag.Name),
		c.String(testFileFlag.Name),
		c.String(outFileFlag.Name),
	)
	if err != nil {
		return err
	}

	return encode(runSummary{
		RunID:     res.RunID,
		Profile:   res.Profile,
		TrainRows: res.TrainRows,
		TestRows:  res.TestRows,
		Out:       c.String(outFileFlag.Name),
		Features:  res.Selected,
		Duration:  res.Duration.String(),
	})
}
