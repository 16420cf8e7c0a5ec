package cli

import (
	urfave "github.com/urfave/cli/v2"

	"github.com/loanprep/loanprep/pkg/runlog"
)

const runListLimitDefault = 20

var (
	runLimitFlag = &urfave.IntFlag{
		Name:  "limit",
		Usage: "Limits number of runs returned",
		Value: runListLimitDefault,
	}

	runIDFlag = &urfave.StringFlag{
		Name:     "run",
		Usage:    "Run ID",
		Required: true,
	}

	runsCmd = &urfave.Command{
		Name:    "runs",
		Aliases: []string{"q"},
		Usage:   "Queries the recorded pipeline runs",
		Subcommands: []*urfave.Command{
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "Lists recorded runs, newest first",
				Action:  cmdRunsList,
				Flags:   []urfave.Flag{runLimitFlag},
			},
			{
				Name:    "columns",
				Aliases: []string{"c"},
				Usage:   "Lists the column roles and fill rates of one run",
				Action:  cmdRunColumns,
				Flags:   []urfave.Flag{runIDFlag},
			},
		},
	}

	configCmd = &urfave.Command{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Prints the effective pipeline configuration",
		Action:  cmdConfig,
	}
)

func cmdRunsList(c *urfave.Context) error {
	app := getConfig(c)
	runs, err := runlog.List(app.DB, c.Int(runLimitFlag.Name))
	if err != nil {
		return err
	}
	return encode(runs)
}

func cmdRunColumns(c *urfave.Context) error {
	app := getConfig(c)
	cols, err := runlog.Columns(app.DB, c.String(runIDFlag.Name))
	if err != nil {
		return err
	}
	return encode(cols)
}

func cmdConfig(c *urfave.Context) error {
	return encode(getConfig(c).Cfg)
}
