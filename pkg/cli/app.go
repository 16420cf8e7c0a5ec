package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/logging"
	"github.com/loanprep/loanprep/pkg/runlog"
)

const (
	dirMode      = 0700
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	profileFlag = &urfave.StringFlag{
		Name:  "profile",
		Usage: "Pipeline profile [baseline, extended]",
		Value: config.ProfileBaseline,
	}

	configFileFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: "Path to a yaml config file (overrides the profile defaults)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite run-log database file",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(false)

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Cfg    *config.Config
	DBPath string
	Debug  bool
	DB     *sql.DB
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 "loanprep",
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for loan default dataset preparation and prediction export",
		Flags: []urfave.Flag{
			debugFlag,
			profileFlag,
			configFileFlag,
			dbFilePathFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			runCmd,
			runsCmd,
			configCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				initLogging(true)
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}

			dbPath := c.String(dbFilePathFlag.Name)
			if dbPath == "" {
				dbPath = path.Join(getHomeDir(), runlog.DataFileName)
			}

			if err := runlog.Init(dbPath); err != nil {
				return fmt.Errorf("initializing run log: %w", err)
			}
			db, err := runlog.Open(dbPath)
			if err != nil {
				return fmt.Errorf("opening run log: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Cfg:    cfg,
				DBPath: dbPath,
				Debug:  c.Bool(debugFlag.Name),
				DB:     db,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

func resolveConfig(c *urfave.Context) (*config.Config, error) {
	if p := c.String(configFileFlag.Name); p != "" {
		return config.Read(p)
	}
	return config.ForProfile(c.String(profileFlag.Name))
}

func initLogging(debug bool) {
	logging.SetDefault(debug)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetOutput(os.Stderr)
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}

	dirPath := filepath.Join(home, ".loanprep")
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			slog.Debug("error creating dir", "path", dirPath, "error", err)
			return home
		}
	}
	return dirPath
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
