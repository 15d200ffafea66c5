package command

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/urfave/cli/v2"

	"github.com/twelveoclock/fastutil-concurrent/internal/cli/output"
	"github.com/twelveoclock/fastutil-concurrent/internal/config"
	"github.com/twelveoclock/fastutil-concurrent/internal/infra/buildinfo"
	"github.com/twelveoclock/fastutil-concurrent/internal/infra/confloader"
	"github.com/twelveoclock/fastutil-concurrent/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "fastutil-bench",
		Usage:                "Exercise and benchmark the striped concurrent collections",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			RunCommand(),
			SnapshotCommand(),
			PersistCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"FASTUTIL_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// flagKeys maps flag names to configuration keys.
type flagKeys map[string]string

// collect returns the configuration overrides of the flags set on c.
func (fk flagKeys) collect(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for flag, key := range fk {
		if !c.IsSet(flag) {
			continue
		}
		out[key] = c.Value(flag)
	}
	return out
}

var globalKeys = flagKeys{
	"log-level":  "log.level",
	"log-format": "log.format",
}

// env is the state shared by every command action.
type env struct {
	cfg    *config.Config
	loader *confloader.Loader
	log    *slog.Logger
	out    io.Writer
	format output.Format
	wide   bool
}

// setup loads the configuration with the global flags and the command flags
// named in keys applied on top, and builds the logger.
func setup(c *cli.Context, keys flagKeys) (*env, error) {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}

	overrides := globalKeys.collect(c)
	maps.Copy(overrides, keys.collect(c))

	cfg, l, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return nil, err
	}

	cfg.Log.Output = c.App.ErrWriter
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	log.Debug("configuration loaded", "config", config.Sanitize(cfg))

	return &env{
		cfg:    cfg,
		loader: l,
		log:    log,
		out:    c.App.Writer,
		format: format,
		wide:   c.Bool("wide"),
	}, nil
}

// print writes data in the selected output format.
func (e *env) print(data any) error {
	return output.NewFormatter(e.format, e.wide).Format(e.out, data)
}
