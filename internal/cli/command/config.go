package command

import (
	"github.com/urfave/cli/v2"

	"github.com/twelveoclock/fastutil-concurrent/internal/cli/output"
	"github.com/twelveoclock/fastutil-concurrent/internal/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the effective configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the merged configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Load and verify the configuration",
				Action: configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	e, err := setup(c, nil)
	if err != nil {
		return err
	}
	cfg := config.Sanitize(e.cfg)
	if e.format == output.FormatTable {
		// Nested sections do not fit a table.
		return output.Print(e.out, output.FormatYAML, cfg)
	}
	return e.print(cfg)
}

func configValidate(c *cli.Context) error {
	e, err := setup(c, nil)
	if err != nil {
		return err
	}
	return e.print("configuration is valid")
}
