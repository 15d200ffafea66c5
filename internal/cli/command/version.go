package command

import (
	"github.com/urfave/cli/v2"

	"github.com/twelveoclock/fastutil-concurrent/internal/cli/output"
	"github.com/twelveoclock/fastutil-concurrent/internal/infra/buildinfo"
)

// VersionCommand returns the version command. It does not read the
// configuration, so it works with a broken config file.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			return output.Print(c.App.Writer, format, buildinfo.Get())
		},
	}
}
