package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessprobe-go/internal/cli/output"
	"github.com/yndnr/sessprobe-go/internal/infra/buildinfo"
)

// VersionCommand returns the build-information command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version and build information",
		Action: func(c *cli.Context) error {
			if output.Format(c.String("output")) == output.FormatJSON {
				return formatterFor(c).Format(os.Stdout, buildinfo.Get())
			}
			fmt.Fprintln(os.Stdout, buildinfo.String())
			return nil
		},
	}
}
