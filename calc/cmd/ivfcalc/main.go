// Command ivfcalc estimates IVF live-birth chances from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ivfcalc:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "ivfcalc",
		Usage: "IVF success-rate estimator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "formulas",
				Sources: cli.EnvVars("IVFODDS_FORMULAS"),
				Usage:   "coefficient table CSV (default: built-in table)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output to stderr",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			estimateCommand(),
			bmiCommand(),
			formulasCommand(),
		},
	}
}
