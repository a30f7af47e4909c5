package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/ivfodds/ivfodds/data"
	"github.com/ivfodds/ivfodds/pkg/estimate"
	"github.com/ivfodds/ivfodds/pkg/formula"
	"github.com/ivfodds/ivfodds/pkg/score"
)

// Commands are built per app because flags keep parse state.

func bodyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "weight", Usage: "weight in pounds", Required: true},
		&cli.IntFlag{Name: "height-feet", Usage: "height, whole feet", Required: true},
		&cli.IntFlag{Name: "height-inches", Usage: "height, remaining inches"},
	}
}

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Estimate the chance of a live birth",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "age", Usage: "age in years", Required: true},
			&cli.StringFlag{Name: "egg-source", Value: "own_eggs", Usage: "own_eggs | donor_eggs"},
			&cli.IntFlag{Name: "ivf-cycles", Usage: "previous IVF cycles (own eggs only)"},
			&cli.StringSliceFlag{Name: "reason", Usage: "infertility reason, repeatable; no_reason when unknown"},
			&cli.StringFlag{Name: "prior-pregnancies", Value: "0", Usage: "0 | 1 | 2+"},
			&cli.StringFlag{Name: "prior-births", Value: "0", Usage: "0 | 1 | 2+"},
			&cli.BoolFlag{Name: "json", Usage: "print the result as JSON"},
		}, bodyFlags()...),
		Action: runEstimate,
	}
}

func bmiCommand() *cli.Command {
	return &cli.Command{
		Name:   "bmi",
		Usage:  "Compute body-mass index from pounds, feet and inches",
		Flags:  bodyFlags(),
		Action: runBMI,
	}
}

func formulasCommand() *cli.Command {
	return &cli.Command{
		Name:   "formulas",
		Usage:  "Print the loaded coefficient table as CSV",
		Action: runFormulas,
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return ctx, nil
}

// loadTable reads the table named by --formulas, or the embedded one.
func loadTable(cmd *cli.Command) (*formula.Table, error) {
	path := cmd.String("formulas")
	var (
		tbl *formula.Table
		err error
	)
	if path == "" {
		tbl, err = formula.LoadFS(data.FS, data.FormulasFile)
	} else {
		tbl, err = formula.Load(path)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("formula table loaded", "path", path, "rows", tbl.Len())
	return tbl, nil
}

// estimateOutput is the --json shape; decimals are strings.
type estimateOutput struct {
	SuccessRate string            `json:"success_rate"`
	BMI         string            `json:"bmi"`
	BMICategory string            `json:"bmi_category"`
	Score       string            `json:"score"`
	Formula     int               `json:"formula"`
	Label       string            `json:"label,omitempty"`
	Breakdown   map[string]string `json:"breakdown"`
}

func runEstimate(ctx context.Context, cmd *cli.Command) error {
	tbl, err := loadTable(cmd)
	if err != nil {
		return err
	}
	res, err := estimate.New(tbl).Estimate(estimate.Request{
		Age:              int(cmd.Int("age")),
		Weight:           int(cmd.Int("weight")),
		HeightFeet:       int(cmd.Int("height-feet")),
		HeightInches:     int(cmd.Int("height-inches")),
		EggSource:        cmd.String("egg-source"),
		IVFCycles:        int(cmd.Int("ivf-cycles")),
		Reasons:          cmd.StringSlice("reason"),
		PriorPregnancies: cmd.String("prior-pregnancies"),
		PriorBirths:      cmd.String("prior-births"),
	})
	if err != nil {
		return err
	}

	c := res.Components
	out := cmd.Root().Writer
	if cmd.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(estimateOutput{
			SuccessRate: res.SuccessRate.StringFixed(score.RatePlaces),
			BMI:         res.BMI.StringFixed(2),
			BMICategory: score.BMICategory(res.BMI),
			Score:       c.Score.StringFixed(6),
			Formula:     res.Formula.Index,
			Label:       res.Formula.Label,
			Breakdown: map[string]string{
				"intercept":         c.Intercept.StringFixed(6),
				"age":               c.Age.StringFixed(6),
				"bmi":               c.BMI.StringFixed(6),
				"infertility":       c.Infertility.StringFixed(6),
				"prior_pregnancies": c.Pregnancies.StringFixed(6),
				"prior_live_births": c.LiveBirths.StringFixed(6),
			},
		})
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "success rate:\t%s%%\n", res.SuccessRate.StringFixed(score.RatePlaces))
	fmt.Fprintf(tw, "bmi:\t%s (%s)\n", res.BMI.StringFixed(2), score.BMICategory(res.BMI))
	fmt.Fprintf(tw, "formula:\t#%d %s [own=%s ivf=%s known=%s]\n", res.Formula.Index, res.Formula.Label,
		res.Formula.UsingOwnEggs, res.Formula.AttemptedIVF, res.Formula.ReasonKnown)
	fmt.Fprintf(tw, "score:\t%s\n", c.Score.StringFixed(6))
	fmt.Fprintf(tw, "  intercept\t%s\n", c.Intercept.StringFixed(6))
	fmt.Fprintf(tw, "  age\t%s\n", c.Age.StringFixed(6))
	fmt.Fprintf(tw, "  bmi\t%s\n", c.BMI.StringFixed(6))
	fmt.Fprintf(tw, "  infertility\t%s\n", c.Infertility.StringFixed(6))
	fmt.Fprintf(tw, "  prior pregnancies\t%s\n", c.Pregnancies.StringFixed(6))
	fmt.Fprintf(tw, "  prior live births\t%s\n", c.LiveBirths.StringFixed(6))
	return tw.Flush()
}

func runBMI(ctx context.Context, cmd *cli.Command) error {
	bmi, err := score.BMI(int(cmd.Int("weight")), int(cmd.Int("height-feet")), int(cmd.Int("height-inches")))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "%s (%s)\n", bmi.StringFixed(2), score.BMICategory(bmi))
	return err
}

func runFormulas(ctx context.Context, cmd *cli.Command) error {
	tbl, err := loadTable(cmd)
	if err != nil {
		return err
	}
	return tbl.WriteCSV(cmd.Root().Writer)
}
