package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/loanlens/internal/analysis"
	"github.com/seenimoa/loanlens/internal/export"
	"github.com/seenimoa/loanlens/internal/report"
	"github.com/seenimoa/loanlens/internal/textsource"
)

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Extract terms and compute financial metrics for one or more contracts",
	Long: `Analyze reads each contract file (text, markdown or HTML), extracts its terms
and prints the financial summary. Files are processed concurrently; a file
that cannot be read is reported without stopping the others.`,
	Example: `  loanlens analyze contract.txt
  loanlens analyze --json --start 2025-01-01 a.txt b.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := startFlag(cmd)
		if err != nil {
			return err
		}

		reports, err := analyzer.AnalyzeFiles(cmd.Context(), args, start)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if err := printJSON(os.Stdout, reports); err != nil {
				return err
			}
		} else {
			for i, fr := range reports {
				if i > 0 {
					fmt.Println()
				}
				renderFileReport(os.Stdout, fr)
			}
		}

		if failed := countFailed(reports); failed > 0 {
			return fmt.Errorf("%d of %d contracts could not be analyzed", failed, len(reports))
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print JSON reports")
	analyzeCmd.Flags().String("start", "", "schedule start date YYYY-MM-DD (default: config or today)")
}

// --- Schedule Command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule [file]",
	Short: "Print or export the amortization schedule of a contract",
	Example: `  loanlens schedule contract.txt
  loanlens schedule contract.txt --xlsx schedule.xlsx
  cat contract.txt | loanlens schedule -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := startFlag(cmd)
		if err != nil {
			return err
		}
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		rep, err := analyzer.Analyze(cmd.Context(), text, start)
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
			if err := export.SaveSchedule(path, rep.Contract, rep.Result); err != nil {
				return fmt.Errorf("export schedule: %w", err)
			}
			fmt.Printf("📄 Wrote %d periods to %s\n", len(rep.Result.Schedule), path)
			return nil
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, rep.Result.Schedule)
		}
		renderSchedule(os.Stdout, rep.Contract.Currency, rep.Result.Schedule)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("xlsx", "", "write the schedule to an XLSX workbook at this path")
	scheduleCmd.Flags().Bool("json", false, "print the schedule as JSON")
	scheduleCmd.Flags().String("start", "", "schedule start date YYYY-MM-DD (default: config or today)")
}

// --- Sensitivity Command ---

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity [file]",
	Short: "Show the interest cost of a variable-rate contract under rate shifts",
	Example: `  loanlens sensitivity contract.txt
  loanlens sensitivity contract.txt --shift -0.5 --shift 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := startFlag(cmd)
		if err != nil {
			return err
		}
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		shifts, _ := cmd.Flags().GetFloat64Slice("shift")
		contract, sens, err := analyzer.Sensitivity(text, start, shifts...)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, sens)
		}
		renderSensitivity(os.Stdout, contract, sens)
		return nil
	},
}

func init() {
	sensitivityCmd.Flags().Float64Slice("shift", nil, "rate shift in percentage points (repeatable, default -1,-0.5,0,0.5,1,2)")
	sensitivityCmd.Flags().Bool("json", false, "print JSON")
	sensitivityCmd.Flags().String("start", "", "schedule start date YYYY-MM-DD (default: config or today)")
}

// --- Prepay Command ---

var prepayCmd = &cobra.Command{
	Use:   "prepay [file]",
	Short: "Estimate the impact of a partial prepayment",
	Example: `  loanlens prepay contract.txt --period 6 --amount 10000`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := startFlag(cmd)
		if err != nil {
			return err
		}
		period, _ := cmd.Flags().GetInt("period")
		amount, _ := cmd.Flags().GetFloat64("amount")

		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		contract, res, err := analyzer.Prepay(text, start, period, amount)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, res)
		}
		renderPrepayment(os.Stdout, contract.Currency, res)
		return nil
	},
}

func init() {
	prepayCmd.Flags().Int("period", 0, "period after which the prepayment is made")
	prepayCmd.Flags().Float64("amount", 0, "prepayment amount")
	prepayCmd.Flags().Bool("json", false, "print JSON")
	prepayCmd.Flags().String("start", "", "schedule start date YYYY-MM-DD (default: config or today)")
	_ = prepayCmd.MarkFlagRequired("period")
	_ = prepayCmd.MarkFlagRequired("amount")
}

// --- Helpers ---

// startFlag resolves --start, falling back to the configured start date.
func startFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("start")
	if raw == "" {
		return cfg.Engine.Start()
	}
	start, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start %q, expected YYYY-MM-DD", raw)
	}
	return start, nil
}

// readInput loads contract text from a file, or from stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		return textsource.Read(os.Stdin, textsource.FormatText)
	}
	return textsource.ReadFile(path)
}

func countFailed(reports []analysis.FileReport) int {
	n := 0
	for _, fr := range reports {
		if fr.Error != "" {
			n++
		}
	}
	return n
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Render an HTML or text analysis report for a contract",
	Example: `  loanlens report contract.txt -o report.html
  loanlens report contract.txt --format text --section cost --section market`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := startFlag(cmd)
		if err != nil {
			return err
		}
		formatName, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		rep, err := analyzer.AnalyzeFile(cmd.Context(), args[0], start)
		if err != nil {
			return err
		}

		rcfg := report.DefaultConfig()
		if sections, _ := cmd.Flags().GetStringSlice("section"); len(sections) > 0 {
			rcfg.Sections = make([]report.Section, len(sections))
			for i, s := range sections {
				rcfg.Sections[i] = report.Section(s)
			}
		}
		rcfg.Title, _ = cmd.Flags().GetString("title")

		out, err := report.Generate(rep, format, rcfg)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			fmt.Print(out)
			return nil
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("📄 Report written to %s\n", path)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("format", "html", "output format: html or text")
	reportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	reportCmd.Flags().StringSlice("section", nil, "sections to include (terms, cost, market, schedule, sensitivity, warnings)")
	reportCmd.Flags().String("title", "", "custom report title")
	reportCmd.Flags().String("start", "", "schedule start date YYYY-MM-DD (default: config or today)")
}
