// loanlens: loan contract analysis
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/loanlens/api"
	"github.com/seenimoa/loanlens/internal/amortization"
	"github.com/seenimoa/loanlens/internal/analysis"
	"github.com/seenimoa/loanlens/internal/config"
	"github.com/seenimoa/loanlens/internal/extract"
	"github.com/seenimoa/loanlens/internal/finance"
	"github.com/seenimoa/loanlens/internal/logger"
	"github.com/seenimoa/loanlens/internal/parser"
	"github.com/seenimoa/loanlens/internal/refdata"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Shared state, built once per invocation in PersistentPreRunE.
var (
	cfg      *config.Config
	log      *zap.Logger
	tables   *refdata.Tables
	analyzer *analysis.Analyzer
)

func main() {
	// A missing .env file is fine; variables may come from the environment.
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "loanlens",
	Short: "loanlens: loan contract extraction and financial analysis",
	Long: `loanlens reads the text of a commercial loan contract, extracts its
economic terms (principal, rate, term, fees, guarantees, covenants) and
computes the amortization schedule, effective annual rate, total cost,
NPV, IRR, market position, rate sensitivity and prepayment impact.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log, err = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		tables, err = refdata.Load(cfg.Engine, log)
		if err != nil {
			return fmt.Errorf("failed to load reference data: %w", err)
		}

		engine := amortization.New(log)
		calc := finance.New(engine, tables.Market, log)
		analyzer = analysis.New(parser.New(extract.NewRegistry(), log), calc, analysis.Options{
			DefaultCurrency: cfg.Engine.DefaultCurrency,
			CacheTTL:        cfg.Analysis.CacheDuration(),
			Concurrency:     cfg.Analysis.Workers(),
		}, log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/loanlens.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(sensitivityCmd)
	rootCmd.AddCommand(prepayCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(refdataCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("loanlens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		addr := cfg.API.Addr()
		fmt.Printf("🌐 Starting loanlens API server on %s\n", addr)

		srv := api.NewServer(cfg, analyzer, tables, log, version)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Refdata Command ---

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Show the loaded market-rate bands and risk weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, tables)
		}
		return renderRefData(os.Stdout, tables)
	},
}

func init() {
	refdataCmd.Flags().Bool("json", false, "print JSON instead of a table")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  loanlens: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):    %s\n", time.Now().UTC().Format(time.RFC3339))
		fmt.Println()

		fmt.Println("  Configuration:")
		start := cfg.Engine.StartDate
		if start == "" {
			start = "today"
		}
		fmt.Printf("    Schedule start:   %s\n", start)
		fmt.Printf("    Default currency: %s\n", cfg.Engine.DefaultCurrency)
		fmt.Printf("    Cache TTL:        %s\n", cfg.Analysis.CacheDuration())
		fmt.Printf("    Concurrency:      %d\n", cfg.Analysis.Workers())
		fmt.Printf("    API Server:       %s\n", cfg.API.Addr())
		fmt.Printf("    Logging:          %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Println()

		fmt.Println("  Reference data:")
		for _, f := range config.CheckReferenceFiles(cfg) {
			status := "✅ built-in defaults"
			switch {
			case f.Source != config.SourceBuiltin && f.Exists:
				status = fmt.Sprintf("✅ %s (%s)", f.Path, f.Source)
			case f.Source != config.SourceBuiltin:
				status = fmt.Sprintf("❌ %s not found (%s)", f.Path, f.Source)
			}
			fmt.Printf("    %-22s %s\n", f.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
