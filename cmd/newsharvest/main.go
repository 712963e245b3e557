package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/newsharvest/internal/config"
	"github.com/amosWeiskopf/newsharvest/internal/database"
	"github.com/amosWeiskopf/newsharvest/internal/logger"
	"github.com/amosWeiskopf/newsharvest/pkg/crawler"
	"github.com/amosWeiskopf/newsharvest/pkg/fetcher"
	"github.com/amosWeiskopf/newsharvest/pkg/report"
	"github.com/amosWeiskopf/newsharvest/pkg/sites"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "newsharvest",
	Short: "NewsHarvest - incremental Estonian news article harvester",
	Long: `NewsHarvest walks the numeric article id space of Estonian news
sites, fetches candidate pages in throttled batches, extracts structured
article fields, and stores them in PostgreSQL with duplicate-safe upserts.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [SOURCE]",
	Short: "Harvest articles from a configured source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		startID, _ := cmd.Flags().GetInt64("start")
		reverse, _ := cmd.Flags().GetBool("reverse")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		maxFailures, _ := cmd.Flags().GetInt("max-failures")
		format, _ := cmd.Flags().GetString("output")
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if batchSize > 0 {
			cfg.Crawler.BatchSize = batchSize
		}
		if maxFailures > 0 {
			cfg.Crawler.MaxFailures = maxFailures
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		log, err := logger.New(cfg.Logging)
		if err != nil {
			return err
		}
		defer log.Sync()

		site, err := sites.Lookup(slug)
		if err != nil {
			return err
		}

		db, err := database.NewPostgresConnection(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctrl := crawler.New(
			site,
			database.NewArticleRepository(db),
			fetcher.New(fetcher.Config{
				Workers:        cfg.Crawler.Workers,
				Retries:        cfg.Crawler.Retries,
				Timeout:        cfg.Crawler.Timeout,
				RequestsPerSec: cfg.Crawler.RequestsPerSec,
			}, log),
			crawler.Config{
				BatchSize:     cfg.Crawler.BatchSize,
				MaxFailures:   cfg.Crawler.MaxFailures,
				MinBatchDelay: cfg.Crawler.MinBatchDelay,
				MaxBatchDelay: cfg.Crawler.MaxBatchDelay,
			},
			log,
		)

		summary, err := ctrl.Run(ctx, crawler.Options{StartID: startID, Reverse: reverse})
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}

		rendered, err := report.Render(summary, format)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, slug := range sites.Slugs() {
			site, err := sites.Lookup(slug)
			if err != nil {
				return err
			}
			src := site.Source()
			fmt.Printf("%-12s %s (%s)\n", src.Slug, src.Name, src.BaseDomain)
		}
		return nil
	},
}

func init() {
	// Crawl command flags
	crawlCmd.Flags().Int64("start", 0, "Starting article id (default: resume after max stored id)")
	crawlCmd.Flags().Bool("reverse", false, "Walk the id space downward")
	crawlCmd.Flags().Int("batch-size", 0, "Identifiers per batch (overrides config)")
	crawlCmd.Flags().Int("max-failures", 0, "Consecutive-failure ceiling (overrides config)")
	crawlCmd.Flags().String("output", "text", "Summary format (text, json)")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(sourcesCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
