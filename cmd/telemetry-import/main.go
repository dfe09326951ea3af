package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/database"
	"github.com/ykamio/contentops/internal/logger"
	"github.com/ykamio/contentops/internal/telemetry"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Search analytics export file (CSV, Parquet, or JSON)")
		fetchAPI   = flag.Bool("fetch", false, "Fetch rows from the analytics API instead of a file")
		batchSize  = flag.Int("batch-size", 500, "Batch size for database inserts")
		candidates = flag.Bool("candidates", false, "Show rewrite candidates after importing")
	)
	flag.Parse()

	if *inputFile == "" && !*fetchAPI {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input export.csv --batch-size 500\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input export.parquet --candidates\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --fetch\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling import...")
		cancel()
	}()

	db, err := database.Connect(cfg.Database, log.WithComponent("database").Logger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store := telemetry.NewStore(db, log.WithComponent("telemetry").Logger)

	if *fetchAPI {
		if err := fetchFromAPI(ctx, cfg, store, log); err != nil {
			log.Fatal("Analytics fetch failed", zap.Error(err))
		}
	} else {
		importer := telemetry.NewImporter(store, *batchSize, log.WithComponent("telemetry").Logger)
		result, err := importer.ProcessFile(ctx, *inputFile)
		if err != nil {
			log.Fatal("Import failed", zap.Error(err))
		}
		printImportSummary(*inputFile, result)
	}

	if *candidates {
		if err := printCandidates(ctx, cfg, store); err != nil {
			log.Fatal("Failed to list candidates", zap.Error(err))
		}
	}
}

func fetchFromAPI(ctx context.Context, cfg *config.Config, store *telemetry.Store, log *logger.Logger) error {
	client := telemetry.NewClient(cfg.Telemetry, log.WithComponent("telemetry"))

	rows, err := client.Query(ctx)
	if err != nil {
		return err
	}

	inserted, err := store.InsertBatch(ctx, rows)
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %d rows, upserted %d\n", len(rows), inserted)
	return nil
}

func printImportSummary(file string, result *telemetry.ImportResult) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Total", "Imported", "Skipped", "Duration"})
	tw.AppendRow(table.Row{
		file,
		result.TotalRecords,
		result.Imported,
		result.Skipped,
		result.Duration.Round(time.Millisecond),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	fmt.Println(tw.Render())

	if len(result.Errors) > 0 {
		fmt.Printf("%d batch errors; see logs for details\n", len(result.Errors))
	}
}

func printCandidates(ctx context.Context, cfg *config.Config, store *telemetry.Store) error {
	window := time.Duration(cfg.Telemetry.WindowDays) * 24 * time.Hour
	rows, err := store.Recent(ctx, window)
	if err != nil {
		return err
	}

	list := telemetry.FindUnderperforming(rows, cfg.Telemetry)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Page", "Impressions", "Position", "Top Query"})
	for _, c := range list {
		topQuery := ""
		if len(c.Queries) > 0 {
			topQuery = c.Queries[0]
		}
		tw.AppendRow(table.Row{
			c.Page,
			c.Impressions,
			strconv.FormatFloat(c.Position, 'f', 1, 64),
			topQuery,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	fmt.Println(tw.Render())
	fmt.Printf("%d rewrite candidates\n", len(list))
	return nil
}
