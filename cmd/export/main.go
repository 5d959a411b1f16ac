package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/raaihank/record-sentinel/internal/bootstrap"
	"github.com/raaihank/record-sentinel/internal/config"
	"github.com/raaihank/record-sentinel/internal/export"
	"github.com/raaihank/record-sentinel/internal/logger"
	"github.com/raaihank/record-sentinel/internal/masking"
	"github.com/raaihank/record-sentinel/internal/records"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Import raw records from a CSV, Parquet or JSON file")
		outputFile = flag.String("output", "", "Export a masked snapshot to a CSV, Parquet or JSON file")
		seed       = flag.Bool("seed", false, "Load the sample records into an empty store")
		showStats  = flag.Bool("stats", false, "Show store statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && *outputFile == "" && !*seed && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input students.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --output snapshot.parquet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --seed --output snapshot.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Record-Sentinel export tool",
		zap.String("config", *configPath),
		zap.String("storage_driver", cfg.Storage.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	if err := run(ctx, cfg, log, *inputFile, *outputFile, *seed, *showStats); err != nil {
		log.Error("Export tool failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	log.Info("Export tool completed successfully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, inputFile, outputFile string, seed, showStats bool) error {
	store, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}

	service := records.NewService(store, nil, nil, log)
	defer service.Close()

	if seed {
		added, err := service.Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Sample records added: %d\n", added)
	}

	if inputFile != "" {
		if err := importRecords(ctx, service, inputFile, log); err != nil {
			return err
		}
	}

	if outputFile != "" {
		all, err := service.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}
		n, err := export.NewExporter(log.WithComponent("export").Logger).Export(ctx, all, outputFile)
		if err != nil {
			return err
		}
		fmt.Printf("Masked records exported: %d -> %s\n", n, outputFile)
	}

	if showStats {
		return printStats(ctx, service)
	}
	return nil
}

// importRecords adds every valid row of inputFile to the store
func importRecords(ctx context.Context, service *records.Service, inputFile string, log *logger.Logger) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	imported, result, err := export.NewImporter(log.WithComponent("import").Logger).Import(ctx, inputFile)
	if err != nil {
		return err
	}

	var added, failed int
	for _, record := range imported {
		if _, err := service.Add(ctx, record); err != nil {
			failed++
			log.Warn("Failed to store imported record", zap.Error(err))
			continue
		}
		added++
	}

	fmt.Printf("\n=== Import Results ===\n")
	fmt.Printf("Rows Read:          %d\n", result.TotalRows)
	fmt.Printf("Invalid Rows:       %d\n", result.InvalidRows)
	fmt.Printf("Records Added:      %d\n", added)
	fmt.Printf("Records Failed:     %d\n", failed)
	fmt.Printf("Duration:           %v\n", result.Duration)
	for _, msg := range result.Errors {
		fmt.Printf("  %s\n", msg)
	}
	return nil
}

// printStats prints masked store statistics
func printStats(ctx context.Context, service *records.Service) error {
	all, err := service.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	cities := make(map[string]int)
	withPhone := 0
	for _, record := range all {
		cities[record.City]++
		if record.Phone != "" {
			withPhone++
		}
	}

	fmt.Printf("\n=== Record-Sentinel Store Statistics ===\n")
	fmt.Printf("Total Records:      %d\n", len(all))
	fmt.Printf("With Phone:         %d\n", withPhone)
	fmt.Printf("Distinct Cities:    %d\n", len(cities))
	fmt.Printf("Masking Categories: %d\n", len(masking.Categories()))
	return nil
}
