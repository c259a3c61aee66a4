package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aus-address-cleaner/internal/cleaner"
	"github.com/aus-address-cleaner/internal/config"
	"github.com/aus-address-cleaner/internal/debug"
	"github.com/aus-address-cleaner/internal/gnaf"
	"github.com/aus-address-cleaner/internal/parse"
	"github.com/aus-address-cleaner/internal/predict"
	"github.com/aus-address-cleaner/internal/score"
	"github.com/aus-address-cleaner/internal/web"
)

const version = "1.0.0"

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:     "addrclean",
		Short:   "Australian Address Cleaning System",
		Long:    `Cleans and normalizes Australian postal addresses: component parsing, confidence scoring, optional G-NAF verification and trained component prediction`,
		Version: version,
	}

	rootCmd.AddCommand(createCleanCmd())
	rootCmd.AddCommand(createParseCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createTrainCmd())
	rootCmd.AddCommand(createPingCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig loads the YAML configuration when a path is given, falling
// back to the built-in defaults, then overlays ADDRCLEAN_* variables.
func loadConfig(path string) *config.Config {
	cfg := config.Default()

	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	return cfg
}

// createCleanCmd creates the clean subcommand
func createCleanCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		configPath string
		schemaName string
		gnafURL    string
		mlModel    string
		noGNAF     bool
		noML       bool
		workers    int
		verbose    bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean a CSV file of Australian addresses",
		Long:  `Read raw addresses from a CSV file, normalize every record, and write the cleaned CSV with confidence scores and inconsistency flags`,
		Run: func(cmd *cobra.Command, args []string) {
			if quiet {
				log.SetOutput(io.Discard)
			}

			cfg := loadConfig(configPath)
			if workers > 0 {
				cfg.Processing.WorkerCount = workers
			}

			log.Printf("Input: %s", inputPath)
			log.Printf("Output: %s", outputPath)
			if schemaName != "" {
				log.Printf("Schema: %s", schemaName)
			}
			if noGNAF {
				log.Println("G-NAF validation: DISABLED")
			} else if gnafURL != "" {
				log.Printf("G-NAF URL: %s", gnafURL)
			}
			if noML {
				log.Println("Prediction model: DISABLED")
			} else if mlModel != "" {
				log.Printf("Prediction model: %s", mlModel)
			}
			if verbose {
				debug.Enable()
				log.Printf("Workers: %d", cfg.Processing.WorkerCount)
				log.Printf("Max batch size: %d", cfg.Processing.MaxBatchSize)
			}

			c := cleaner.New(cfg, cleaner.Options{
				GNAFConnectionURL: gnafURL,
				MLModelPath:       mlModel,
				UseML:             !noML,
				UseGNAF:           !noGNAF,
			})
			defer c.Close()

			start := time.Now()
			results, stats, err := c.CleanCSV(context.Background(), inputPath, outputPath, schemaName)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			if !quiet {
				printCleanSummary(results, stats, outputPath, time.Since(start))
			}
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input CSV file path")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output CSV file path")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file (default: built-in config)")
	cmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Schema name for column mapping (default: detect from header)")
	cmd.Flags().StringVar(&gnafURL, "gnaf-url", "", "G-NAF PostgreSQL connection URL")
	cmd.Flags().StringVar(&mlModel, "ml-model", "", "Path to prediction model file (overrides config)")
	cmd.Flags().BoolVar(&noGNAF, "no-gnaf", false, "Disable G-NAF validation")
	cmd.Flags().BoolVar(&noML, "no-ml", false, "Disable prediction model")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel workers (default: from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

// printCleanSummary prints the run summary with confidence bands.
func printCleanSummary(results []cleaner.Result, stats cleaner.BatchStats, outputPath string, elapsed time.Duration) {
	total := stats.Total
	if total == 0 {
		fmt.Println("No records processed")
		return
	}

	var confidenceSum int
	for _, res := range results {
		confidenceSum += res.ConfidenceLevel
	}
	avgConfidence := float64(confidenceSum) / float64(total)

	pct := func(count int) float64 {
		return float64(count) / float64(total) * 100
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("CLEANING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total records processed: %d\n", total)
	fmt.Printf("Invalid addresses: %d (%.1f%%)\n", stats.Invalid, pct(stats.Invalid))
	fmt.Printf("International addresses: %d (%.1f%%)\n", stats.International, pct(stats.International))
	if stats.Errors > 0 {
		color.New(color.FgRed).Printf("Processing errors: %d (%.1f%%)\n", stats.Errors, pct(stats.Errors))
	}
	fmt.Printf("Average confidence score: %.1f\n", avgConfidence)
	fmt.Printf("Processing time: %s\n", elapsed.Round(time.Millisecond))

	bands := []struct {
		label string
		level string
		color *color.Color
	}{
		{"Excellent (95-100)", score.LevelExcellent, color.New(color.FgGreen)},
		{"Very High (85-94)", score.LevelVeryHigh, color.New(color.FgGreen)},
		{"High (75-84)", score.LevelHigh, color.New(color.FgCyan)},
		{"Moderate (60-74)", score.LevelModerate, color.New(color.FgYellow)},
		{"Low (40-59)", score.LevelLow, color.New(color.FgYellow)},
		{"Very Low (0-39)", score.LevelVeryLow, color.New(color.FgRed)},
	}

	fmt.Println("\nConfidence Distribution:")
	for _, band := range bands {
		count := stats.Levels[band.level]
		band.color.Printf("  %s: %d (%.1f%%)\n", band.label, count, pct(count))
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Results written to: %s\n", outputPath)
}

// createParseCmd creates the parse subcommand
func createParseCmd() *cobra.Command {
	var (
		suburb     string
		state      string
		postcode   string
		configPath string
		breakdown  bool
	)

	cmd := &cobra.Command{
		Use:   "parse [street address]",
		Short: "Parse and score a single address",
		Long:  `Parse one street address into components and print the confidence score without touching G-NAF or the prediction model`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(configPath)
			parser := parse.New(cfg)
			scorer := score.New(cfg)

			parsed := parser.ParseAddress(args[0], suburb, state, postcode)
			in := score.Input{
				Components:         parsed.Components,
				UnparsedComponents: parsed.UnparsedComponents,
				ParsingNotes:       parsed.ParsingNotes,
				InconsistencyFlags: parsed.InconsistencyFlags,
			}
			confidence := scorer.Score(in)
			level := scorer.Classify(confidence)
			valid := scorer.IsValid(parsed.Components, confidence)

			fmt.Printf("\n=== Parse Result ===\n")
			fmt.Printf("Unit Number:   %s\n", parsed.UnitNumber)
			fmt.Printf("Street Number: %s\n", parsed.StreetNumber)
			fmt.Printf("Street Name:   %s\n", parsed.StreetName)
			fmt.Printf("Street Type:   %s\n", parsed.StreetType)
			fmt.Printf("Suburb:        %s\n", parsed.Suburb)
			fmt.Printf("State:         %s\n", parsed.State)
			fmt.Printf("Postcode:      %s\n", parsed.Postcode)

			if len(parsed.ParsingNotes) > 0 {
				fmt.Printf("Notes:         %s\n", strings.Join(parsed.ParsingNotes, ", "))
			}
			if len(parsed.InconsistencyFlags) > 0 {
				fmt.Printf("Flags:         %s\n", strings.Join(parsed.InconsistencyFlags, ", "))
			}
			if parsed.UnparsedComponents != "" {
				fmt.Printf("Unparsed:      %s\n", parsed.UnparsedComponents)
			}

			levelColor := color.New(color.FgRed)
			switch level {
			case score.LevelExcellent, score.LevelVeryHigh:
				levelColor = color.New(color.FgGreen)
			case score.LevelHigh, score.LevelModerate:
				levelColor = color.New(color.FgYellow)
			}
			levelColor.Printf("Confidence:    %d (%s)\n", confidence, level)
			fmt.Printf("Valid:         %t\n", valid)

			if breakdown {
				printBreakdown(scorer.Breakdown(in))
			}
		},
	}

	cmd.Flags().StringVar(&suburb, "suburb", "", "Suburb")
	cmd.Flags().StringVar(&state, "state", "", "State")
	cmd.Flags().StringVar(&postcode, "postcode", "", "Postcode")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "Print the score calculation breakdown")

	return cmd
}

// printBreakdown prints the itemized score calculation.
func printBreakdown(b score.Breakdown) {
	fmt.Printf("\n=== Score Breakdown ===\n")
	fmt.Printf("Base score: %d\n", b.BaseScore)

	if len(b.Penalties) > 0 {
		fmt.Println("Penalties:")
		for _, key := range sortedKeys(b.Penalties) {
			fmt.Printf("  %s: -%d\n", key, b.Penalties[key])
		}
	}
	if len(b.Adjustments) > 0 {
		fmt.Println("Adjustments:")
		for _, key := range sortedKeys(b.Adjustments) {
			fmt.Printf("  %s: %+d\n", key, b.Adjustments[key])
		}
	}

	fmt.Printf("Final score: %d\n", b.FinalScore)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// createServeCmd creates the serve subcommand
func createServeCmd() *cobra.Command {
	var (
		listenAddr string
		configPath string
		apiKey     string
		gnafURL    string
		mlModel    string
		noGNAF     bool
		noML       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cleaning pipeline over HTTP",
		Long:  `Start the JSON API server with batch cleaning, single-address parsing, G-NAF lookup, health, and configuration endpoints`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(configPath)

			c := cleaner.New(cfg, cleaner.Options{
				GNAFConnectionURL: gnafURL,
				MLModelPath:       mlModel,
				UseML:             !noML,
				UseGNAF:           !noGNAF,
			})

			server := web.NewServer(cfg, c, web.Options{
				Addr:    listenAddr,
				APIKey:  apiKey,
				Version: version,
			})

			if err := server.Start(); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default: from config, :8080)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Require this value in the X-API-Key header")
	cmd.Flags().StringVar(&gnafURL, "gnaf-url", "", "G-NAF PostgreSQL connection URL")
	cmd.Flags().StringVar(&mlModel, "ml-model", "", "Path to prediction model file (overrides config)")
	cmd.Flags().BoolVar(&noGNAF, "no-gnaf", false, "Disable G-NAF validation")
	cmd.Flags().BoolVar(&noML, "no-ml", false, "Disable prediction model")

	return cmd
}

// createTrainCmd creates the train subcommand
func createTrainCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the component predictor from labeled examples",
		Long:  `Train the token classifier from a CSV with a raw_street_address column and clean component columns (unit_number, street_number, street_name, street_type, suburb, state, postcode)`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(configPath)

			examples, err := readTrainingCSV(inputPath)
			if err != nil {
				log.Fatalf("Failed to read training data: %v", err)
			}

			model := predict.New(cfg, "")
			if err := model.Train(examples); err != nil {
				log.Fatalf("Training failed: %v", err)
			}
			if err := model.Save(outputPath); err != nil {
				log.Fatalf("Failed to save model: %v", err)
			}

			fmt.Printf("\n=== Training Results ===\n")
			fmt.Printf("Training examples: %d\n", len(examples))
			fmt.Printf("Model written to: %s\n", outputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Labeled training CSV file path")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "model.json", "Output model file path")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.MarkFlagRequired("input")

	return cmd
}

// readTrainingCSV reads labeled training examples. Component columns
// that are missing from the header are treated as empty.
func readTrainingCSV(path string) ([]predict.Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["raw_street_address"]; !ok {
		return nil, fmt.Errorf("training CSV needs a raw_street_address column")
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var examples []predict.Example
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		examples = append(examples, predict.Example{
			RawStreetAddress: field(row, "raw_street_address"),
			UnitNumber:       field(row, "unit_number"),
			StreetNumber:     field(row, "street_number"),
			StreetName:       field(row, "street_name"),
			StreetType:       field(row, "street_type"),
			Suburb:           field(row, "suburb"),
			State:            field(row, "state"),
			Postcode:         field(row, "postcode"),
		})
	}

	return examples, nil
}

// createPingCmd creates a command to test G-NAF database connectivity
func createPingCmd() *cobra.Command {
	var (
		configPath string
		gnafURL    string
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Test G-NAF database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(configPath)
			cfg.GNAF.Enabled = true

			matcher := gnaf.New(cfg, gnafURL)
			defer matcher.Close()

			if !matcher.Enabled() {
				log.Fatal("G-NAF connection failed")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := matcher.Ping(ctx); err != nil {
				log.Fatalf("G-NAF ping failed: %v", err)
			}
			fmt.Println("G-NAF connection successful!")

			count, err := matcher.Count(ctx)
			if err != nil {
				log.Printf("Error counting G-NAF addresses: %v", err)
			} else {
				fmt.Printf("G-NAF addresses loaded: %d\n", count)
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&gnafURL, "gnaf-url", "", "G-NAF PostgreSQL connection URL")

	return cmd
}
