package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dicom-deidentifier/internal/cli"
	"dicom-deidentifier/internal/config"
	"dicom-deidentifier/internal/logger"
	"dicom-deidentifier/internal/preset"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		input       = flag.String("input", "", "Input directory containing DICOM files")
		inputShort  = flag.String("i", "", "Input directory (shorthand)")
		output      = flag.String("output", "", "Output directory (default: <input>-deidentified)")
		outputShort = flag.String("o", "", "Output directory (shorthand)")
		presetName  = flag.String("preset", "", "Preset name or YAML file path")
		salt        = flag.String("salt", "", "Salt for deterministic UID remapping")
		anchor      = flag.String("anchor", "", "Anchor date YYYYMMDD for date shifting")
		workers     = flag.Int("workers", 0, "Parallel workers (default from config)")
		dryRun      = flag.Bool("dry-run", false, "Preview only, no files written")
		dryRunShort = flag.Bool("n", false, "Dry run (shorthand)")
		resume      = flag.Bool("resume", false, "Skip files finished by a previous run")
		retry       = flag.Bool("retry", false, "With -resume, retry previously failed files")
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("dicom-deidentifier %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	inputDir := *input
	if inputDir == "" {
		inputDir = *inputShort
	}
	outputDir := *output
	if outputDir == "" {
		outputDir = *outputShort
	}
	if inputDir == "" {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.Options{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Preset:      *presetName,
		Salt:        *salt,
		Anchor:      *anchor,
		Workers:     *workers,
		DryRun:      *dryRun || *dryRunShort,
		Resume:      *resume,
		RetryFailed: *retry,
	}

	if err := cli.Run(ctx, opts, cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`DICOM De-identifier

USAGE:
  deidentify -i <dir> [flags]

FLAGS:
  -i, --input <dir>     Input directory containing DICOM files (required)
  -o, --output <dir>    Output directory (default: <input>-deidentified)
      --preset <name>   Preset name or YAML file (built-in: %s)
      --salt <salt>     Salt for deterministic UID remapping; the same salt
                        reproduces the same replacement UIDs across runs
      --anchor <date>   Anchor date (YYYYMMDD) for date-shifting presets
      --workers <n>     Parallel workers (1 = sequential)
  -n, --dry-run         Preview: full transform and statistics, no output
      --resume          Skip files finished by a previous run
      --retry           With --resume, retry previously failed files
      --config <path>   Configuration file (YAML)
      --version         Show version information

IMPORTANT - SALT:
  UID remapping is deterministic per salt. To keep Study/Series/SOP
  Instance UIDs consistent across separate runs over related studies,
  provide the same salt every time. If none is given, a salt is generated
  and printed; save it.
`, strings.Join(preset.BuiltinNames(), ", "))
}
