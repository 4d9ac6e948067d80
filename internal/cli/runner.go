package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"dicom-deidentifier/internal/config"
	"dicom-deidentifier/internal/dates"
	"dicom-deidentifier/internal/deident"
	"dicom-deidentifier/internal/identity"
	"dicom-deidentifier/internal/preset"
	"dicom-deidentifier/internal/progress"
	"dicom-deidentifier/internal/report"
)

// anchorBase is the target date anchored shifting maps the anchor onto.
var anchorBase = time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC)

// Options holds CLI configuration options
type Options struct {
	InputDir    string
	OutputDir   string
	Preset      string
	Salt        string
	Anchor      string // YYYYMMDD
	Workers     int
	DryRun      bool
	Resume      bool
	RetryFailed bool
}

// Run executes a de-identification batch from the command line.
func Run(ctx context.Context, opts Options, cfg *config.Config, log *zap.Logger) error {
	if opts.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}

	info, err := os.Stat(opts.InputDir)
	if err != nil {
		return fmt.Errorf("input directory does not exist: %s", opts.InputDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", opts.InputDir)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Clean(opts.InputDir) + "-deidentified"
	}

	presetName := opts.Preset
	if presetName == "" {
		presetName = cfg.Preset
	}
	cp, err := preset.Load(presetName)
	if err != nil {
		return err
	}

	salt := opts.Salt
	if salt == "" {
		salt = cfg.Salt
	}
	saltGenerated := false
	if salt == "" {
		salt = GenerateSalt()
		saltGenerated = true
	}

	var shifter *dates.Shifter
	if opts.Anchor != "" {
		if cp.DateHandling.Method != preset.DateShift {
			return fmt.Errorf("anchor date given but preset %q does not shift dates", cp.Name)
		}
		anchor, err := time.Parse(dates.DateFormat, opts.Anchor)
		if err != nil {
			return fmt.Errorf("invalid anchor date %q (want YYYYMMDD): %w", opts.Anchor, err)
		}
		shifter = dates.NewAnchoredShifter(anchorBase, anchor)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	engine := &deident.Engine{
		Preset:  cp,
		Mapper:  identity.NewUIDMapper(salt),
		Shifter: shifter,
		Workers: workers,
		Preview: opts.DryRun,
		Log:     log,
	}

	if opts.Resume && !opts.DryRun {
		tracker := progress.NewTracker(filepath.Join(opts.OutputDir, ".progress.json"), log)
		if opts.RetryFailed {
			tracker.ClearFailed()
		}
		errLog, err := progress.NewErrorLogger(filepath.Join(opts.OutputDir, "errors.log"))
		if err != nil {
			return fmt.Errorf("could not create error logger: %w", err)
		}
		defer errLog.Close()

		engine.Tracker = tracker
		engine.ErrLog = errLog
	}

	printHeader(opts, cp.Name, salt, saltGenerated, workers)

	pb := newProgressBar(50)
	engine.Progress = func(done, total int) {
		pb.update(done, total)
	}

	if opts.DryRun {
		fmt.Println("\n[DRY RUN MODE] No files will be written")
	}
	fmt.Println()

	stats, err := engine.Run(ctx, opts.InputDir, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	fmt.Println()

	printSummary(stats, opts.OutputDir)

	if cfg.Report.Enabled && !opts.DryRun {
		reportPath := filepath.Join(opts.OutputDir, cfg.Report.Path)
		r := &report.RunReport{
			GeneratedAt: time.Now(),
			Preset:      cp.Name,
			InputDir:    opts.InputDir,
			OutputDir:   opts.OutputDir,
			Preview:     opts.DryRun,
			Statistics:  stats,
			UIDMappings: engine.Mapper.Snapshot(),
		}
		if err := report.WriteJSON(reportPath, r); err != nil {
			log.Warn("could not write run report", zap.Error(err))
		} else {
			fmt.Printf("Report:    %s\n", reportPath)
		}
	}

	return nil
}

// GenerateSalt generates a cryptographically secure 32-character hex salt
func GenerateSalt() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// printHeader prints the CLI header with configuration
func printHeader(opts Options, presetName, salt string, saltGenerated bool, workers int) {
	fmt.Println("DICOM De-identifier")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Input:     %s\n", opts.InputDir)
	fmt.Printf("Output:    %s\n", opts.OutputDir)
	fmt.Printf("Preset:    %s\n", presetName)
	fmt.Printf("Workers:   %d\n", workers)

	if saltGenerated {
		fmt.Printf("Salt:      %s\n", salt)
		fmt.Println()
		fmt.Println("WARNING: Salt was auto-generated!")
		fmt.Println("         SAVE THIS SALT to keep UID remapping consistent")
		fmt.Println("         across separate runs over related studies.")
		fmt.Println("         Re-run with: -salt " + salt)
		fmt.Println()
	} else if len(salt) > 8 {
		fmt.Printf("Salt:      %s... (provided)\n", salt[:8])
	} else {
		fmt.Printf("Salt:      %s (provided)\n", salt)
	}

	var options []string
	if opts.Resume {
		options = append(options, "Resume")
	}
	if opts.RetryFailed {
		options = append(options, "Retry failed")
	}
	if opts.DryRun {
		options = append(options, "Dry run")
	}
	if opts.Anchor != "" {
		options = append(options, "Anchor "+opts.Anchor)
	}
	if len(options) > 0 {
		fmt.Printf("Options:   %s\n", strings.Join(options, ", "))
	}
}

// printSummary prints the processing summary
func printSummary(stats *deident.BatchStatistics, outputDir string) {
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Complete! %d succeeded, %d failed, %d skipped (%.1fs)\n",
		stats.FilesSucceeded, stats.FilesFailed, stats.FilesSkipped,
		stats.Elapsed.Seconds())
	fmt.Printf("Tags:      %d modified, %d removed, %d private removed\n",
		stats.TotalTagsModified, stats.TotalTagsRemoved, stats.TotalPrivateTagsRemoved)
	fmt.Printf("UIDs:      %d remapped\n", stats.TotalUIDsRemapped)
	if len(stats.Errors) > 0 {
		fmt.Printf("Errors:    %d (see report)\n", len(stats.Errors))
	}
	fmt.Printf("Output:    %s\n", outputDir)
}

// progressBar represents a terminal progress bar
type progressBar struct {
	width int
}

// newProgressBar creates a new progress bar with specified width
func newProgressBar(width int) *progressBar {
	return &progressBar{width: width}
}

// update updates the progress bar display
func (pb *progressBar) update(current, total int) {
	if total == 0 {
		return
	}

	percent := float64(current) / float64(total)
	filled := int(percent * float64(pb.width))
	if filled > pb.width {
		filled = pb.width
	}

	bar := strings.Repeat("#", filled) + strings.Repeat("-", pb.width-filled)
	fmt.Printf("\r[%s] %3.0f%%  (%d/%d)", bar, percent*100, current, total)
}
