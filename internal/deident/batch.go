package deident

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"dicom-deidentifier/internal/dates"
	dcm "dicom-deidentifier/internal/dicom"
	"dicom-deidentifier/internal/identity"
	"dicom-deidentifier/internal/preset"
	"dicom-deidentifier/internal/progress"
)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 4

// Engine runs a preset over every DICOM file under a directory. The only
// state shared across workers is the UID mapper (internally synchronized)
// and the statistics accumulator, which a single aggregator goroutine owns.
type Engine struct {
	Preset  *preset.CompiledPreset
	Mapper  *identity.UIDMapper
	Shifter *dates.Shifter

	// Workers bounds parallelism. 1 means fully sequential.
	Workers int
	Preview bool

	// Tracker, when set, makes the run resumable: files it already marked
	// successful are skipped. ErrLog receives per-file failures.
	Tracker *progress.Tracker
	ErrLog  *progress.ErrorLogger

	// Progress is invoked after each file finishes, in completion order.
	// Invocations are serialized by the aggregator.
	Progress func(done, total int)

	Log *zap.Logger
}

// Run discovers all files under inputDir, then processes them with the
// bounded worker pool. Discovery completes before processing starts so the
// total is known up front. A single file's failure never aborts the batch;
// cancellation stops workers between files, never mid-write.
func (e *Engine) Run(ctx context.Context, inputDir, outputDir string) (*BatchStatistics, error) {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	batch := NewBatchStatistics()

	files, err := dcm.Find(inputDir, true)
	if err != nil {
		return nil, fmt.Errorf("could not discover DICOM files: %w", err)
	}

	if e.Tracker != nil {
		pending := files[:0]
		for _, f := range files {
			if e.Tracker.IsProcessed(f) {
				batch.FilesSkipped++
				continue
			}
			pending = append(pending, f)
		}
		files = pending
	}

	total := len(files)
	log.Info("batch discovery complete",
		zap.Int("files", total),
		zap.Int("skipped", batch.FilesSkipped),
		zap.String("input", inputDir),
	)

	if total == 0 {
		batch.Finalize()
		return batch, nil
	}

	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	proc := NewProcessor(e.Preset, e.Mapper, e.Shifter, e.Preview, log)

	jobs := make(chan string)
	results := make(chan *FileStatistics)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				rel, err := filepath.Rel(inputDir, path)
				if err != nil {
					rel = filepath.Base(path)
				}
				results <- proc.ProcessFile(path, filepath.Join(outputDir, rel))
			}
		}()
	}

	// Feeder: stops handing out work on cancellation; in-flight files
	// still finish so their output is never half-written.
	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single aggregator: one fold per completed file, progress callbacks
	// inherently serialized.
	done := 0
	for fs := range results {
		done++
		batch.addFile(fs)

		if e.Tracker != nil {
			if fs.Success {
				e.Tracker.MarkSuccess(fs.Path, filepath.Join(outputDir, filepath.Base(fs.Path)))
			} else {
				e.Tracker.MarkError(fs.Path, fs.Error)
			}
		}
		if e.ErrLog != nil && !fs.Success {
			e.ErrLog.Log(fs.Path, fs.Error)
		}

		if e.Progress != nil {
			e.Progress(done, total)
		}
	}

	batch.Finalize()
	log.Info("batch complete",
		zap.Int("processed", batch.FilesProcessed),
		zap.Int("succeeded", batch.FilesSucceeded),
		zap.Int("failed", batch.FilesFailed),
		zap.Duration("elapsed", batch.Elapsed),
	)
	return batch, nil
}
