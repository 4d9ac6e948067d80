package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// FileStatus is the recorded outcome for one file.
type FileStatus string

const (
	StatusSuccess FileStatus = "success"
	StatusError   FileStatus = "error"
)

// FileEntry is one tracked file.
type FileEntry struct {
	Status      FileStatus `json:"status"`
	Fingerprint string     `json:"fingerprint"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
	Timestamp   string     `json:"timestamp"`
}

// trackerData is the JSON structure for persistence.
type trackerData struct {
	Files   map[string]*FileEntry `json:"files"`
	Updated string                `json:"updated"`
	Summary struct {
		Success int `json:"success"`
		Error   int `json:"error"`
		Total   int `json:"total"`
	} `json:"summary"`
}

// Tracker records per-file outcomes so an interrupted de-identification
// run can resume without redoing finished files. A file counts as done
// only while its fingerprint still matches.
type Tracker struct {
	mu           sync.Mutex
	progressFile string
	processed    map[string]*FileEntry
	log          *zap.Logger
}

// NewTracker creates a tracker, loading prior state from progressFile if
// it exists.
func NewTracker(progressFile string, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		progressFile: progressFile,
		processed:    make(map[string]*FileEntry),
		log:          log,
	}

	if progressFile != "" {
		t.load()
	}
	return t
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.progressFile)
	if err != nil {
		return // no prior state, start fresh
	}

	var td trackerData
	if err := json.Unmarshal(data, &td); err != nil {
		t.log.Warn("could not load progress file", zap.String("path", t.progressFile), zap.Error(err))
		return
	}

	t.processed = td.Files
	if t.processed == nil {
		t.processed = make(map[string]*FileEntry)
	}

	t.log.Info("loaded progress",
		zap.Int("success", t.countStatus(StatusSuccess)),
		zap.Int("error", t.countStatus(StatusError)),
	)
}

func (t *Tracker) save() {
	if t.progressFile == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(t.progressFile), 0755); err != nil {
		t.log.Warn("could not create progress directory", zap.Error(err))
		return
	}

	td := trackerData{
		Files:   t.processed,
		Updated: time.Now().Format(time.RFC3339),
	}
	td.Summary.Success = t.countStatus(StatusSuccess)
	td.Summary.Error = t.countStatus(StatusError)
	td.Summary.Total = len(t.processed)

	data, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		t.log.Warn("could not marshal progress data", zap.Error(err))
		return
	}

	if err := os.WriteFile(t.progressFile, data, 0644); err != nil {
		t.log.Warn("could not save progress", zap.Error(err))
	}
}

func (t *Tracker) countStatus(status FileStatus) int {
	count := 0
	for _, entry := range t.processed {
		if entry.Status == status {
			count++
		}
	}
	return count
}

// fingerprint hashes file size and mtime; content changes invalidate the
// tracked entry without reading the whole file.
func fingerprint(filePath string) string {
	info, err := os.Stat(filePath)
	if err != nil {
		return ""
	}
	input := fmt.Sprintf("%d_%d", info.Size(), info.ModTime().Unix())
	return strconv.FormatUint(xxh3.HashString(input), 16)
}

// IsProcessed reports whether a file was already successfully processed
// and is unchanged since.
func (t *Tracker) IsProcessed(filePath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.processed[filePath]
	if !ok || entry.Status != StatusSuccess {
		return false
	}
	return entry.Fingerprint == fingerprint(filePath)
}

// MarkSuccess records a successfully processed file.
func (t *Tracker) MarkSuccess(filePath, outputPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed[filePath] = &FileEntry{
		Status:      StatusSuccess,
		Fingerprint: fingerprint(filePath),
		Output:      outputPath,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	t.save()
}

// MarkError records a failed file.
func (t *Tracker) MarkError(filePath, errorMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed[filePath] = &FileEntry{
		Status:      StatusError,
		Fingerprint: fingerprint(filePath),
		Error:       errorMsg,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	t.save()
}

// ClearFailed drops all failed entries so a retry picks them up again.
func (t *Tracker) ClearFailed() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for key, entry := range t.processed {
		if entry.Status == StatusError {
			delete(t.processed, key)
			count++
		}
	}

	if count > 0 {
		t.save()
	}
	return count
}

// Counts returns the success and error totals.
func (t *Tracker) Counts() (success, errors int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countStatus(StatusSuccess), t.countStatus(StatusError)
}
