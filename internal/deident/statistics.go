package deident

import (
	"fmt"
	"time"
)

// RemapEntry records one UID substitution for the audit trail.
type RemapEntry struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// FileStatistics summarizes the processing of one file. The processor
// creates it, fills it, and hands it to the aggregator; it is never
// mutated after that.
type FileStatistics struct {
	Path               string                `json:"path"`
	Success            bool                  `json:"success"`
	TagsModified       int                   `json:"tags_modified"`
	TagsRemoved        int                   `json:"tags_removed"`
	PrivateTagsRemoved int                   `json:"private_tags_removed"`
	UIDsRemapped       int                   `json:"uids_remapped"`
	Remaps             map[string]RemapEntry `json:"remaps,omitempty"`
	FieldErrors        []string              `json:"field_errors,omitempty"`
	Error              string                `json:"error,omitempty"`
	Duration           time.Duration         `json:"duration_ns"`
}

// BatchStatistics aggregates per-file results for a whole run. A single
// aggregator goroutine folds completed FileStatistics values into it, one
// mutation per finished file, so no partial merge is ever visible.
type BatchStatistics struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Elapsed   time.Duration `json:"elapsed_ns"`

	FilesProcessed int `json:"files_processed"`
	FilesSucceeded int `json:"files_succeeded"`
	FilesFailed    int `json:"files_failed"`
	FilesSkipped   int `json:"files_skipped"`

	TotalTagsModified       int `json:"total_tags_modified"`
	TotalTagsRemoved        int `json:"total_tags_removed"`
	TotalPrivateTagsRemoved int `json:"total_private_tags_removed"`
	TotalUIDsRemapped       int `json:"total_uids_remapped"`

	Errors []string `json:"errors,omitempty"`
}

// NewBatchStatistics starts the clock for a run.
func NewBatchStatistics() *BatchStatistics {
	return &BatchStatistics{StartTime: time.Now()}
}

// addFile folds one completed file result into the aggregate.
func (b *BatchStatistics) addFile(fs *FileStatistics) {
	b.FilesProcessed++
	if fs.Success {
		b.FilesSucceeded++
		b.TotalTagsModified += fs.TagsModified
		b.TotalTagsRemoved += fs.TagsRemoved
		b.TotalPrivateTagsRemoved += fs.PrivateTagsRemoved
		b.TotalUIDsRemapped += fs.UIDsRemapped
	} else {
		b.FilesFailed++
		b.Errors = append(b.Errors, fmt.Sprintf("%s: %s", fs.Path, fs.Error))
	}
}

// Finalize stamps the end of the run. Call only after all workers drained.
func (b *BatchStatistics) Finalize() {
	b.EndTime = time.Now()
	b.Elapsed = b.EndTime.Sub(b.StartTime)
}
