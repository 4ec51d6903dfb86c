package captionjob

import (
	"strings"
	"time"

	"captionforge/internal/captions"
)

// Status is a job lifecycle state.
type Status string

const (
	StatusQueued           Status = "queued"
	StatusFingerprinted    Status = "fingerprinted"
	StatusDownloading      Status = "downloading"
	StatusSubtitlePrepared Status = "subtitle_prepared"
	StatusRendering        Status = "rendering"
	StatusUploading        Status = "uploading"
	StatusCached           Status = "cached"
	StatusDone             Status = "done"
	StatusFailed           Status = "failed"
)

// Terminal reports whether no further transitions happen.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Job is one submitted caption request.
type Job struct {
	ID        string            `json:"id" toml:"id"`
	SourceRef string            `json:"source" toml:"source"`
	Subtitles string            `json:"subtitles" toml:"subtitles"`
	Dialect   string            `json:"dialect" toml:"dialect"`
	Options   []captions.Option `json:"options" toml:"options"`
}

// Label returns the job id or a placeholder for logs.
func (j Job) Label() string {
	if id := strings.TrimSpace(j.ID); id != "" {
		return id
	}
	return "(unassigned)"
}

// Result is the outcome of one job.
type Result struct {
	JobID       string        `json:"job_id"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	OutputRef   string        `json:"output_ref,omitempty"`
	CacheHit    bool          `json:"cache_hit"`
	Status      Status        `json:"status"`
	ErrorKind   string        `json:"error_kind,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	Err         error         `json:"-"`
}

// Succeeded reports whether the job produced an output reference.
func (r Result) Succeeded() bool {
	return r.Status == StatusDone && r.Err == nil
}

func (r *Result) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}
