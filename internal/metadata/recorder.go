package metadata

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth
- Index/query timings

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (page ID, crawl ID)
*/

// Recorder is the zerolog-backed MetadataSink. It writes newline-delimited
// JSON to a rotated log file (via lumberjack) and, when Console is set or
// no LogPath is given, to stderr. Every event goes to every writer; there
// is no per-writer level filter.
type Recorder struct {
	log zerolog.Logger
}

var _ MetadataSink = (*Recorder)(nil)

// RecorderOptions configures where and how the Recorder writes.
type RecorderOptions struct {
	// LogPath is the rotated log file path. Empty disables file output.
	LogPath string
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int
	// Console, when true, additionally writes to stderr.
	Console bool
}

// NewRecorder builds a Recorder writing structured JSON lines to opts.LogPath
// (rotated via lumberjack) and, optionally, to stderr.
func NewRecorder(opts RecorderOptions) *Recorder {
	var writers []io.Writer

	if opts.LogPath != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 50
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.LogPath,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		})
	}
	if opts.Console || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	multi := zerolog.MultiLevelWriter(writers...)
	logger := zerolog.New(multi).With().Timestamp().Logger()

	return &Recorder{log: logger}
}

func (r *Recorder) RecordFetch(fetchURL string, httpStatus int, duration time.Duration, contentType string) {
	r.log.Info().
		Str("event", "fetch").
		Str(string(AttrURL), fetchURL).
		Int(string(AttrHTTPStatus), httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Msg("fetched page")
}

func (r *Recorder) RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, errorString string, attrs []Attribute) {
	evt := r.log.Warn().
		Str("event", "error").
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String()).
		Str("error", errorString).
		Time(string(AttrTime), observedAt)
	for _, a := range attrs {
		evt = evt.Str(string(a.Key), a.Value)
	}
	evt.Msg("operation failed")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	evt := r.log.Info().
		Str("event", "artifact").
		Str("kind", string(kind)).
		Str(string(AttrWritePath), path)
	for _, a := range attrs {
		evt = evt.Str(string(a.Key), a.Value)
	}
	evt.Msg("wrote artifact")
}

func (r *Recorder) RecordIndexed(docID, url string, termCount int) {
	r.log.Info().
		Str("event", "indexed").
		Str(string(AttrDocID), docID).
		Str(string(AttrURL), url).
		Int("term_count", termCount).
		Msg("indexed page")
}

func (r *Recorder) RecordQuery(query string, resultCount int, duration time.Duration) {
	r.log.Info().
		Str("event", "query").
		Str("query", query).
		Int("result_count", resultCount).
		Dur("duration", duration).
		Msg("processed query")
}

// NoopRecorder discards every event. Used by components (and their tests)
// that need a MetadataSink but have no interest in observability output.
type NoopRecorder struct{}

var _ MetadataSink = NoopRecorder{}

func (NoopRecorder) RecordFetch(string, int, time.Duration, string)                          {}
func (NoopRecorder) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
func (NoopRecorder) RecordArtifact(ArtifactKind, string, []Attribute)                       {}
func (NoopRecorder) RecordIndexed(string, string, int)                                      {}
func (NoopRecorder) RecordQuery(string, int, time.Duration)                                 {}
