package vault

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// uploadChunkSize is the fixed chunk size for resumable uploads.
	// Files at or below this size are sent as a single shot.
	uploadChunkSize = 6 * 1024 * 1024 // 6MB

	// defaultMaxFileSize is the per-file size limit when the config
	// does not set one.
	defaultMaxFileSize = 512 * 1024 * 1024 // 512MB

	// defaultMaxAttempts bounds the outer retry loop per logical
	// upload. A chunk failure aborts the whole attempt; the next
	// attempt opens a fresh session rather than resuming mid-session.
	defaultMaxAttempts = 3

	// defaultRetryBaseDelay is the backoff before the second attempt;
	// it doubles for each further attempt.
	defaultRetryBaseDelay = 500 * time.Millisecond

	// registerWeight is the share of the progress percentage reserved
	// for finalize and metadata registration after all bytes are sent.
	registerWeight = 5
)

// UploadFile is one file handed to the engine by the UI layer.
type UploadFile struct {
	Name      string
	MimeType  string
	Type      MediaType
	Content   []byte
	Timestamp int64 // epoch millis; 0 means "now"

	// Duration in seconds, for audio/video.
	Duration float64
}

// UploadResult identifies the durable object a successful upload
// produced.
type UploadResult struct {
	RemoteID    string
	StoragePath string
}

// ProgressFunc receives a monotonically increasing percentage in
// 0..100. The caller owns presentation.
type ProgressFunc func(pct int)

// Uploader implements the resumable upload protocol: open a session,
// stream fixed-size chunks with explicit byte offsets, finalize, then
// register metadata to obtain the authoritative item id.
//
// The retry policy is a bounded-retry state machine: up to maxAttempts
// per logical upload with exponential backoff between attempts.
// Transient failures anywhere in an attempt abort it and re-enter the
// loop; permanent failures short-circuit.
type Uploader struct {
	remote RemoteService
	logger *slog.Logger

	chunkSize      int
	maxFileSize    int64
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewUploader creates an uploader with default chunking and retry
// parameters. A nil logger falls back to slog.Default().
func NewUploader(remote RemoteService, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Uploader{
		remote:         remote,
		logger:         logger,
		chunkSize:      uploadChunkSize,
		maxFileSize:    defaultMaxFileSize,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
}

// Upload transfers file and registers its metadata, returning the
// authoritative remote id and storage path. folderHint is passed to
// the server with the metadata; it does not affect the transfer.
// progress may be nil.
func (u *Uploader) Upload(ctx context.Context, file UploadFile, folderHint string, progress ProgressFunc) (UploadResult, error) {
	size := int64(len(file.Content))
	if size > u.maxFileSize {
		// Fail fast: no network call for a declared size violation.
		return UploadResult{}, fmt.Errorf("%q is %d bytes, limit %d: %w", file.Name, size, u.maxFileSize, ErrSizeLimitExceeded)
	}

	meta := UploadMeta{
		Name:       file.Name,
		MimeType:   file.MimeType,
		Size:       size,
		Type:       file.Type,
		FolderHint: folderHint,
	}

	reporter := newProgressReporter(progress)

	var (
		lastErr   error
		finalized *FinalizeResult
	)

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		var err error

		// Once an object is finalized it is durable; a later attempt
		// must not open a second session and leak the first object.
		// Only the metadata registration is retried from here on.
		if finalized == nil {
			var res FinalizeResult
			if res, err = u.transfer(ctx, file, meta, reporter); err == nil {
				finalized = &res
			}
		}

		if finalized != nil {
			if err = u.remote.RegisterMetadata(ctx, finalized.RemoteID, meta); err == nil {
				reporter.report(100)
				return UploadResult{RemoteID: finalized.RemoteID, StoragePath: finalized.StoragePath}, nil
			}

			err = fmt.Errorf("registering metadata: %w", err)
		}

		lastErr = err

		if !IsTransient(err) {
			return UploadResult{}, fmt.Errorf("uploading %q: %w", file.Name, err)
		}

		if attempt == u.maxAttempts {
			break
		}

		delay := u.retryBaseDelay << (attempt - 1)
		u.logger.Warn("upload attempt failed, retrying",
			slog.String("name", file.Name),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.Any("error", err),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return UploadResult{}, ctx.Err()
		}
	}

	return UploadResult{}, fmt.Errorf("uploading %q: attempts exhausted: %w", file.Name, lastErr)
}

// transfer performs one byte-transfer attempt: session, chunks,
// finalize. Metadata registration happens in the outer loop so its
// retries never re-send bytes.
func (u *Uploader) transfer(ctx context.Context, file UploadFile, meta UploadMeta, reporter *progressReporter) (FinalizeResult, error) {
	session, err := u.remote.CreateUploadSession(ctx, meta)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("creating upload session: %w", err)
	}

	size := int64(len(file.Content))

	for offset := int64(0); offset < size || offset == 0; offset += int64(u.chunkSize) {
		end := offset + int64(u.chunkSize)
		if end > size {
			end = size
		}

		if err := u.remote.PatchChunk(ctx, session, offset, file.Content[offset:end]); err != nil {
			return FinalizeResult{}, fmt.Errorf("sending chunk at offset %d: %w", offset, err)
		}

		if size > 0 {
			reporter.report(int(end * (100 - registerWeight) / size))
		}

		if end == size {
			break
		}
	}

	result, err := u.remote.FinalizeUpload(ctx, session)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("finalizing upload: %w", err)
	}

	return result, nil
}

// progressReporter enforces the monotonic-progress guarantee: emitted
// percentages never decrease, even across retried attempts that resend
// bytes from offset zero.
type progressReporter struct {
	fn   ProgressFunc
	last int
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn, last: -1}
}

func (p *progressReporter) report(pct int) {
	if p.fn == nil {
		return
	}

	if pct > 100 {
		pct = 100
	}

	if pct <= p.last {
		return
	}

	p.last = pct
	p.fn(pct)
}
