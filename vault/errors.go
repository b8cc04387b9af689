package vault

import (
	"errors"
	"fmt"
)

// User-correctable errors, surfaced before any network call.
var (
	ErrSizeLimitExceeded = errors.New("file exceeds the upload size limit")
	ErrDuplicateName     = errors.New("an item with this name already exists in the folder")
	ErrTypeMismatch      = errors.New("item type not accepted by this folder")
)

// Structural errors.
var (
	ErrAuthenticationMissing = errors.New("no session token, remote service unavailable")
	ErrItemNotFound          = errors.New("item not found")
	ErrFolderNotFound        = errors.New("folder not found")
	ErrPermanentFolder       = errors.New("permanent folders cannot be renamed or deleted")
	ErrWrongPassword         = errors.New("wrong folder password")
)

// TransientError wraps an error that is likely temporary and safe to
// retry after a backoff.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err (or any error in its chain) is a
// TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// BatchResult is the aggregate outcome of a batch operation. Partial
// success is the common case; Skipped carries the ids that were
// filtered out and why, so callers can report "moved N of M".
type BatchResult struct {
	Done    int
	Skipped int
	Failed  int

	// SkipReasons maps a skipped or failed id (or file name, for
	// uploads that never produced an item) to the error behind it.
	SkipReasons map[string]error
}

func (r BatchResult) String() string {
	total := r.Done + r.Skipped + r.Failed
	return fmt.Sprintf("%d of %d succeeded (%d skipped, %d failed)", r.Done, total, r.Skipped, r.Failed)
}

// skip records one filtered id.
func (r *BatchResult) skip(id string, reason error) {
	r.Skipped++
	if r.SkipReasons == nil {
		r.SkipReasons = make(map[string]error)
	}

	r.SkipReasons[id] = reason
}

// fail records one failed id.
func (r *BatchResult) fail(id string, reason error) {
	r.Failed++
	if r.SkipReasons == nil {
		r.SkipReasons = make(map[string]error)
	}

	r.SkipReasons[id] = reason
}
