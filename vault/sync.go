package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/keepsakehq/media-sync/internal/cache"
	"github.com/keepsakehq/media-sync/internal/config"
	"github.com/keepsakehq/media-sync/internal/logging"
)

const (
	// cacheItemsKey is the local cache key holding the merged media
	// item list. It is the only key the engine writes; folder state is
	// remote-of-record.
	cacheItemsKey = "items"

	// defaultCooldown is the post-upload window during which orphan
	// cleanup is suppressed. It absorbs the propagation delay between
	// "upload confirmed" and "folder membership visible on the next
	// fetch", so a reconciliation pass does not treat a just-confirmed
	// id as an orphan.
	defaultCooldown = 500 * time.Millisecond

	// maxConcurrentUploads bounds the upload fan-out per batch.
	maxConcurrentUploads = 4
)

// Engine is the sync orchestrator: it sequences cache load, remote
// fetch, merge, cleanup, and persist, and exposes the public vault
// operations.
//
// Concurrency discipline: the item store and the folder index are
// shared by concurrent upload tasks and user operations, so every
// access goes through mu. Pending-id resolution updates both
// structures inside one critical section, never leaving a window where
// a stale id dangles. While an upload batch is in flight the engine
// holds the upload gate, which makes background refreshes no-ops: a
// remote snapshot taken during that window is necessarily incomplete
// and would flicker newly-added pending items out of view.
type Engine struct {
	mu      sync.Mutex
	store   *ItemStore
	folders *FolderIndex

	remote   RemoteService
	cache    LocalCache
	uploader *Uploader
	logger   *slog.Logger
	closer   io.Closer

	// Session sync state.
	uploadsInFlight int
	cooldownUntil   time.Time
	offline         bool
	lastSync        int64 // epoch millis, monotonically increasing

	cooldown time.Duration
	now      func() time.Time

	// Progress receives upload progress percentages keyed by the
	// pending id of the item being uploaded. Uploads run concurrently,
	// so calls for different ids interleave; the sequence for any one
	// id is monotonic. Optional; set before the first Upload call.
	Progress func(pendingID string, pct int)
}

// NewEngine creates an engine over the given collaborators. A nil
// logger falls back to slog.Default().
func NewEngine(remote RemoteService, localCache LocalCache, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:    NewItemStore(),
		folders:  NewFolderIndex(),
		remote:   remote,
		cache:    localCache,
		uploader: NewUploader(remote, logger),
		logger:   logger,
		cooldown: defaultCooldown,
		now:      time.Now,
	}
}

// NewEngineFromEnv builds a fully wired engine from environment
// configuration: HTTP client, bbolt cache, and structured logging.
// Callers should Close the engine when the vault session ends.
func NewEngineFromEnv() (*Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)

	db, err := cache.OpenAt(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("opening local cache: %w", err)
	}

	client := NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.DeviceName, nil)

	e := NewEngine(client, db, logger)
	e.closer = db
	e.uploader.maxAttempts = cfg.UploadMaxAttempts

	if cfg.MaxFileSize > 0 {
		e.uploader.maxFileSize = cfg.MaxFileSize
	}

	return e, nil
}

// Close releases resources held by an engine built with
// NewEngineFromEnv. In-flight uploads are not interrupted; they settle
// in the background and reconcile on next open.
func (e *Engine) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}

	return nil
}

// Initialize loads the cached item list so the caller can render
// immediately, then fetches and reconciles remote state in the
// background. It never blocks on the network.
func (e *Engine) Initialize(ctx context.Context) error {
	data, found, err := e.cache.Read(cacheItemsKey)
	if err != nil {
		e.logger.Warn("reading cached items failed, starting empty", slog.Any("error", err))
	} else if found {
		var items []MediaItem
		if err := json.Unmarshal(data, &items); err != nil {
			e.logger.Warn("cached items corrupt, starting empty", slog.Any("error", err))
		} else {
			e.mu.Lock()
			for _, item := range items {
				e.store.UpsertLocal(item)
				if IsPendingID(item.ID) {
					e.store.MarkPending(item.ID)
				}
			}
			e.mu.Unlock()
		}
	}

	go func() {
		if err := e.Refresh(ctx); err != nil {
			e.logger.Warn("background refresh failed", slog.Any("error", err))
		}
	}()

	return nil
}

// Refresh runs one full reconciliation pass: fetch remote state, merge
// with local state, ensure permanent folders, clean orphans, persist.
// It is a no-op while an upload batch is in flight, and never fails on
// a remote error: the engine degrades to local-only state and flags
// the session offline.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.uploadsInFlight > 0 {
		e.mu.Unlock()
		e.logger.Debug("refresh skipped, uploads in flight")

		return nil
	}
	e.mu.Unlock()

	records, err := e.remote.ListItems(ctx)
	if err != nil {
		e.degradeOffline("listing items", err)
		return nil
	}

	folderRecords, err := e.remote.ListFolders(ctx)
	if err != nil {
		e.degradeOffline("listing folders", err)
		return nil
	}

	remoteItems := make([]MediaItem, 0, len(records))
	for _, r := range records {
		remoteItems = append(remoteItems, r.Item())
	}

	remoteFolders := make([]Folder, 0, len(folderRecords))
	for _, r := range folderRecords {
		remoteFolders = append(remoteFolders, r.Folder())
	}

	e.mu.Lock()
	if e.uploadsInFlight > 0 {
		// A batch started while we were fetching; the snapshot is
		// stale now. Drop it rather than flickering pending items.
		e.mu.Unlock()
		e.logger.Debug("refresh snapshot dropped, uploads started mid-fetch")

		return nil
	}

	e.offline = false

	merged := Reconcile(e.store.All(), remoteItems, e.store.PendingIDs())
	e.store.ReplaceAll(merged)
	e.folders.ReplaceAll(remoteFolders)

	if removed := e.cleanOrphansLocked(); removed > 0 {
		e.logger.Info("purged orphan folder references", slog.Int("count", removed))
	}

	if ts := e.now().UnixMilli(); ts > e.lastSync {
		e.lastSync = ts
	}
	e.mu.Unlock()

	if err := e.ensurePermanentFolders(ctx); err != nil {
		e.logger.Warn("ensuring permanent folders failed", slog.Any("error", err))
	}

	e.persist()

	return nil
}

// cleanOrphansLocked drops folder references to ids missing from the
// visible item set, unless the post-upload cooldown suppresses it.
// Caller holds mu.
func (e *Engine) cleanOrphansLocked() int {
	if e.now().Before(e.cooldownUntil) {
		return 0
	}

	return e.folders.CleanOrphans(e.store.VisibleIDs())
}

func (e *Engine) degradeOffline(op string, err error) {
	e.mu.Lock()
	e.offline = true
	e.mu.Unlock()

	e.logger.Warn("remote unavailable, running local-only",
		slog.String("op", op),
		slog.Any("error", err),
	)
}

// ensurePermanentFolders creates the four type-restricted folders when
// absent (matched by exact name, so "My Photos" never counts) and
// re-applies drifted icons and descriptions without creating
// duplicates.
func (e *Engine) ensurePermanentFolders(ctx context.Context) error {
	e.mu.Lock()
	missing := e.folders.MissingPermanentFolders()
	stale := e.folders.StalePermanentFolders()
	e.mu.Unlock()

	for _, spec := range missing {
		record, err := e.remote.CreateFolder(ctx, FolderRecord{
			Name:        spec.Name,
			Icon:        spec.Icon,
			Description: spec.Description,
		})
		if err != nil {
			return fmt.Errorf("creating permanent folder %q: %w", spec.Name, err)
		}

		e.mu.Lock()
		if _, exists := e.folders.ByName(spec.Name); !exists {
			e.folders.Put(record.Folder())
		}
		e.mu.Unlock()
	}

	for id, patch := range stale {
		if err := e.remote.UpdateFolder(ctx, id, patch); err != nil {
			return fmt.Errorf("updating permanent folder %q: %w", id, err)
		}

		e.mu.Lock()
		if f, ok := e.folders.Get(id); ok {
			f.Icon = *patch.Icon
			f.Description = *patch.Description
			e.folders.Put(f)
		}
		e.mu.Unlock()
	}

	return nil
}

// uploadJob pairs a pending item with the file feeding its upload.
type uploadJob struct {
	pendingID string
	file      UploadFile
}

// Upload inserts a pending item per file (instant local preview), then
// streams the files through the chunked transport concurrently. Files
// that fail the size, type, or duplicate-name gates are skipped before
// any network call. Failed uploads keep their pending item visible for
// manual retry rather than silently disappearing. The whole batch
// settles before the single follow-up reconciliation pass runs.
func (e *Engine) Upload(ctx context.Context, files []UploadFile, targetFolderID string) (BatchResult, error) {
	var result BatchResult

	e.mu.Lock()

	var (
		requiredTyp MediaType
		typeGuarded bool
	)

	if targetFolderID != "" {
		target, ok := e.folders.Get(targetFolderID)
		if !ok {
			e.mu.Unlock()
			return result, ErrFolderNotFound
		}

		requiredTyp, typeGuarded = PermanentFolderType(target.Name)
	}

	var jobs []uploadJob

	for _, file := range files {
		if typeGuarded && file.Type != requiredTyp {
			result.skip(file.Name, ErrTypeMismatch)
			continue
		}

		if int64(len(file.Content)) > e.uploader.maxFileSize {
			result.skip(file.Name, ErrSizeLimitExceeded)
			continue
		}

		ts := file.Timestamp
		if ts == 0 {
			ts = e.now().UnixMilli()
		}

		item := MediaItem{
			ID:          NewPendingID(),
			Type:        file.Type,
			Locator:     Locator{Inline: file.Content},
			MimeType:    file.MimeType,
			Timestamp:   ts,
			Duration:    file.Duration,
			DisplayName: file.Name,
			Size:        int64(len(file.Content)),
		}

		siblings := e.folders.Members(targetFolderID, e.store.Visible(), e.store.Get)
		if nameTaken(item.EffectiveName(), siblings, "") {
			result.skip(file.Name, ErrDuplicateName)
			continue
		}

		e.store.UpsertLocal(item)
		e.store.MarkPending(item.ID)

		if targetFolderID != "" {
			f, _ := e.folders.Get(targetFolderID)
			f.MediaIDs = append(f.MediaIDs, item.ID)
			e.folders.Put(f)
		}

		jobs = append(jobs, uploadJob{pendingID: item.ID, file: file})
	}

	if len(jobs) == 0 {
		e.mu.Unlock()
		return result, nil
	}

	// Gate held for the whole batch: background refreshes stay out
	// until every task has settled, success or failure.
	e.uploadsInFlight++
	e.mu.Unlock()

	var (
		resMu sync.Mutex
		g     errgroup.Group
	)

	g.SetLimit(maxConcurrentUploads)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			res, err := e.uploader.Upload(ctx, job.file, targetFolderID, e.progressFor(job.pendingID))
			if err != nil {
				e.logger.Warn("upload failed, keeping pending item",
					slog.String("name", job.file.Name),
					slog.String("pendingId", job.pendingID),
					slog.Any("error", err),
				)

				resMu.Lock()
				result.fail(job.pendingID, err)
				resMu.Unlock()

				return nil
			}

			e.resolvePending(ctx, job.pendingID, res)

			resMu.Lock()
			result.Done++
			resMu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	e.mu.Lock()
	e.uploadsInFlight--
	if e.uploadsInFlight == 0 {
		e.cooldownUntil = e.now().Add(e.cooldown)
	}
	e.mu.Unlock()

	// One reconciliation pass per batch, never one per file.
	if err := e.Refresh(ctx); err != nil {
		e.logger.Warn("post-upload refresh failed", slog.Any("error", err))
	}

	e.persist()

	return result, nil
}

// progressFor binds the engine-level progress callback to one pending
// item, giving each concurrent upload its own monotonic stream.
func (e *Engine) progressFor(pendingID string) ProgressFunc {
	if e.Progress == nil {
		return nil
	}

	return func(pct int) {
		e.Progress(pendingID, pct)
	}
}

// resolvePending substitutes the server-issued id for the pending id
// in the item store and every folder membership list, as one unit.
// When the item was soft-deleted while its upload was still in flight,
// the delete is forwarded to the server now that an id exists for it.
func (e *Engine) resolvePending(ctx context.Context, pendingID string, res UploadResult) {
	e.mu.Lock()

	if !e.store.ResolvePending(pendingID, res.RemoteID) {
		e.mu.Unlock()
		return
	}

	e.store.Apply(res.RemoteID, func(m *MediaItem) {
		m.Locator = Locator{URL: res.StoragePath}
	})
	e.folders.RenameItemID(pendingID, res.RemoteID)

	item, _ := e.store.Get(res.RemoteID)
	e.mu.Unlock()

	if item.Deleted() {
		if err := e.remote.SoftDelete(ctx, []string{res.RemoteID}, ""); err != nil {
			e.logger.Warn("deferred soft-delete failed", slog.String("id", res.RemoteID), slog.Any("error", err))
		}
	}
}

// Move reassigns items to a folder ("" = unsorted), optimistically
// first for instant feedback, then on the server. A remote failure
// reverts by re-running reconciliation rather than undoing the
// optimistic write by hand. Batch calls skip offending items and
// proceed; a single-item call surfaces its skip reason as the error.
func (e *Engine) Move(ctx context.Context, ids []string, folderID string) (BatchResult, error) {
	e.mu.Lock()
	result, err := e.folders.MoveItems(ids, folderID, e.store.Visible(), e.store.Get)
	e.mu.Unlock()

	if err != nil {
		return result, err
	}

	if len(ids) == 1 && result.Done == 0 {
		for _, reason := range result.SkipReasons {
			return result, reason
		}
	}

	var confirmed []string

	for _, id := range ids {
		if _, skipped := result.SkipReasons[id]; skipped {
			continue
		}

		// Pending ids are never sent to the server; their folder
		// placement rides along with the upload's folder hint.
		if !IsPendingID(id) {
			confirmed = append(confirmed, id)
		}
	}

	if len(confirmed) > 0 {
		if err := e.remote.MoveMedia(ctx, confirmed, folderID); err != nil {
			e.logger.Warn("remote move failed, reverting via reconcile", slog.Any("error", err))

			if refreshErr := e.Refresh(ctx); refreshErr != nil {
				e.logger.Warn("revert refresh failed", slog.Any("error", refreshErr))
			}
		}
	}

	return result, nil
}

// Rename assigns a new display name after checking it against the
// item's current siblings (same folder, or the unsorted set). There is
// no optimistic path: local state updates only after remote success,
// since a rename has nothing useful to show early.
func (e *Engine) Rename(ctx context.Context, id string, newName string) error {
	e.mu.Lock()

	item, ok := e.store.Get(id)
	if !ok {
		e.mu.Unlock()
		return ErrItemNotFound
	}

	folderID, _ := e.folders.FolderOf(id)
	siblings := e.folders.Members(folderID, e.store.Visible(), e.store.Get)

	if nameTaken(newName, siblings, id) {
		e.mu.Unlock()
		return ErrDuplicateName
	}
	e.mu.Unlock()

	if !IsPendingID(item.ID) {
		if err := e.remote.RenameItem(ctx, id, newName); err != nil {
			return fmt.Errorf("renaming item: %w", err)
		}
	}

	e.mu.Lock()
	e.store.Apply(id, func(m *MediaItem) {
		m.DisplayName = newName
	})
	e.mu.Unlock()

	e.persist()

	return nil
}

// Delete soft-deletes items locally right away and detaches them from
// their folders; the remote soft-delete runs after, and its failure is
// logged without reverting the local removal. Purging happens later,
// during reconciliation, once the remote listing confirms absence.
func (e *Engine) Delete(ctx context.Context, ids []string) error {
	at := e.now().UnixMilli()

	e.mu.Lock()

	var (
		confirmed []string
		folderCtx string
	)

	for _, id := range ids {
		if fid, ok := e.folders.FolderOf(id); ok && folderCtx == "" {
			folderCtx = fid
		}

		if !e.store.SoftDelete(id, at) {
			continue
		}

		e.folders.RemoveFromAll(id)

		if !IsPendingID(id) {
			confirmed = append(confirmed, id)
		}
	}
	e.mu.Unlock()

	e.persist()

	if len(confirmed) > 0 {
		if err := e.remote.SoftDelete(ctx, confirmed, folderCtx); err != nil {
			e.logger.Warn("remote soft-delete failed; local removal stands", slog.Any("error", err))
		}
	}

	return nil
}

// AutoOrganizeByType partitions the currently-unsorted items by media
// type, lazily creates any missing permanent folder, and issues one
// move per type group.
func (e *Engine) AutoOrganizeByType(ctx context.Context) (BatchResult, error) {
	if err := e.ensurePermanentFolders(ctx); err != nil {
		return BatchResult{}, err
	}

	e.mu.Lock()
	unsorted := e.folders.unsorted(e.store.Visible())
	e.mu.Unlock()

	groups := make(map[MediaType][]string)
	for _, item := range unsorted {
		groups[item.Type] = append(groups[item.Type], item.ID)
	}

	var total BatchResult

	for _, spec := range permanentSpecs {
		ids := groups[spec.mediaType]
		if len(ids) == 0 {
			continue
		}

		e.mu.Lock()
		folder, ok := e.folders.ByName(spec.name)
		e.mu.Unlock()

		if !ok {
			for _, id := range ids {
				total.skip(id, ErrFolderNotFound)
			}

			continue
		}

		result, err := e.Move(ctx, ids, folder.ID)
		if err != nil {
			return total, err
		}

		total.Done += result.Done
		total.Skipped += result.Skipped
		total.Failed += result.Failed

		for id, reason := range result.SkipReasons {
			if total.SkipReasons == nil {
				total.SkipReasons = make(map[string]error)
			}

			total.SkipReasons[id] = reason
		}
	}

	return total, nil
}

// persist writes the merged item list to the durable cache so the next
// cold start already reflects the cleaned state.
func (e *Engine) persist() {
	e.mu.Lock()
	items := e.store.All()
	e.mu.Unlock()

	data, err := json.Marshal(items)
	if err != nil {
		e.logger.Warn("marshalling items for cache failed", slog.Any("error", err))
		return
	}

	if err := e.cache.Write(cacheItemsKey, data); err != nil {
		e.logger.Warn("persisting items failed", slog.Any("error", err))
	}
}

// Items returns the visible (non-deleted) items in display order.
func (e *Engine) Items() []MediaItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.store.Visible()
}

// AllItems returns every item including soft-deleted ones.
func (e *Engine) AllItems() []MediaItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.store.All()
}

// Folders returns the current folder list.
func (e *Engine) Folders() []Folder {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.folders.All()
}

// Unsorted returns the visible items that belong to no folder.
func (e *Engine) Unsorted() []MediaItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.folders.unsorted(e.store.Visible())
}

// Offline reports whether the last refresh failed to reach the remote
// service. All local-only operations remain usable while offline.
func (e *Engine) Offline() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.offline
}

// LastSync returns the instant of the last successful reconciliation,
// in epoch millis, or 0 when none has completed yet.
func (e *Engine) LastSync() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastSync
}

// PendingCount returns the number of items awaiting confirmation.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.store.PendingIDs())
}

// CreateFolder creates a user folder. Permanent folder names are
// reserved and rejected; use AutoOrganizeByType or Refresh to have
// them created automatically.
func (e *Engine) CreateFolder(ctx context.Context, name, color string) (Folder, error) {
	if IsPermanentFolderName(name) {
		return Folder{}, ErrPermanentFolder
	}

	record, err := e.remote.CreateFolder(ctx, FolderRecord{Name: name, Color: color})
	if err != nil {
		return Folder{}, fmt.Errorf("creating folder: %w", err)
	}

	folder := record.Folder()

	e.mu.Lock()
	e.folders.Put(folder)
	e.mu.Unlock()

	return folder, nil
}

// DeleteFolder removes a folder; its members become unsorted and the
// underlying media is never deleted. Permanent folders refuse.
func (e *Engine) DeleteFolder(ctx context.Context, id string) error {
	e.mu.Lock()
	_, err := e.folders.Delete(id)
	e.mu.Unlock()

	if err != nil {
		return err
	}

	if err := e.remote.DeleteFolder(ctx, id); err != nil {
		e.logger.Warn("remote folder delete failed, reverting via reconcile", slog.Any("error", err))

		if refreshErr := e.Refresh(ctx); refreshErr != nil {
			e.logger.Warn("revert refresh failed", slog.Any("error", refreshErr))
		}
	}

	return nil
}

// RenameFolder renames a user folder after remote success. Permanent
// folders cannot be renamed, and their names cannot be taken.
func (e *Engine) RenameFolder(ctx context.Context, id string, name string) error {
	e.mu.Lock()
	folder, ok := e.folders.Get(id)
	e.mu.Unlock()

	if !ok {
		return ErrFolderNotFound
	}

	if IsPermanentFolderName(folder.Name) || IsPermanentFolderName(name) {
		return ErrPermanentFolder
	}

	patch := FolderPatch{Name: &name}
	if err := e.remote.UpdateFolder(ctx, id, patch); err != nil {
		return fmt.Errorf("renaming folder: %w", err)
	}

	e.mu.Lock()
	if f, stillThere := e.folders.Get(id); stillThere {
		f.Name = name
		e.folders.Put(f)
	}
	e.mu.Unlock()

	return nil
}
