package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// memCache is an in-memory LocalCache for engine tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Read(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), value...), true, nil
}

func (c *memCache) Write(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = append([]byte(nil), value...)

	return nil
}

// fakeRemote is a stateful in-memory RemoteService. Error fields
// inject failures per operation; chunkFailures and registerFailures
// make that many calls fail transiently before succeeding.
type fakeRemote struct {
	mu sync.Mutex

	items   []ItemRecord
	folders []FolderRecord

	nextSession int
	nextItem    int
	nextFolder  int

	sessions  map[string][]byte
	meta      map[string]UploadMeta
	finalized map[string]string // session id -> remote id

	chunkFailures    int
	registerFailures int
	sessionCalls     int
	patchCalls       int
	listItemCalls    int

	listErr         error
	sessionErr      error
	finalizeErr     error
	registerErr     error
	moveErr         error
	renameErr       error
	softDeleteErr   error
	createFolderErr error
	updateFolderErr error
	deleteFolderErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		sessions:  make(map[string][]byte),
		meta:      make(map[string]UploadMeta),
		finalized: make(map[string]string),
	}
}

func (f *fakeRemote) ListItems(context.Context) ([]ItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listItemCalls++

	if f.listErr != nil {
		return nil, f.listErr
	}

	return append([]ItemRecord(nil), f.items...), nil
}

func (f *fakeRemote) ListFolders(context.Context) ([]FolderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]FolderRecord, len(f.folders))
	for i, rec := range f.folders {
		rec.MediaIDs = append([]string(nil), rec.MediaIDs...)
		out[i] = rec
	}

	return out, nil
}

func (f *fakeRemote) CreateUploadSession(_ context.Context, meta UploadMeta) (SessionHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessionCalls++

	if f.sessionErr != nil {
		return SessionHandle{}, f.sessionErr
	}

	f.nextSession++
	id := fmt.Sprintf("sess-%d", f.nextSession)
	f.sessions[id] = nil
	f.meta[id] = meta

	return SessionHandle{ID: id, URI: "/uploads/" + id}, nil
}

func (f *fakeRemote) PatchChunk(_ context.Context, session SessionHandle, offset int64, chunk []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.patchCalls++

	if f.chunkFailures > 0 {
		f.chunkFailures--
		return &TransientError{Err: fmt.Errorf("chunk transfer interrupted")}
	}

	buf, ok := f.sessions[session.ID]
	if !ok {
		return fmt.Errorf("unknown session %q", session.ID)
	}

	if offset != int64(len(buf)) {
		return fmt.Errorf("offset %d does not match received bytes %d", offset, len(buf))
	}

	f.sessions[session.ID] = append(buf, chunk...)

	return nil
}

func (f *fakeRemote) FinalizeUpload(_ context.Context, session SessionHandle) (FinalizeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.finalizeErr != nil {
		return FinalizeResult{}, f.finalizeErr
	}

	if _, ok := f.sessions[session.ID]; !ok {
		return FinalizeResult{}, fmt.Errorf("unknown session %q", session.ID)
	}

	f.nextItem++
	remoteID := fmt.Sprintf("item-%d", f.nextItem)
	f.finalized[session.ID] = remoteID

	return FinalizeResult{
		RemoteID:    remoteID,
		StoragePath: "https://cdn.example.com/media/" + remoteID,
	}, nil
}

func (f *fakeRemote) RegisterMetadata(_ context.Context, remoteID string, meta UploadMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.registerFailures > 0 {
		f.registerFailures--
		return &TransientError{Err: fmt.Errorf("metadata registration interrupted")}
	}

	if f.registerErr != nil {
		return f.registerErr
	}

	f.items = append(f.items, ItemRecord{
		ID:          remoteID,
		Type:        meta.Type,
		URL:         "https://cdn.example.com/media/" + remoteID,
		MimeType:    meta.MimeType,
		DisplayName: meta.Name,
		Size:        meta.Size,
	})

	if meta.FolderHint != "" {
		for i := range f.folders {
			if f.folders[i].ID == meta.FolderHint {
				f.folders[i].MediaIDs = append(f.folders[i].MediaIDs, remoteID)
			}
		}
	}

	return nil
}

func (f *fakeRemote) SoftDelete(_ context.Context, ids []string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.softDeleteErr != nil {
		return f.softDeleteErr
	}

	for _, id := range ids {
		for i := range f.items {
			if f.items[i].ID == id {
				f.items[i].DeletedAt = time.Now().UnixMilli()
			}
		}
	}

	return nil
}

func (f *fakeRemote) RenameItem(_ context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.renameErr != nil {
		return f.renameErr
	}

	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].DisplayName = name
		}
	}

	return nil
}

func (f *fakeRemote) MoveMedia(_ context.Context, ids []string, folderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.moveErr != nil {
		return f.moveErr
	}

	moved := make(map[string]bool, len(ids))
	for _, id := range ids {
		moved[id] = true
	}

	for i := range f.folders {
		kept := f.folders[i].MediaIDs[:0]
		for _, mid := range f.folders[i].MediaIDs {
			if !moved[mid] {
				kept = append(kept, mid)
			}
		}
		f.folders[i].MediaIDs = kept
	}

	if folderID != "" {
		for i := range f.folders {
			if f.folders[i].ID == folderID {
				f.folders[i].MediaIDs = append(f.folders[i].MediaIDs, ids...)
			}
		}
	}

	return nil
}

func (f *fakeRemote) CreateFolder(_ context.Context, spec FolderRecord) (FolderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createFolderErr != nil {
		return FolderRecord{}, f.createFolderErr
	}

	f.nextFolder++
	spec.ID = fmt.Sprintf("folder-%d", f.nextFolder)
	f.folders = append(f.folders, spec)

	return spec, nil
}

func (f *fakeRemote) UpdateFolder(_ context.Context, id string, patch FolderPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateFolderErr != nil {
		return f.updateFolderErr
	}

	for i := range f.folders {
		if f.folders[i].ID != id {
			continue
		}

		if patch.Name != nil {
			f.folders[i].Name = *patch.Name
		}
		if patch.Color != nil {
			f.folders[i].Color = *patch.Color
		}
		if patch.Icon != nil {
			f.folders[i].Icon = *patch.Icon
		}
		if patch.Description != nil {
			f.folders[i].Description = *patch.Description
		}
		if patch.IsPrivate != nil {
			f.folders[i].IsPrivate = *patch.IsPrivate
		}
		if patch.PasswordHash != nil {
			f.folders[i].PasswordHash = *patch.PasswordHash
		}
	}

	return nil
}

func (f *fakeRemote) DeleteFolder(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteFolderErr != nil {
		return f.deleteFolderErr
	}

	for i := range f.folders {
		if f.folders[i].ID == id {
			f.folders = append(f.folders[:i], f.folders[i+1:]...)
			break
		}
	}

	return nil
}

// folderRecord returns a copy of the fake's folder record by id.
func (f *fakeRemote) folderRecord(id string) (FolderRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rec := range f.folders {
		if rec.ID == id {
			rec.MediaIDs = append([]string(nil), rec.MediaIDs...)
			return rec, true
		}
	}

	return FolderRecord{}, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEngine wires an engine against the in-memory fakes, with
// retry delays shrunk so failure tests stay fast.
func newTestEngine(t *testing.T) (*Engine, *fakeRemote, *memCache) {
	t.Helper()

	remote := newFakeRemote()
	localCache := newMemCache()

	e := NewEngine(remote, localCache, discardLogger())
	e.uploader.retryBaseDelay = time.Millisecond

	return e, remote, localCache
}

// photo builds a confirmed remote-backed photo item for store and
// reconcile tests.
func photo(id, name string) MediaItem {
	return MediaItem{
		ID:          id,
		Type:        MediaPhoto,
		Locator:     Locator{URL: "https://cdn.example.com/media/" + id},
		MimeType:    "image/jpeg",
		Timestamp:   1700000000000,
		DisplayName: name,
	}
}

// localItem builds an item whose bytes live only on this device.
func localItem(id, name string) MediaItem {
	return MediaItem{
		ID:          id,
		Type:        MediaPhoto,
		Locator:     Locator{Inline: []byte("raw-bytes")},
		MimeType:    "image/jpeg",
		Timestamp:   1700000000000,
		DisplayName: name,
	}
}
