// Package vault implements the synchronization and resumable upload
// engine for a personal media vault. It keeps a local-first view of
// media items consistent with a remote vault service while uploads are
// in flight, folder membership is edited concurrently, and network
// calls fail or retry.
//
// The package is an embedded library: the UI layer constructs an
// Engine and drives it through its public operations. The remote
// service and the durable local cache are consumed through the
// RemoteService and LocalCache interfaces and never implemented here
// beyond the bundled HTTP client and bbolt cache.
package vault

import (
	"context"
	"strings"
)

// MediaType classifies a vault entry.
type MediaType string

// Media types accepted by the vault.
const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
)

// Valid reports whether t is one of the four known media types.
func (t MediaType) Valid() bool {
	switch t {
	case MediaPhoto, MediaVideo, MediaAudio, MediaDocument:
		return true
	}

	return false
}

// Locator points at the bytes of a media item: either inline content
// for small files, or a URL/path reference to remote or local bytes.
type Locator struct {
	URL    string `json:"url,omitempty"`
	Inline []byte `json:"inline,omitempty"`
}

// IsRemote reports whether the locator references bytes held by a
// server rather than bytes available locally. Items whose locator is
// remote but which are absent from the remote listing are zombie
// references and get dropped during reconciliation.
func (l Locator) IsRemote() bool {
	return strings.HasPrefix(l.URL, "http://") || strings.HasPrefix(l.URL, "https://")
}

// MediaItem is a single vault entry.
//
// The ID lives in one of two namespaces: pending ids are generated
// locally (see NewPendingID) and never sent to the server; confirmed
// ids are issued by the server and stable. Confirmation replaces the
// pending id everywhere it is referenced, in one step.
type MediaItem struct {
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	Locator     Locator   `json:"locator"`
	MimeType    string    `json:"mimeType,omitempty"`
	Timestamp   int64     `json:"timestamp"` // creation instant, epoch millis
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Duration    float64   `json:"duration,omitempty"` // seconds, audio/video only
	DisplayName string    `json:"displayName,omitempty"`
	DeletedAt   int64     `json:"deletedAt,omitempty"` // epoch millis, 0 = live
	Size        int64     `json:"size,omitempty"`
}

// Deleted reports whether the item carries a soft-delete marker.
func (m MediaItem) Deleted() bool {
	return m.DeletedAt != 0
}

// Folder is a named grouping of media items. MediaIDs is an ordered
// set referencing items in the item store; an id present here but
// absent from the store is an orphan and is purged by CleanOrphans.
type Folder struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Color            string   `json:"color,omitempty"`
	Icon             string   `json:"icon,omitempty"`
	Description      string   `json:"description,omitempty"`
	IsPrivate        bool     `json:"isPrivate,omitempty"`
	PasswordHash     string   `json:"passwordHash,omitempty"`
	IsTemplateFolder bool     `json:"isTemplateFolder,omitempty"`
	MediaIDs         []string `json:"mediaIds"`
}

// ItemRecord is a media item as listed by the remote vault service.
type ItemRecord struct {
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	URL         string    `json:"url"`
	MimeType    string    `json:"mimeType"`
	Timestamp   int64     `json:"timestamp"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	DisplayName string    `json:"displayName"`
	DeletedAt   int64     `json:"deletedAt"`
	Size        int64     `json:"size"`
}

// Item converts the wire record into the engine's item model.
func (r ItemRecord) Item() MediaItem {
	return MediaItem{
		ID:          r.ID,
		Type:        r.Type,
		Locator:     Locator{URL: r.URL},
		MimeType:    r.MimeType,
		Timestamp:   r.Timestamp,
		Thumbnail:   r.Thumbnail,
		Duration:    r.Duration,
		DisplayName: r.DisplayName,
		DeletedAt:   r.DeletedAt,
		Size:        r.Size,
	}
}

// FolderRecord is a folder as listed by the remote vault service.
type FolderRecord struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Color            string   `json:"color"`
	Icon             string   `json:"icon"`
	Description      string   `json:"description"`
	IsPrivate        bool     `json:"isPrivate"`
	PasswordHash     string   `json:"passwordHash"`
	IsTemplateFolder bool     `json:"isTemplateFolder"`
	MediaIDs         []string `json:"mediaIds"`
}

// Folder converts the wire record into the engine's folder model.
func (r FolderRecord) Folder() Folder {
	return Folder{
		ID:               r.ID,
		Name:             r.Name,
		Color:            r.Color,
		Icon:             r.Icon,
		Description:      r.Description,
		IsPrivate:        r.IsPrivate,
		PasswordHash:     r.PasswordHash,
		IsTemplateFolder: r.IsTemplateFolder,
		MediaIDs:         append([]string(nil), r.MediaIDs...),
	}
}

// FolderPatch is a partial folder update. Nil fields are left
// untouched by the server.
type FolderPatch struct {
	Name         *string `json:"name,omitempty"`
	Color        *string `json:"color,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	Description  *string `json:"description,omitempty"`
	IsPrivate    *bool   `json:"isPrivate,omitempty"`
	PasswordHash *string `json:"passwordHash,omitempty"`
}

// SessionHandle identifies an open resumable upload session.
type SessionHandle struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// UploadMeta describes the file behind an upload session.
type UploadMeta struct {
	Name       string    `json:"name"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	Type       MediaType `json:"type"`
	FolderHint string    `json:"folderHint,omitempty"`
}

// FinalizeResult is returned when an upload session is made durable.
type FinalizeResult struct {
	RemoteID    string `json:"remoteId"`
	StoragePath string `json:"storagePath"`
}

//go:generate mockgen -source=types.go -destination=mock_remote_test.go -package=vault

// RemoteService is the remote vault service contract the engine
// consumes. *Client implements it over HTTP; tests substitute mocks.
type RemoteService interface {
	ListItems(ctx context.Context) ([]ItemRecord, error)
	ListFolders(ctx context.Context) ([]FolderRecord, error)

	CreateUploadSession(ctx context.Context, meta UploadMeta) (SessionHandle, error)
	PatchChunk(ctx context.Context, session SessionHandle, offset int64, chunk []byte) error
	FinalizeUpload(ctx context.Context, session SessionHandle) (FinalizeResult, error)
	RegisterMetadata(ctx context.Context, remoteID string, meta UploadMeta) error

	SoftDelete(ctx context.Context, ids []string, folderID string) error
	RenameItem(ctx context.Context, id string, name string) error
	MoveMedia(ctx context.Context, ids []string, folderID string) error

	CreateFolder(ctx context.Context, spec FolderRecord) (FolderRecord, error)
	UpdateFolder(ctx context.Context, id string, patch FolderPatch) error
	DeleteFolder(ctx context.Context, id string) error
}

// LocalCache is the durable key-value store the engine persists the
// merged item list into. Folder state is remote-of-record and never
// cached.
type LocalCache interface {
	Read(key string) ([]byte, bool, error)
	Write(key string, value []byte) error
}
