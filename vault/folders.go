package vault

// permanentSpec describes one of the four reserved folders. They are
// matched by exact name, cannot be renamed or deleted, and accept only
// items of their designated type.
type permanentSpec struct {
	name        string
	mediaType   MediaType
	icon        string
	description string
}

var permanentSpecs = []permanentSpec{
	{name: "Photos", mediaType: MediaPhoto, icon: "camera", description: "All your photos"},
	{name: "Videos", mediaType: MediaVideo, icon: "film", description: "All your videos"},
	{name: "Audio", mediaType: MediaAudio, icon: "microphone", description: "All your recordings"},
	{name: "Documents", mediaType: MediaDocument, icon: "file", description: "All your documents"},
}

// PermanentFolderType returns the media type a permanent folder is
// restricted to. The second return value is false for non-permanent
// names. The match is exact, never substring, so a user folder named
// "My Photos" is not treated as permanent.
func PermanentFolderType(name string) (MediaType, bool) {
	for _, spec := range permanentSpecs {
		if spec.name == name {
			return spec.mediaType, true
		}
	}

	return "", false
}

// IsPermanentFolderName reports whether name is reserved for a
// permanent folder.
func IsPermanentFolderName(name string) bool {
	_, ok := PermanentFolderType(name)
	return ok
}

// itemLookup resolves an item id against the item store. The folder
// index is referentially dependent on the store but holds no items
// itself, so membership checks take the lookup as a parameter.
type itemLookup func(id string) (MediaItem, bool)

// FolderIndex is the many-to-one mapping of item ids to folders. An
// item belongs to at most one folder; absence from all folders means
// "unsorted". Like ItemStore it is guarded by the Engine's mutex.
type FolderIndex struct {
	order []string
	byID  map[string]Folder
}

// NewFolderIndex returns an empty index.
func NewFolderIndex() *FolderIndex {
	return &FolderIndex{byID: make(map[string]Folder)}
}

// Put inserts or replaces a folder, keeping insertion order.
func (x *FolderIndex) Put(f Folder) {
	if _, ok := x.byID[f.ID]; !ok {
		x.order = append(x.order, f.ID)
	}

	x.byID[f.ID] = f
}

// Get returns the folder with the given id.
func (x *FolderIndex) Get(id string) (Folder, bool) {
	f, ok := x.byID[id]
	return f, ok
}

// ByName returns the folder whose name matches exactly.
func (x *FolderIndex) ByName(name string) (Folder, bool) {
	for _, id := range x.order {
		if f := x.byID[id]; f.Name == name {
			return f, true
		}
	}

	return Folder{}, false
}

// All returns every folder in insertion order.
func (x *FolderIndex) All() []Folder {
	out := make([]Folder, 0, len(x.order))
	for _, id := range x.order {
		out = append(out, x.byID[id])
	}

	return out
}

// ReplaceAll swaps in a fresh folder list, dropping duplicates by id.
func (x *FolderIndex) ReplaceAll(folders []Folder) {
	order := make([]string, 0, len(folders))
	byID := make(map[string]Folder, len(folders))

	for _, f := range folders {
		if _, dup := byID[f.ID]; dup {
			continue
		}

		order = append(order, f.ID)
		byID[f.ID] = f
	}

	x.order = order
	x.byID = byID
}

// Delete removes a folder, returning the member ids that are now
// unsorted. The underlying media is never deleted. Permanent folders
// refuse deletion.
func (x *FolderIndex) Delete(id string) ([]string, error) {
	f, ok := x.byID[id]
	if !ok {
		return nil, ErrFolderNotFound
	}

	if IsPermanentFolderName(f.Name) {
		return nil, ErrPermanentFolder
	}

	delete(x.byID, id)
	x.order = removeString(x.order, id)

	return f.MediaIDs, nil
}

// FolderOf returns the id of the folder containing itemID, or false
// when the item is unsorted.
func (x *FolderIndex) FolderOf(itemID string) (string, bool) {
	for _, fid := range x.order {
		for _, mid := range x.byID[fid].MediaIDs {
			if mid == itemID {
				return fid, true
			}
		}
	}

	return "", false
}

// Members resolves a folder's membership list against the item store,
// skipping ids the store no longer knows (orphans awaiting cleanup).
// A folder id of "" resolves the unsorted set instead.
func (x *FolderIndex) Members(folderID string, items []MediaItem, lookup itemLookup) []MediaItem {
	if folderID == "" {
		return x.unsorted(items)
	}

	f, ok := x.byID[folderID]
	if !ok {
		return nil
	}

	out := make([]MediaItem, 0, len(f.MediaIDs))

	for _, id := range f.MediaIDs {
		if item, found := lookup(id); found {
			out = append(out, item)
		}
	}

	return out
}

// unsorted filters items down to those that belong to no folder.
func (x *FolderIndex) unsorted(items []MediaItem) []MediaItem {
	member := make(map[string]bool)

	for _, fid := range x.order {
		for _, mid := range x.byID[fid].MediaIDs {
			member[mid] = true
		}
	}

	out := make([]MediaItem, 0, len(items))

	for _, item := range items {
		if !member[item.ID] {
			out = append(out, item)
		}
	}

	return out
}

// RemoveFromAll detaches itemID from every folder.
func (x *FolderIndex) RemoveFromAll(itemID string) {
	for _, fid := range x.order {
		f := x.byID[fid]

		trimmed := removeString(f.MediaIDs, itemID)
		if len(trimmed) != len(f.MediaIDs) {
			f.MediaIDs = trimmed
			x.byID[fid] = f
		}
	}
}

// RenameItemID rewrites old to new in every membership list, keeping
// position. Part of the atomic pending-id resolution step.
func (x *FolderIndex) RenameItemID(old, new string) {
	for _, fid := range x.order {
		f := x.byID[fid]

		for i, mid := range f.MediaIDs {
			if mid == old {
				f.MediaIDs[i] = new
				x.byID[fid] = f

				break
			}
		}
	}
}

// CleanOrphans filters every folder's membership down to ids present
// in valid, returning the number of references removed. This is the
// only sanctioned mechanism for dropping stale references; the Engine
// suppresses it while uploads are in flight and during the post-upload
// cooldown window.
func (x *FolderIndex) CleanOrphans(valid map[string]bool) int {
	removed := 0

	for _, fid := range x.order {
		f := x.byID[fid]

		kept := f.MediaIDs[:0]
		for _, mid := range f.MediaIDs {
			if valid[mid] {
				kept = append(kept, mid)
			} else {
				removed++
			}
		}

		f.MediaIDs = kept
		x.byID[fid] = f
	}

	return removed
}

// MoveItems moves ids into the target folder ("" = unsorted),
// detaching each from its current folder first. Items that fail the
// permanent-folder type guard or the duplicate-name check are skipped
// and reported in the result; the remainder proceeds. The unsorted set
// is a name scope like any folder, so items is the visible item list
// its membership resolves against. Callers moving a single item treat
// any skip as that item's error.
func (x *FolderIndex) MoveItems(ids []string, targetID string, items []MediaItem, lookup itemLookup) (BatchResult, error) {
	var result BatchResult

	var (
		target      Folder
		requiredTyp MediaType
		typeGuarded bool
	)

	if targetID != "" {
		var ok bool
		if target, ok = x.byID[targetID]; !ok {
			return result, ErrFolderNotFound
		}

		requiredTyp, typeGuarded = PermanentFolderType(target.Name)
	}

	for _, id := range ids {
		item, ok := lookup(id)
		if !ok {
			result.skip(id, ErrItemNotFound)
			continue
		}

		if typeGuarded && item.Type != requiredTyp {
			result.skip(id, ErrTypeMismatch)
			continue
		}

		// Re-read the target each iteration so items accepted earlier
		// in this batch count as siblings.
		members := x.Members(targetID, items, lookup)
		if nameTaken(item.EffectiveName(), members, id) {
			result.skip(id, ErrDuplicateName)
			continue
		}

		x.RemoveFromAll(id)

		if targetID != "" {
			f := x.byID[targetID]
			f.MediaIDs = append(f.MediaIDs, id)
			x.byID[targetID] = f
		}

		result.Done++
	}

	return result, nil
}

// MissingPermanentFolders returns specs for permanent folders that do
// not exist yet, matched by exact name.
func (x *FolderIndex) MissingPermanentFolders() []Folder {
	var missing []Folder

	for _, spec := range permanentSpecs {
		if _, ok := x.ByName(spec.name); ok {
			continue
		}

		missing = append(missing, Folder{
			Name:        spec.name,
			Icon:        spec.icon,
			Description: spec.description,
		})
	}

	return missing
}

// StalePermanentFolders returns existing permanent folders whose icon
// or description drifted from the current spec, paired with the patch
// that brings them up to date. No duplicate folder is ever created for
// these.
func (x *FolderIndex) StalePermanentFolders() map[string]FolderPatch {
	stale := make(map[string]FolderPatch)

	for _, spec := range permanentSpecs {
		f, ok := x.ByName(spec.name)
		if !ok {
			continue
		}

		if f.Icon == spec.icon && f.Description == spec.description {
			continue
		}

		icon, description := spec.icon, spec.description
		stale[f.ID] = FolderPatch{Icon: &icon, Description: &description}
	}

	return stale
}
