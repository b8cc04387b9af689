package vault

// Reconcile merges the local cache snapshot with the remote listing
// into one consistent view. It is a pure function over the two
// snapshots: no I/O, deterministic, and idempotent, so running it
// twice with the same inputs yields the same result.
//
// Rules:
//   - The remote snapshot is authoritative for confirmed ids and sets
//     the base order.
//   - A local soft-delete marker survives the merge until a later pass
//     observes the item gone from the remote listing; a failed remote
//     soft-delete must not resurrect the item locally.
//   - Local-only items are kept when they are pending or when their
//     bytes are genuinely local (inline content or a non-http locator).
//   - A local-only item that references a server URL but is absent
//     from the remote listing is a zombie left behind by another
//     device's delete. It is dropped silently; persisting the merged
//     result makes this purge converge after a single pass per device.
func Reconcile(local, remote []MediaItem, pending map[string]bool) []MediaItem {
	merged := make([]MediaItem, 0, len(remote))
	seen := make(map[string]bool, len(remote))

	localByID := make(map[string]MediaItem, len(local))
	for _, item := range local {
		localByID[item.ID] = item
	}

	for _, item := range remote {
		if seen[item.ID] {
			continue
		}

		seen[item.ID] = true

		if prev, ok := localByID[item.ID]; ok && prev.Deleted() && !item.Deleted() {
			item.DeletedAt = prev.DeletedAt
		}

		merged = append(merged, item)
	}

	for _, item := range local {
		if seen[item.ID] {
			continue
		}

		if !pending[item.ID] && !IsPendingID(item.ID) && item.Locator.IsRemote() {
			continue // zombie reference
		}

		seen[item.ID] = true
		merged = append(merged, item)
	}

	return merged
}
