package core

// dedup.go resolves duplicate store records to one canonical record per
// physical location.
//
// Two passes, each idempotent:
//
//  1. Collapse records sharing a store_id, keeping the greatest recency key.
//  2. Collapse surviving records sharing a normalized street address, again
//     keeping the most recent. This pass can eliminate legitimately distinct
//     store_ids that re-registered an existing address; that cascade is
//     intentional and matches how re-registrations are handled upstream.
//
// Ties on the recency key are broken by the lexicographically smallest
// store_id, then by first position in the input. Input order is therefore
// never the only discriminator between distinct ids, and permuting the input
// cannot change the canonical set.

import "sort"

// Reasons a store record was dropped during deduplication.
const (
	DroppedDuplicateID      = "duplicate_store_id"
	DroppedDuplicateAddress = "duplicate_street_address"
)

// DroppedStore records one store eliminated by deduplication, with the id of
// the record that survived in its place.
type DroppedStore struct {
	Store       Store  `json:"store"`
	Reason      string `json:"reason"`
	KeptStoreID string `json:"kept_store_id"`
}

// DedupResult is the outcome of deduplicating a store table.
type DedupResult struct {
	// Canonical is the surviving store set, unique on store_id and on
	// normalized street address, sorted by store_id.
	Canonical []Store `json:"canonical"`

	// Dropped lists the eliminated records in input order.
	Dropped []DroppedStore `json:"dropped,omitempty"`
}

// StoreIDs returns the canonical store ids as a set.
func (r DedupResult) StoreIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r.Canonical))
	for _, s := range r.Canonical {
		ids[s.StoreID] = struct{}{}
	}
	return ids
}

// candidate tracks a surviving record during a dedup pass along with its
// original input position for tie-breaking.
type candidate struct {
	store Store
	pos   int
}

// supersedes reports whether the challenger should replace the incumbent:
// later recency wins, then smaller store_id, then earlier input position.
func supersedes(challenger, incumbent candidate) bool {
	ct, it := RecencyKey(challenger.store), RecencyKey(incumbent.store)
	if !ct.Equal(it) {
		return ct.After(it)
	}
	if challenger.store.StoreID != incumbent.store.StoreID {
		return challenger.store.StoreID < incumbent.store.StoreID
	}
	return challenger.pos < incumbent.pos
}

// Deduplicate collapses store records that denote the same physical location.
// It never fails: malformed or absent timestamps degrade to the zero recency
// key, and an empty input produces an empty result. Running Deduplicate on
// its own canonical output is a no-op.
func Deduplicate(stores []Store) DedupResult {
	var result DedupResult

	// Pass 1: unique on store_id.
	byID := make(map[string]candidate, len(stores))
	idOrder := make([]string, 0, len(stores))
	for i, s := range stores {
		ch := candidate{store: s, pos: i}
		inc, seen := byID[s.StoreID]
		if !seen {
			byID[s.StoreID] = ch
			idOrder = append(idOrder, s.StoreID)
			continue
		}
		if supersedes(ch, inc) {
			byID[s.StoreID] = ch
			inc, ch = ch, inc
		}
		result.Dropped = append(result.Dropped, DroppedStore{
			Store:       ch.store,
			Reason:      DroppedDuplicateID,
			KeptStoreID: inc.store.StoreID,
		})
	}

	// Pass 2: unique on normalized street address, over pass-1 survivors.
	byAddr := make(map[string]candidate, len(byID))
	addrOrder := make([]string, 0, len(byID))
	for _, id := range idOrder {
		ch := byID[id]
		key := AddressKey(ch.store)
		inc, seen := byAddr[key]
		if !seen {
			byAddr[key] = ch
			addrOrder = append(addrOrder, key)
			continue
		}
		if supersedes(ch, inc) {
			byAddr[key] = ch
			inc, ch = ch, inc
		}
		result.Dropped = append(result.Dropped, DroppedStore{
			Store:       ch.store,
			Reason:      DroppedDuplicateAddress,
			KeptStoreID: inc.store.StoreID,
		})
	}

	result.Canonical = make([]Store, 0, len(byAddr))
	for _, key := range addrOrder {
		result.Canonical = append(result.Canonical, byAddr[key].store)
	}
	sort.Slice(result.Canonical, func(i, j int) bool {
		return result.Canonical[i].StoreID < result.Canonical[j].StoreID
	})

	// Dropped entries from pass 1 and pass 2 interleave; restore input order.
	sortDroppedStable(result.Dropped)

	return result
}

// sortDroppedStable orders dropped records by store_id then address key so
// the diagnostic listing is deterministic regardless of map iteration.
func sortDroppedStable(dropped []DroppedStore) {
	sort.SliceStable(dropped, func(i, j int) bool {
		if dropped[i].Store.StoreID != dropped[j].Store.StoreID {
			return dropped[i].Store.StoreID < dropped[j].Store.StoreID
		}
		return AddressKey(dropped[i].Store) < AddressKey(dropped[j].Store)
	})
}
