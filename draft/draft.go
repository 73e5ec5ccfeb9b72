// Package draft provides the keyed transient store holding edited-but-unsaved
// copies of elements, so concurrent browser tabs do not clobber each other.
// The engine consumes the store through get/set/remove semantics plus a
// companion use-for-save flag that is honored exactly once.
package draft

import (
	"context"

	"github.com/elementdrive/element-drive-server/metadata/models"
)

// Draft is an edited-but-unsaved copy of an element held per editing session.
type Draft struct {
	// Key is the store key the draft was saved under.
	Key string `json:"key"`
	// ElementID identifies the element the draft belongs to.
	ElementID int64 `json:"elementId"`
	// ElementType names the tree of the drafted element.
	ElementType models.ElementType `json:"elementType"`
	// Payload is the serialized edited element state.
	Payload []byte `json:"payload"`
	// ModificationDate and VersionCount snapshot the stored pair the draft
	// was based on, for conflict detection at save time.
	ModificationDate int64 `json:"modificationDate"`
	VersionCount     int64 `json:"versionCount"`
}

// useForSaveSuffix marks the companion flag key for a draft.
const useForSaveSuffix = "_useForSave"

// Store is the contract the engine requires from a draft store
// implementation.
type Store interface {
	// Get returns the draft stored under key, or nil when absent.
	Get(ctx context.Context, key string) (*Draft, error)
	// Set stores a draft under key, replacing a previous one.
	Set(ctx context.Context, key string, draft *Draft) error
	// Remove deletes the draft and its use-for-save flag.
	Remove(ctx context.Context, key string) error
	// MarkUseForSave flags the draft under key to be used for exactly the
	// next save.
	MarkUseForSave(ctx context.Context, key string) error
	// ConsumeForSave clears the use-for-save flag and returns the draft if
	// the flag was set. The clear happens regardless of whether the draft
	// still exists: a flagged but missing draft yields (nil, false, nil),
	// never an error, and a second call falls through to the persisted
	// element.
	ConsumeForSave(ctx context.Context, key string) (*Draft, bool, error)
}
