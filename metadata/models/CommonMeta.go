package models

// CommonMeta is a nestable structure defining the attributes common to all
// elements regardless of tree type.
type CommonMeta struct {
	// ID uniquely identifies the element. Immutable after creation.
	ID int64 `db:"id"`
	// ParentID references the owning element. The root element carries the
	// sentinel RootID as its own id and no meaningful parent.
	ParentID int64 `db:"parentId"`
	// Path is the full materialized path of the parent, including a trailing
	// slash. The root element carries "/" with an empty key.
	Path string `db:"path"`
	// Key is the last path segment. Fullpath() is Path + Key.
	Key string `db:"elementKey"`
}

// RootID is the id of the tree root sentinel. It participates in ancestor
// chains but never matches real workspace grants.
const RootID int64 = 1

// Fullpath returns the complete materialized path of the element.
func (m CommonMeta) Fullpath() string {
	return m.Path + m.Key
}

// ChangeTracking is a nestable structure defining the attributes tracked for
// elements that record the number of changes, to facilitate avoidance of
// blind overwrites by concurrent editors.
type ChangeTracking struct {
	// VersionCount indicates the number of times the element has been
	// modified. Monotonically increasing per element, wrapping to 1 above
	// MaxVersionCounter.
	VersionCount int64 `db:"versionCount"`
	// ModificationDate is a unix timestamp refreshed on every structural or
	// content update.
	ModificationDate int64 `db:"modificationDate"`
}

// MaxVersionCounter is the largest version counter value assigned before the
// counter wraps back around to 1.
const MaxVersionCounter int64 = 4200000000

// MaxPathLength is the longest permitted full materialized path.
const MaxPathLength = 765
