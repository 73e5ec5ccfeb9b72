package models

// Element is the base entity stored in each of the three content trees.
// Concrete variants (folder, page, image, concrete data object, ...) are
// discriminated by Type and Subtype rather than separate tables.
type Element struct {
	CommonMeta
	ChangeTracking
	// Type names the tree this element belongs to.
	Type ElementType `db:"type"`
	// Subtype discriminates folders from concrete variants within a tree.
	Subtype string `db:"subtype"`
	// Locked carries the advisory lock state for this element.
	Locked LockState `db:"locked"`
	// UserOwner is the id of the creating user. Never overwritten once set.
	// Null until first assigned; the system user is id 0.
	UserOwner NullInt64 `db:"userOwner"`
	// UserModification is the id of the user responsible for the most recent
	// change, 0 when no authenticated user performed it.
	UserModification int64 `db:"userModification"`
	// CreationDate is a unix timestamp set once when the element is first
	// persisted.
	CreationDate int64 `db:"creationDate"`
	// Properties holds the name/value properties associated with this
	// element, including inherited entries when loaded with properties.
	Properties []Property `db:"-"`
}

// IsFolder indicates whether the element is a folder within its tree.
func (e Element) IsFolder() bool {
	return e.Subtype == SubtypeFolder
}

// IsRoot indicates whether the element is the tree root sentinel.
func (e Element) IsRoot() bool {
	return e.ID == RootID
}
