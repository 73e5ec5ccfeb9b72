package models

// Property is a named value attached to an element. Properties flagged
// inheritable are visible on descendants unless a descendant owns a property
// of the same name.
type Property struct {
	// ID uniquely identifies this property row.
	ID int64 `db:"id"`
	// CID is the id of the owning element.
	CID int64 `db:"cid"`
	// CPath is the denormalized full path of the owning element, kept in
	// sync with renames and moves.
	CPath string `db:"cpath"`
	// Name is the property name, unique per owning element.
	Name string `db:"name"`
	// Type describes the value encoding (text, bool, document, ...).
	Type string `db:"type"`
	// Data is the serialized property value.
	Data NullString `db:"data"`
	// Inheritable marks the property as visible to descendant elements.
	Inheritable bool `db:"inheritable"`
	// Inherited is computed at load time and never stored; it is true when
	// the property was contributed by an ancestor rather than owned.
	Inherited bool `db:"-"`
}
