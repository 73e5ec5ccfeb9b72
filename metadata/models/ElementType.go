package models

// ElementType discriminates the three content trees managed by the system.
type ElementType string

// Element tree types.
const (
	TypeDocument ElementType = "document"
	TypeAsset    ElementType = "asset"
	TypeObject   ElementType = "object"
)

// SubtypeFolder is the subtype shared by folder elements in every tree. Folders
// never carry type-specific capability columns beyond the generic set.
const SubtypeFolder = "folder"

// Valid indicates whether t names a known element tree.
func (t ElementType) Valid() bool {
	switch t {
	case TypeDocument, TypeAsset, TypeObject:
		return true
	}
	return false
}
