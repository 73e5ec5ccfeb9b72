package protocol

import "time"

// Element is a nestable structure defining the base attributes for an
// element in the tree, suitable for exposing to API consumers.
type Element struct {
	// ID is the unique identifier for this element.
	ID int64 `json:"id"`
	// ParentID references another Element by its ID indicating which element
	// contains this one. The root element has no parent.
	ParentID int64 `json:"parentId,omitempty"`
	// Path is the full path of the parent element, with a trailing slash.
	Path string `json:"path"`
	// Key is the name of this element within its parent.
	Key string `json:"key"`
	// Fullpath is the concatenation of path and key.
	Fullpath string `json:"fullpath"`
	// Type is one of document, asset or object.
	Type string `json:"type"`
	// Subtype refines the type, e.g. folder.
	Subtype string `json:"subtype,omitempty"`
	// Locked carries the lock state of this element, if any.
	Locked string `json:"locked,omitempty"`
	// VersionCount indicates the number of times the element has been modified.
	// API calls performing checked saves must provide the versionCount and
	// modificationDate to be verified against the existing values on record to
	// prevent accidental overwrites.
	VersionCount int64 `json:"versionCount"`
	// ModificationDate is the timestamp of when the element was last modified.
	ModificationDate time.Time `json:"modificationDate"`
	// CreationDate is the timestamp of when the element was created.
	CreationDate time.Time `json:"creationDate"`
	// ModifiedBy is the user that last modified this element.
	ModifiedBy int64 `json:"modifiedBy"`
	// OwnedBy is the user that owns this element, if any.
	OwnedBy int64 `json:"ownedBy,omitempty"`
	// Properties is an array of custom properties on the element.
	Properties []Property `json:"properties,omitempty"`
	// Permissions lists the capabilities the calling user holds on this
	// element, when requested.
	Permissions map[string]bool `json:"permissions,omitempty"`
}
