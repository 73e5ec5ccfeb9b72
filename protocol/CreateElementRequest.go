package protocol

// CreateElementRequest is a subset of Element for use to disallow providing
// certain fields when creating elements.
type CreateElementRequest struct {
	// ParentID is the element that will contain the new element.
	ParentID int64 `json:"parentId"`
	// Key is the name of the new element within its parent.
	Key string `json:"key"`
	// Type is one of document, asset or object.
	Type string `json:"type"`
	// Subtype refines the type, e.g. folder.
	Subtype string `json:"subtype,omitempty"`
	// Properties to set on the new element.
	Properties []Property `json:"properties,omitempty"`
}

// MoveElementRequest is the request to change the location of an element in
// the tree.
type MoveElementRequest struct {
	// ID is the element being moved.
	ID int64 `json:"id"`
	// ParentID is the element that will contain the moved element.
	ParentID int64 `json:"parentId"`
}
