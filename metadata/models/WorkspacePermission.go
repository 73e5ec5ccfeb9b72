package models

// WorkspacePermission is a grant of capability flags rooted at an element
// subtree for a single user or role id. One row exists per (user-or-role,
// subtree root) pair.
type WorkspacePermission struct {
	// ID uniquely identifies this grant row.
	ID int64 `db:"id"`
	// CID is the element id rooting this grant.
	CID int64 `db:"cid"`
	// CPath is the denormalized full path of the rooting element at grant
	// time. It must be rewritten together with element renames and moves,
	// never left stale.
	CPath string `db:"cpath"`
	// UserID identifies the user or role the grant applies to.
	UserID int64 `db:"userId"`

	List       bool `db:"list"`
	View       bool `db:"view"`
	Save       bool `db:"save"`
	Publish    bool `db:"publish"`
	Unpublish  bool `db:"unpublish"`
	Delete     bool `db:"deleteElement"`
	Rename     bool `db:"renameElement"`
	Create     bool `db:"createElement"`
	Settings   bool `db:"settings"`
	Versions   bool `db:"versions"`
	Properties bool `db:"properties"`
}

// Granted returns the flag value for the named capability. The second return
// is false when the capability is not part of the closed set.
func (w WorkspacePermission) Granted(c Capability) (bool, bool) {
	switch c {
	case CapabilityList:
		return w.List, true
	case CapabilityView:
		return w.View, true
	case CapabilitySave:
		return w.Save, true
	case CapabilityPublish:
		return w.Publish, true
	case CapabilityUnpublish:
		return w.Unpublish, true
	case CapabilityDelete:
		return w.Delete, true
	case CapabilityRename:
		return w.Rename, true
	case CapabilityCreate:
		return w.Create, true
	case CapabilitySettings:
		return w.Settings, true
	case CapabilityVersions:
		return w.Versions, true
	case CapabilityProperties:
		return w.Properties, true
	}
	return false, false
}

// SetGranted assigns the flag value for the named capability.
func (w *WorkspacePermission) SetGranted(c Capability, v bool) {
	switch c {
	case CapabilityList:
		w.List = v
	case CapabilityView:
		w.View = v
	case CapabilitySave:
		w.Save = v
	case CapabilityPublish:
		w.Publish = v
	case CapabilityUnpublish:
		w.Unpublish = v
	case CapabilityDelete:
		w.Delete = v
	case CapabilityRename:
		w.Rename = v
	case CapabilityCreate:
		w.Create = v
	case CapabilitySettings:
		w.Settings = v
	case CapabilityVersions:
		w.Versions = v
	case CapabilityProperties:
		w.Properties = v
	}
}
