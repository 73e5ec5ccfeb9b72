package models

// Capability names a single permission flag carried on a workspace grant.
type Capability string

// The closed capability set. These are explicit columns on the workspace
// table, never discovered at runtime.
const (
	CapabilityList       Capability = "list"
	CapabilityView       Capability = "view"
	CapabilitySave       Capability = "save"
	CapabilityPublish    Capability = "publish"
	CapabilityUnpublish  Capability = "unpublish"
	CapabilityDelete     Capability = "delete"
	CapabilityRename     Capability = "rename"
	CapabilityCreate     Capability = "create"
	CapabilitySettings   Capability = "settings"
	CapabilityVersions   Capability = "versions"
	CapabilityProperties Capability = "properties"
)

// FolderCapabilities is the generic set shared by folders in every tree.
var FolderCapabilities = []Capability{
	CapabilityList, CapabilityView, CapabilitySave, CapabilityDelete,
	CapabilityRename, CapabilityCreate, CapabilitySettings,
	CapabilityVersions, CapabilityProperties,
}

// DocumentCapabilities apply to documents, which support publish state.
var DocumentCapabilities = []Capability{
	CapabilityList, CapabilityView, CapabilitySave, CapabilityPublish,
	CapabilityUnpublish, CapabilityDelete, CapabilityRename,
	CapabilityCreate, CapabilitySettings, CapabilityVersions,
	CapabilityProperties,
}

// AssetCapabilities apply to assets. Assets have no publish state.
var AssetCapabilities = []Capability{
	CapabilityList, CapabilityView, CapabilitySave, CapabilityDelete,
	CapabilityRename, CapabilityCreate, CapabilitySettings,
	CapabilityVersions, CapabilityProperties,
}

// ObjectCapabilities apply to data objects.
var ObjectCapabilities = []Capability{
	CapabilityList, CapabilityView, CapabilitySave, CapabilityPublish,
	CapabilityUnpublish, CapabilityDelete, CapabilityRename,
	CapabilityCreate, CapabilitySettings, CapabilityVersions,
	CapabilityProperties,
}

// CapabilitiesForElement returns the capability set applicable to the given
// element, taking the folder subtype into account.
func CapabilitiesForElement(e Element) []Capability {
	if e.Subtype == SubtypeFolder {
		return FolderCapabilities
	}
	switch e.Type {
	case TypeDocument:
		return DocumentCapabilities
	case TypeAsset:
		return AssetCapabilities
	case TypeObject:
		return ObjectCapabilities
	}
	return FolderCapabilities
}
