package mapping

import (
	"fmt"
	"time"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/protocol"
)

// MapElementToElement converts an internal Element model into an API
// exposable protocol Element.
func MapElementToElement(i *models.Element) protocol.Element {
	o := protocol.Element{}
	o.ID = i.ID
	o.ParentID = i.ParentID
	o.Path = i.Path
	o.Key = i.Key
	o.Fullpath = i.Fullpath()
	o.Type = string(i.Type)
	o.Subtype = i.Subtype
	o.Locked = string(i.Locked)
	o.VersionCount = i.VersionCount
	o.ModificationDate = time.Unix(i.ModificationDate, 0).UTC()
	o.CreationDate = time.Unix(i.CreationDate, 0).UTC()
	o.ModifiedBy = i.UserModification
	if i.UserOwner.Valid {
		o.OwnedBy = i.UserOwner.Int64
	}
	o.Properties = MapPropertiesToProperties(&i.Properties)
	return o
}

// MapElementsToElements converts a slice of internal Element models into a
// slice of protocol Elements.
func MapElementsToElements(i *[]models.Element) []protocol.Element {
	results := make([]protocol.Element, len(*i))
	for p, q := range *i {
		results[p] = MapElementToElement(&q)
	}
	return results
}

// MapPropertiesToProperties converts internal Property models into API
// exposable protocol Properties.
func MapPropertiesToProperties(i *[]models.Property) []protocol.Property {
	results := make([]protocol.Property, len(*i))
	for p, q := range *i {
		results[p] = protocol.Property{
			Name:        q.Name,
			Type:        q.Type,
			Data:        q.Data.String,
			Inheritable: q.Inheritable,
			Inherited:   q.Inherited,
		}
	}
	return results
}

// MapCapabilitiesToPermissions converts a resolved capability map into the
// string keyed permissions map carried on a protocol Element.
func MapCapabilitiesToPermissions(i map[models.Capability]bool) map[string]bool {
	results := make(map[string]bool, len(i))
	for c, v := range i {
		results[string(c)] = v
	}
	return results
}

// OverwriteElementWithCreateElementRequest fills in an Element model from a
// request to create one.
func OverwriteElementWithCreateElementRequest(o *models.Element, i *protocol.CreateElementRequest) error {
	t := models.ElementType(i.Type)
	if !t.Valid() {
		return fmt.Errorf("unknown element type %q", i.Type)
	}
	o.ParentID = i.ParentID
	o.Key = i.Key
	o.Type = t
	o.Subtype = i.Subtype
	o.Properties = make([]models.Property, len(i.Properties))
	for p, q := range i.Properties {
		o.Properties[p] = models.Property{
			Name:        q.Name,
			Type:        q.Type,
			Data:        models.ToNullString(q.Data),
			Inheritable: q.Inheritable,
		}
	}
	return nil
}
