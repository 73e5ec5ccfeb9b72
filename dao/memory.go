package dao

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/events"
	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// MemoryDataAccessLayer is a complete in-memory DAO implementation with the
// same semantics as the database-backed DataAccessLayer. It backs tests and
// embedded use where no database is available.
type MemoryDataAccessLayer struct {
	mu         sync.Mutex
	elements   map[int64]*models.Element
	grants     map[int64]*models.WorkspacePermission
	properties map[int64]*models.Property
	versions   map[int64][]int64
	thumbnails map[int64]string
	nextID     int64

	Logger    *zap.Logger
	Publisher events.Publisher
}

// NewMemoryDataAccessLayer constructs an empty in-memory store seeded with
// the root sentinel element.
func NewMemoryDataAccessLayer() *MemoryDataAccessLayer {
	m := &MemoryDataAccessLayer{
		elements:   make(map[int64]*models.Element),
		grants:     make(map[int64]*models.WorkspacePermission),
		properties: make(map[int64]*models.Property),
		versions:   make(map[int64][]int64),
		thumbnails: make(map[int64]string),
		nextID:     models.RootID + 1,
		Logger:     zap.NewNop(),
		Publisher:  events.NullPublisher{},
	}
	root := &models.Element{}
	root.ID = models.RootID
	root.Path = "/"
	root.Type = models.TypeDocument
	root.Subtype = models.SubtypeFolder
	m.elements[models.RootID] = root
	return m
}

func memoryCompileCheck() DAO {
	return &MemoryDataAccessLayer{}
}

// GetLogger is a logger for this store.
func (m *MemoryDataAccessLayer) GetLogger() *zap.Logger {
	return m.Logger
}

func (m *MemoryDataAccessLayer) publish(action string, element models.Element, user models.User) {
	if m.Publisher == nil {
		return
	}
	m.Publisher.Publish(events.ElementEvent{
		Action:       action,
		ElementID:    element.ID,
		ElementType:  string(element.Type),
		Path:         element.Fullpath(),
		VersionCount: element.VersionCount,
		ModifiedBy:   user.ID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Success:      true,
	})
}

func (m *MemoryDataAccessLayer) assign() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// ancestorChainLocked returns ids leaf to root including the element itself
// and the root sentinel. Callers hold the mutex.
func (m *MemoryDataAccessLayer) ancestorChainLocked(id int64) ([]int64, error) {
	element, ok := m.elements[id]
	if !ok {
		return nil, ErrNoSuchElement
	}
	chain := []int64{id}
	if id == models.RootID {
		return chain, nil
	}
	current := element
	for depth := 0; depth < maxTreeDepth; depth++ {
		if current.ParentID == 0 || current.ParentID == models.RootID {
			return append(chain, models.RootID), nil
		}
		parent, ok := m.elements[current.ParentID]
		if !ok {
			return nil, ErrNoSuchElement
		}
		chain = append(chain, parent.ID)
		current = parent
	}
	return nil, fmt.Errorf("ancestor walk exceeded %d levels, parent links corrupted", maxTreeDepth)
}

func (m *MemoryDataAccessLayer) subtreeIDsLocked(fullPath string) []int64 {
	prefix := strings.TrimSuffix(fullPath, "/") + "/"
	var ids []int64
	for id, e := range m.elements {
		if strings.HasPrefix(e.Path, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MemoryDataAccessLayer) keyExistsLocked(parentID int64, key string) bool {
	for _, e := range m.elements {
		if e.ParentID == parentID && e.Key == key && e.ID != models.RootID {
			return true
		}
	}
	return false
}

// CreateElement persists a new element beneath its ParentID with the same
// validation pipeline as the database-backed layer.
func (m *MemoryDataAccessLayer) CreateElement(element *models.Element, user models.User) error {
	defer util.Time("CreateElement")()
	m.mu.Lock()
	err := m.createElementLocked(element, user)
	m.mu.Unlock()
	if err == nil {
		m.publish("create", *element, user)
	}
	return err
}

func (m *MemoryDataAccessLayer) createElementLocked(element *models.Element, user models.User) error {
	if !element.Type.Valid() {
		return fmt.Errorf("createelement: unknown element type %q", element.Type)
	}
	if err := util.ValidateKey(element.Key, element.Type); err != nil {
		return err
	}
	if element.ParentID == 0 {
		element.ParentID = models.RootID
	}
	parent, ok := m.elements[element.ParentID]
	if !ok {
		return fmt.Errorf("createelement: retrieving parent %d: %w", element.ParentID, ErrNoSuchElement)
	}
	element.Path = childPathOf(*parent)
	if len(element.Fullpath()) > models.MaxPathLength {
		return ErrPathTooLong
	}
	if m.keyExistsLocked(element.ParentID, element.Key) {
		return ErrDuplicateKey
	}

	now := time.Now().Unix()
	element.ID = m.assign()
	element.CreationDate = now
	element.ModificationDate = now
	element.VersionCount = 1
	element.UserModification = user.ID
	if !element.UserOwner.Valid {
		element.UserOwner = models.ToNullInt64(user.ID)
	}
	stored := *element
	stored.Properties = nil
	m.elements[element.ID] = &stored
	if !element.IsFolder() {
		m.versions[element.ID] = append(m.versions[element.ID], element.VersionCount)
	}
	return nil
}

// GetElement retrieves a single element, optionally with inherited
// properties resolved.
func (m *MemoryDataAccessLayer) GetElement(id int64, loadProperties bool) (models.Element, error) {
	defer util.Time("GetElement")()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getElementLocked(id, loadProperties)
}

func (m *MemoryDataAccessLayer) getElementLocked(id int64, loadProperties bool) (models.Element, error) {
	stored, ok := m.elements[id]
	if !ok {
		return models.Element{}, ErrNoSuchElement
	}
	element := *stored
	if loadProperties {
		chain, err := m.ancestorChainLocked(id)
		if err != nil {
			return element, err
		}
		seen := make(map[string]bool)
		var properties []models.Property
		for i, cid := range chain {
			var rows []models.Property
			for _, p := range m.properties {
				if p.CID == cid && (i == 0 || p.Inheritable) {
					rows = append(rows, *p)
				}
			}
			sort.Slice(rows, func(a, b int) bool { return rows[a].Name < rows[b].Name })
			for _, row := range rows {
				if seen[row.Name] {
					continue
				}
				seen[row.Name] = true
				row.Inherited = i > 0
				properties = append(properties, row)
			}
		}
		element.Properties = properties
	}
	return element, nil
}

// GetAncestorChain returns ids leaf to root, element first, root sentinel
// last.
func (m *MemoryDataAccessLayer) GetAncestorChain(id int64) ([]int64, error) {
	defer util.Time("GetAncestorChain")()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ancestorChainLocked(id)
}

// GetChildElements retrieves direct children ordered by key.
func (m *MemoryDataAccessLayer) GetChildElements(parentID int64, pagingRequest PagingRequest) ([]models.Element, error) {
	defer util.Time("GetChildElements")()
	m.mu.Lock()
	defer m.mu.Unlock()
	var children []models.Element
	for _, e := range m.elements {
		if e.ParentID == parentID && e.ID != models.RootID {
			children = append(children, *e)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Key < children[j].Key })
	offset := GetOffset(pagingRequest.PageNumber, pagingRequest.PageSize)
	limit := GetLimit(pagingRequest.PageNumber, pagingRequest.PageSize)
	if offset >= len(children) {
		return nil, nil
	}
	end := offset + limit
	if end > len(children) {
		end = len(children)
	}
	return children[offset:end], nil
}

// GetWorkspaceGrants returns unordered grant rows matching the cid and user
// id sets.
func (m *MemoryDataAccessLayer) GetWorkspaceGrants(cids []int64, userIDs []int64) ([]models.WorkspacePermission, error) {
	defer util.Time("GetWorkspaceGrants")()
	m.mu.Lock()
	defer m.mu.Unlock()
	cidSet := toIDSet(cids)
	userSet := toIDSet(userIDs)
	var grants []models.WorkspacePermission
	for _, g := range m.grants {
		if cidSet[g.CID] && userSet[g.UserID] {
			grants = append(grants, *g)
		}
	}
	return grants, nil
}

// GetDescendantGrants returns grant rows rooted strictly beneath the given
// full path for the given user ids.
func (m *MemoryDataAccessLayer) GetDescendantGrants(pathPrefix string, userIDs []int64) ([]models.WorkspacePermission, error) {
	defer util.Time("GetDescendantGrants")()
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pathPrefix, "/") + "/"
	userSet := toIDSet(userIDs)
	var grants []models.WorkspacePermission
	for _, g := range m.grants {
		if userSet[g.UserID] && strings.HasPrefix(g.CPath, prefix) {
			grants = append(grants, *g)
		}
	}
	return grants, nil
}

func toIDSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// AddWorkspaceGrant stores a grant rooted at its CID, assigning cpath from
// the current element state.
func (m *MemoryDataAccessLayer) AddWorkspaceGrant(grant *models.WorkspacePermission) error {
	defer util.Time("AddWorkspaceGrant")()
	m.mu.Lock()
	defer m.mu.Unlock()
	if grant.CID == 0 {
		return ErrMissingID
	}
	element, ok := m.elements[grant.CID]
	if !ok {
		return fmt.Errorf("addworkspacegrant: retrieving element %d: %w", grant.CID, ErrNoSuchElement)
	}
	grant.CPath = element.Fullpath()
	grant.ID = m.assign()
	stored := *grant
	m.grants[grant.ID] = &stored
	return nil
}

// DeleteWorkspaceGrant removes a grant row by id.
func (m *MemoryDataAccessLayer) DeleteWorkspaceGrant(id int64) error {
	defer util.Time("DeleteWorkspaceGrant")()
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, id)
	return nil
}

// GetGrantsForElement returns grants rooted exactly at the element.
func (m *MemoryDataAccessLayer) GetGrantsForElement(cid int64) ([]models.WorkspacePermission, error) {
	defer util.Time("GetGrantsForElement")()
	m.mu.Lock()
	defer m.mu.Unlock()
	var grants []models.WorkspacePermission
	for _, g := range m.grants {
		if g.CID == cid {
			grants = append(grants, *g)
		}
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].UserID < grants[j].UserID })
	return grants, nil
}

// AddPropertyToElement stores a property owned by its CID, replacing a
// previous property of the same name.
func (m *MemoryDataAccessLayer) AddPropertyToElement(property *models.Property) error {
	defer util.Time("AddPropertyToElement")()
	m.mu.Lock()
	defer m.mu.Unlock()
	if property.CID == 0 {
		return ErrMissingID
	}
	if property.Name == "" {
		return fmt.Errorf("addpropertytoelement: property name must not be empty")
	}
	element, ok := m.elements[property.CID]
	if !ok {
		return fmt.Errorf("addpropertytoelement: retrieving element %d: %w", property.CID, ErrNoSuchElement)
	}
	property.CPath = element.Fullpath()
	for id, p := range m.properties {
		if p.CID == property.CID && p.Name == property.Name {
			delete(m.properties, id)
		}
	}
	property.ID = m.assign()
	stored := *property
	stored.Inherited = false
	m.properties[property.ID] = &stored
	return nil
}

// GetPropertiesForElement returns the properties owned by the element.
func (m *MemoryDataAccessLayer) GetPropertiesForElement(id int64) ([]models.Property, error) {
	defer util.Time("GetPropertiesForElement")()
	m.mu.Lock()
	defer m.mu.Unlock()
	var properties []models.Property
	for _, p := range m.properties {
		if p.CID == id {
			properties = append(properties, *p)
		}
	}
	sort.Slice(properties, func(i, j int) bool { return properties[i].Name < properties[j].Name })
	return properties, nil
}

// DeleteProperty removes a property row by id.
func (m *MemoryDataAccessLayer) DeleteProperty(id int64) error {
	defer util.Time("DeleteProperty")()
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.properties, id)
	return nil
}
