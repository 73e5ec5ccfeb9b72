package dao

import (
	"fmt"
	"strings"
	"time"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// Tree-consistency, version-counter and lock operations of the in-memory
// DAO. Semantics mirror the database-backed layer exactly; the mutex plays
// the role of the transaction.

// UpdateChildPaths rewrites descendant paths and denormalized cpath entries
// atomically under the store mutex.
func (m *MemoryDataAccessLayer) UpdateChildPaths(oldFullPath string, newFullPath string, user models.User) ([]int64, error) {
	defer util.Time("UpdateChildPaths")()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateChildPathsLocked(oldFullPath, newFullPath, user), nil
}

func (m *MemoryDataAccessLayer) updateChildPathsLocked(oldFullPath string, newFullPath string, user models.User) []int64 {
	oldPrefix := strings.TrimSuffix(oldFullPath, "/") + "/"
	newPrefix := strings.TrimSuffix(newFullPath, "/") + "/"

	affected := m.subtreeIDsLocked(oldFullPath)
	for _, id := range affected {
		e := m.elements[id]
		e.Path = newPrefix + strings.TrimPrefix(e.Path, oldPrefix)
		e.UserModification = user.ID
		// The modification timestamp stays untouched on purpose.
	}
	for _, g := range m.grants {
		if strings.HasPrefix(g.CPath, oldPrefix) {
			g.CPath = newPrefix + strings.TrimPrefix(g.CPath, oldPrefix)
		}
	}
	for _, p := range m.properties {
		if strings.HasPrefix(p.CPath, oldPrefix) {
			p.CPath = newPrefix + strings.TrimPrefix(p.CPath, oldPrefix)
		}
	}
	return affected
}

func (m *MemoryDataAccessLayer) rewriteExactPathLocked(cid int64, newFullPath string) {
	for _, g := range m.grants {
		if g.CID == cid {
			g.CPath = newFullPath
		}
	}
	for _, p := range m.properties {
		if p.CID == cid {
			p.CPath = newFullPath
		}
	}
}

// MoveElement reparents an element with cycle and length checks before any
// mutation.
func (m *MemoryDataAccessLayer) MoveElement(id int64, newParentID int64, user models.User) ([]int64, error) {
	defer util.Time("MoveElement")()
	m.mu.Lock()
	element, affected, err := m.moveElementLocked(id, newParentID, user)
	m.mu.Unlock()
	if err == nil {
		m.publish("move", element, user)
	}
	return affected, err
}

func (m *MemoryDataAccessLayer) moveElementLocked(id int64, newParentID int64, user models.User) (models.Element, []int64, error) {
	if id == models.RootID {
		return models.Element{}, nil, ErrRootImmutable
	}
	if id == newParentID {
		return models.Element{}, nil, ErrCyclicMove
	}
	element, ok := m.elements[id]
	if !ok {
		return models.Element{}, nil, ErrNoSuchElement
	}
	newParent, ok := m.elements[newParentID]
	if !ok {
		return models.Element{}, nil, fmt.Errorf("moveelement: retrieving target parent %d: %w", newParentID, ErrNoSuchElement)
	}
	descendant, err := m.isParentADescendantLocked(id, newParentID)
	if err != nil {
		return models.Element{}, nil, err
	}
	if descendant {
		return models.Element{}, nil, ErrCyclicMove
	}

	oldFullPath := element.Fullpath()
	newPath := childPathOf(*newParent)
	newFullPath := newPath + element.Key
	if len(newFullPath) > models.MaxPathLength {
		return models.Element{}, nil, ErrPathTooLong
	}
	if element.ParentID != newParentID && m.keyExistsLocked(newParentID, element.Key) {
		return models.Element{}, nil, ErrDuplicateKey
	}

	element.ParentID = newParentID
	element.Path = newPath
	m.updateModificationInfosLocked(element, user)
	m.rewriteExactPathLocked(id, newFullPath)
	affected := m.updateChildPathsLocked(oldFullPath, newFullPath, user)
	return *element, affected, nil
}

// RenameElement assigns a new key with validation, uniqueness and length
// checks before any mutation.
func (m *MemoryDataAccessLayer) RenameElement(id int64, newKey string, user models.User) ([]int64, error) {
	defer util.Time("RenameElement")()
	m.mu.Lock()
	element, affected, err := m.renameElementLocked(id, newKey, user)
	m.mu.Unlock()
	if err == nil {
		m.publish("rename", element, user)
	}
	return affected, err
}

func (m *MemoryDataAccessLayer) renameElementLocked(id int64, newKey string, user models.User) (models.Element, []int64, error) {
	if id == models.RootID {
		return models.Element{}, nil, ErrRootImmutable
	}
	element, ok := m.elements[id]
	if !ok {
		return models.Element{}, nil, ErrNoSuchElement
	}
	if err := util.ValidateKey(newKey, element.Type); err != nil {
		return models.Element{}, nil, err
	}
	if element.Key == newKey {
		return *element, nil, nil
	}

	oldFullPath := element.Fullpath()
	newFullPath := element.Path + newKey
	if len(newFullPath) > models.MaxPathLength {
		return models.Element{}, nil, ErrPathTooLong
	}
	if m.keyExistsLocked(element.ParentID, newKey) {
		return models.Element{}, nil, ErrDuplicateKey
	}

	element.Key = newKey
	m.updateModificationInfosLocked(element, user)
	m.rewriteExactPathLocked(id, newFullPath)
	affected := m.updateChildPathsLocked(oldFullPath, newFullPath, user)
	return *element, affected, nil
}

// IsParentADescendant reports whether the candidate parent lies within the
// element's subtree.
func (m *MemoryDataAccessLayer) IsParentADescendant(id int64, candidateParentID int64) (bool, error) {
	defer util.Time("IsParentADescendant")()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isParentADescendantLocked(id, candidateParentID)
}

func (m *MemoryDataAccessLayer) isParentADescendantLocked(id int64, candidateParentID int64) (bool, error) {
	current := candidateParentID
	for depth := 0; depth < maxTreeDepth; depth++ {
		if current == models.RootID || current == 0 {
			return false, nil
		}
		if current == id {
			return true, nil
		}
		e, ok := m.elements[current]
		if !ok {
			return false, ErrNoSuchElement
		}
		current = e.ParentID
	}
	return false, fmt.Errorf("ancestor walk exceeded %d levels, parent links corrupted", maxTreeDepth)
}

// DeleteElement removes the element and its subtree together with dependent
// rows keyed by the removed ids.
func (m *MemoryDataAccessLayer) DeleteElement(id int64, user models.User) ([]int64, error) {
	defer util.Time("DeleteElement")()
	m.mu.Lock()
	element, removed, err := m.deleteElementLocked(id)
	m.mu.Unlock()
	if err == nil {
		m.publish("delete", element, user)
	}
	return removed, err
}

func (m *MemoryDataAccessLayer) deleteElementLocked(id int64) (models.Element, []int64, error) {
	if id == models.RootID {
		return models.Element{}, nil, ErrRootImmutable
	}
	element, ok := m.elements[id]
	if !ok {
		return models.Element{}, nil, ErrNoSuchElement
	}
	removed := append([]int64{id}, m.subtreeIDsLocked(element.Fullpath())...)
	removedSet := toIDSet(removed)
	for _, rid := range removed {
		delete(m.elements, rid)
		delete(m.versions, rid)
		delete(m.thumbnails, rid)
	}
	for gid, g := range m.grants {
		if removedSet[g.CID] {
			delete(m.grants, gid)
		}
	}
	for pid, p := range m.properties {
		if removedSet[p.CID] {
			delete(m.properties, pid)
		}
	}
	return *element, removed, nil
}

// GetSaveCopyName derives a sibling-unique key for a copy.
func (m *MemoryDataAccessLayer) GetSaveCopyName(elementType models.ElementType, key string, parentID int64) (string, error) {
	defer util.Time("GetSaveCopyName")()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.keyExistsLocked(parentID, key) {
		return key, nil
	}
	base, ext := splitCopyKey(elementType, key)
	for n := 1; ; n++ {
		candidate := copyCandidate(base, ext, n)
		if !m.keyExistsLocked(parentID, candidate) {
			return candidate, nil
		}
	}
}

func (m *MemoryDataAccessLayer) updateModificationInfosLocked(element *models.Element, user models.User) {
	current := element.VersionCount
	if !element.IsFolder() {
		for _, vc := range m.versions[element.ID] {
			if vc > current {
				current = vc
			}
		}
	}
	next := current + 1
	if next > models.MaxVersionCounter {
		next = 1
	}
	now := time.Now().Unix()
	element.VersionCount = next
	element.ModificationDate = now
	element.UserModification = user.ID
	if element.CreationDate == 0 {
		element.CreationDate = now
	}
	if !element.UserOwner.Valid {
		element.UserOwner = models.ToNullInt64(user.ID)
	}
	if !element.IsFolder() {
		m.versions[element.ID] = append(m.versions[element.ID], next)
	}
}

// UpdateElement persists content-level changes with a full modification
// stamp. Last write wins; SaveElement is the conflict-checked variant.
func (m *MemoryDataAccessLayer) UpdateElement(element *models.Element, user models.User) error {
	defer util.Time("UpdateElement")()
	if element.ID == 0 {
		return ErrMissingID
	}
	m.mu.Lock()
	err := m.updateElementLocked(element, user)
	m.mu.Unlock()
	if err == nil {
		m.publish("update", *element, user)
	}
	return err
}

func (m *MemoryDataAccessLayer) updateElementLocked(element *models.Element, user models.User) error {
	stored, ok := m.elements[element.ID]
	if !ok {
		return ErrNoSuchElement
	}
	stored.Subtype = element.Subtype
	stored.Locked = element.Locked
	m.updateModificationInfosLocked(stored, user)
	*element = *stored
	return nil
}

// SaveElement refuses to overwrite newer stored data, returning
// ErrStaleVersion for the caller to resolve.
func (m *MemoryDataAccessLayer) SaveElement(element *models.Element, user models.User) error {
	defer util.Time("SaveElement")()
	if element.ID == 0 {
		return ErrMissingID
	}
	m.mu.Lock()
	err := m.saveElementLocked(element, user)
	m.mu.Unlock()
	if err == nil {
		m.publish("update", *element, user)
	}
	return err
}

func (m *MemoryDataAccessLayer) saveElementLocked(element *models.Element, user models.User) error {
	stored, ok := m.elements[element.ID]
	if !ok {
		return ErrNoSuchElement
	}
	if stored.VersionCount != element.VersionCount ||
		stored.ModificationDate != element.ModificationDate {
		return ErrStaleVersion
	}
	return m.updateElementLocked(element, user)
}

// MaxVersionCount returns the highest recorded history counter.
func (m *MemoryDataAccessLayer) MaxVersionCount(elementID int64) (int64, error) {
	defer util.Time("MaxVersionCount")()
	m.mu.Lock()
	defer m.mu.Unlock()
	var historyMax int64
	for _, vc := range m.versions[elementID] {
		if vc > historyMax {
			historyMax = vc
		}
	}
	return historyMax, nil
}

// IsBasedOnLatestData compares the in-memory pair against the stored pair.
func (m *MemoryDataAccessLayer) IsBasedOnLatestData(element models.Element) (bool, error) {
	defer util.Time("IsBasedOnLatestData")()
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.elements[element.ID]
	if !ok {
		return false, ErrNoSuchElement
	}
	return stored.VersionCount == element.VersionCount &&
		stored.ModificationDate == element.ModificationDate, nil
}

// SetLock assigns the lock state on an element.
func (m *MemoryDataAccessLayer) SetLock(id int64, state models.LockState) error {
	defer util.Time("SetLock")()
	m.mu.Lock()
	defer m.mu.Unlock()
	element, ok := m.elements[id]
	if !ok {
		return ErrNoSuchElement
	}
	element.Locked = state
	return nil
}

// GetLock returns the element's own lock state.
func (m *MemoryDataAccessLayer) GetLock(id int64) (models.LockState, error) {
	defer util.Time("GetLock")()
	m.mu.Lock()
	defer m.mu.Unlock()
	element, ok := m.elements[id]
	if !ok {
		return models.LockNone, ErrNoSuchElement
	}
	return element.Locked, nil
}

// IsLocked reports effective lock state considering the element, its
// descendants and propagating ancestors.
func (m *MemoryDataAccessLayer) IsLocked(id int64) (bool, error) {
	defer util.Time("IsLocked")()
	m.mu.Lock()
	defer m.mu.Unlock()
	element, ok := m.elements[id]
	if !ok {
		return false, ErrNoSuchElement
	}
	if element.Locked.Locked() {
		return true, nil
	}
	for _, did := range m.subtreeIDsLocked(element.Fullpath()) {
		if m.elements[did].Locked.Locked() {
			return true, nil
		}
	}
	chain, err := m.ancestorChainLocked(id)
	if err != nil {
		return false, err
	}
	for _, aid := range chain[1:] {
		if ancestor, ok := m.elements[aid]; ok && ancestor.Locked == models.LockPropagate {
			return true, nil
		}
	}
	return false, nil
}

// UnlockPropagate clears lock state across the element's subtree.
func (m *MemoryDataAccessLayer) UnlockPropagate(id int64) ([]int64, error) {
	defer util.Time("UnlockPropagate")()
	m.mu.Lock()
	defer m.mu.Unlock()
	element, ok := m.elements[id]
	if !ok {
		return nil, ErrNoSuchElement
	}
	var affected []int64
	if element.Locked.Locked() {
		element.Locked = models.LockNone
		affected = append(affected, id)
	}
	for _, did := range m.subtreeIDsLocked(element.Fullpath()) {
		if m.elements[did].Locked.Locked() {
			m.elements[did].Locked = models.LockNone
			affected = append(affected, did)
		}
	}
	return affected, nil
}

// GetThumbnailStatus returns the recorded thumbnail status, "none" when
// absent.
func (m *MemoryDataAccessLayer) GetThumbnailStatus(assetID int64) (string, error) {
	defer util.Time("GetThumbnailStatus")()
	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.thumbnails[assetID]; ok {
		return status, nil
	}
	return "none", nil
}

// SetThumbnailStatus records the thumbnail status for an asset.
func (m *MemoryDataAccessLayer) SetThumbnailStatus(assetID int64, status string) error {
	defer util.Time("SetThumbnailStatus")()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thumbnails[assetID] = status
	return nil
}

// GetDBState reports a synthetic state for the in-memory store.
func (m *MemoryDataAccessLayer) GetDBState() (models.DBState, error) {
	defer util.Time("GetDBState")()
	return models.DBState{
		SchemaVersion: SchemaVersion,
		Identifier:    "memory",
	}, nil
}
