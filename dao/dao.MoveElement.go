package dao

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// MoveElement reparents an element. Cyclic moves and over-long resulting
// paths are rejected before any write. The element itself receives a full
// modification stamp including a version counter increment; descendants and
// denormalized cpath rows are rewritten through the shared prefix-rewrite in
// the same transaction. Affected descendant ids are returned for cache
// invalidation by the caller.
func (dao *DataAccessLayer) MoveElement(id int64, newParentID int64, user models.User) ([]int64, error) {
	defer util.Time("MoveElement")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	element, affected, err := moveElementInTransaction(tx, id, newParentID, user)
	if err != nil {
		dao.GetLogger().Error("error in moveelement", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
		dao.invalidateThumbnail(id)
		for _, aid := range affected {
			dao.invalidateThumbnail(aid)
		}
		dao.publish("move", element, user)
	}
	return affected, err
}

func moveElementInTransaction(tx *sqlx.Tx, id int64, newParentID int64, user models.User) (models.Element, []int64, error) {
	var element models.Element
	if id == models.RootID {
		return element, nil, ErrRootImmutable
	}
	if id == newParentID {
		return element, nil, ErrCyclicMove
	}
	element, err := getElementInTransaction(tx, id, false)
	if err != nil {
		return element, nil, err
	}
	newParent, err := getElementInTransaction(tx, newParentID, false)
	if err != nil {
		return element, nil, fmt.Errorf("moveelement: retrieving target parent %d: %w", newParentID, err)
	}
	descendant, err := isParentADescendantInTransaction(tx, id, newParentID)
	if err != nil {
		return element, nil, err
	}
	if descendant {
		return element, nil, ErrCyclicMove
	}

	oldFullPath := element.Fullpath()
	newPath := childPathOf(newParent)
	newFullPath := newPath + element.Key
	if len(newFullPath) > models.MaxPathLength {
		return element, nil, ErrPathTooLong
	}
	if element.ParentID != newParentID {
		exists, err := keyExistsInTransaction(tx, newParentID, element.Key)
		if err != nil {
			return element, nil, err
		}
		if exists {
			return element, nil, ErrDuplicateKey
		}
	}

	element.ParentID = newParentID
	element.Path = newPath
	if err := updateModificationInfosInTransaction(tx, &element, user); err != nil {
		return element, nil, err
	}
	if _, err := tx.Exec(`update element set parentId = ?, path = ? where id = ?`,
		element.ParentID, element.Path, element.ID); err != nil {
		return element, nil, fmt.Errorf("moveelement: updating element row, %w", err)
	}

	if err := rewriteExactPathInTransaction(tx, element.ID, newFullPath); err != nil {
		return element, nil, fmt.Errorf("moveelement: rewriting own cpath rows, %w", err)
	}
	affected, err := updateChildPathsInTransaction(tx, oldFullPath, newFullPath, user)
	if err != nil {
		return element, nil, err
	}
	return element, affected, nil
}
