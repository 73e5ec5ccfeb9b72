package dao

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// RenameElement assigns a new key to an element. The key is validated per
// element tree, sibling uniqueness and path length are checked before any
// write, and descendant paths plus denormalized cpath rows are rewritten in
// the same transaction through the shared prefix-rewrite.
func (dao *DataAccessLayer) RenameElement(id int64, newKey string, user models.User) ([]int64, error) {
	defer util.Time("RenameElement")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	element, affected, err := renameElementInTransaction(tx, id, newKey, user)
	if err != nil {
		dao.GetLogger().Error("error in renameelement", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
		dao.invalidateThumbnail(id)
		for _, aid := range affected {
			dao.invalidateThumbnail(aid)
		}
		dao.publish("rename", element, user)
	}
	return affected, err
}

func renameElementInTransaction(tx *sqlx.Tx, id int64, newKey string, user models.User) (models.Element, []int64, error) {
	var element models.Element
	if id == models.RootID {
		return element, nil, ErrRootImmutable
	}
	element, err := getElementInTransaction(tx, id, false)
	if err != nil {
		return element, nil, err
	}
	if err := util.ValidateKey(newKey, element.Type); err != nil {
		return element, nil, err
	}
	if element.Key == newKey {
		return element, nil, nil
	}

	oldFullPath := element.Fullpath()
	newFullPath := element.Path + newKey
	if len(newFullPath) > models.MaxPathLength {
		return element, nil, ErrPathTooLong
	}
	exists, err := keyExistsInTransaction(tx, element.ParentID, newKey)
	if err != nil {
		return element, nil, err
	}
	if exists {
		return element, nil, ErrDuplicateKey
	}

	element.Key = newKey
	if err := updateModificationInfosInTransaction(tx, &element, user); err != nil {
		return element, nil, err
	}
	if _, err := tx.Exec(`update element set elementKey = ? where id = ?`,
		element.Key, element.ID); err != nil {
		return element, nil, fmt.Errorf("renameelement: updating element row, %w", err)
	}

	if err := rewriteExactPathInTransaction(tx, element.ID, newFullPath); err != nil {
		return element, nil, fmt.Errorf("renameelement: rewriting own cpath rows, %w", err)
	}
	affected, err := updateChildPathsInTransaction(tx, oldFullPath, newFullPath, user)
	if err != nil {
		return element, nil, err
	}
	return element, affected, nil
}
