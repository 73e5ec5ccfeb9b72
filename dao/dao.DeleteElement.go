package dao

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// DeleteElement removes an element together with its entire subtree. Version
// history, properties and workspace grants rooted at any removed element go
// with it in the same transaction. Rows elsewhere that reference the removed
// subtree only through a cpath prefix are left behind; cleaning those is an
// explicit maintenance concern, not part of delete. The removed ids are
// returned for cache invalidation.
func (dao *DataAccessLayer) DeleteElement(id int64, user models.User) ([]int64, error) {
	defer util.Time("DeleteElement")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	element, removed, err := deleteElementInTransaction(tx, id, user)
	if err != nil {
		dao.GetLogger().Error("error in deleteelement", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
		for _, rid := range removed {
			dao.invalidateThumbnail(rid)
		}
		dao.publish("delete", element, user)
	}
	return removed, err
}

func deleteElementInTransaction(tx *sqlx.Tx, id int64, user models.User) (models.Element, []int64, error) {
	var element models.Element
	if id == models.RootID {
		return element, nil, ErrRootImmutable
	}
	element, err := getElementInTransaction(tx, id, false)
	if err != nil {
		return element, nil, err
	}
	descendants, err := subtreeIDsInTransaction(tx, element.Fullpath())
	if err != nil {
		return element, nil, err
	}
	removed := append([]int64{id}, descendants...)

	query, args, err := sqlx.In(`delete from version where elementId in (?)`, removed)
	if err != nil {
		return element, nil, err
	}
	if _, err := tx.Exec(tx.Rebind(query), args...); err != nil {
		return element, nil, fmt.Errorf("deleteelement: removing version rows, %w", err)
	}

	query, args, err = sqlx.In(`delete from property where cid in (?)`, removed)
	if err != nil {
		return element, nil, err
	}
	if _, err := tx.Exec(tx.Rebind(query), args...); err != nil {
		return element, nil, fmt.Errorf("deleteelement: removing property rows, %w", err)
	}

	query, args, err = sqlx.In(`delete from workspace where cid in (?)`, removed)
	if err != nil {
		return element, nil, err
	}
	if _, err := tx.Exec(tx.Rebind(query), args...); err != nil {
		return element, nil, fmt.Errorf("deleteelement: removing workspace rows, %w", err)
	}

	query, args, err = sqlx.In(`delete from asset_thumbnail where assetId in (?)`, removed)
	if err != nil {
		return element, nil, err
	}
	if _, err := tx.Exec(tx.Rebind(query), args...); err != nil {
		return element, nil, fmt.Errorf("deleteelement: removing thumbnail rows, %w", err)
	}

	query, args, err = sqlx.In(`delete from element where id in (?)`, removed)
	if err != nil {
		return element, nil, err
	}
	if _, err := tx.Exec(tx.Rebind(query), args...); err != nil {
		return element, nil, fmt.Errorf("deleteelement: removing element rows, %w", err)
	}
	return element, removed, nil
}
