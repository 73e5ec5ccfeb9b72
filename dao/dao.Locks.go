package dao

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// SetLock assigns the advisory lock state on a single element.
func (dao *DataAccessLayer) SetLock(id int64, state models.LockState) error {
	defer util.Time("SetLock")()
	result, err := dao.MetadataDB.Exec(`update element set locked = ? where id = ?`, state, id)
	if err != nil {
		dao.GetLogger().Error("error in setlock", zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		// Either the element is missing or the state was unchanged; only the
		// former is an error.
		if _, gerr := dao.GetElement(id, false); gerr != nil {
			return gerr
		}
	}
	return err
}

// GetLock returns the advisory lock state carried on the element itself,
// without considering ancestors or descendants.
func (dao *DataAccessLayer) GetLock(id int64) (models.LockState, error) {
	defer util.Time("GetLock")()
	element, err := dao.GetElement(id, false)
	if err != nil {
		return models.LockNone, err
	}
	return element.Locked, nil
}

// IsLocked reports whether an element is effectively locked: it carries a
// lock itself, any descendant carries a lock, or an ancestor carries a
// propagating lock. A "self" lock on an ancestor does not propagate.
func (dao *DataAccessLayer) IsLocked(id int64) (bool, error) {
	defer util.Time("IsLocked")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return false, err
	}
	locked, err := isLockedInTransaction(tx, id)
	if err != nil {
		dao.GetLogger().Error("error in islocked", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return locked, err
}

func isLockedInTransaction(tx *sqlx.Tx, id int64) (bool, error) {
	element, err := getElementInTransaction(tx, id, false)
	if err != nil {
		return false, err
	}
	if element.Locked.Locked() {
		return true, nil
	}

	var descendantLocks int
	err = tx.Get(&descendantLocks, `select count(*) from element
        where path like ? escape '\\' and locked != ''`,
		likeEscape(strings.TrimSuffix(element.Fullpath(), "/")+"/")+"%")
	if err != nil {
		return false, err
	}
	if descendantLocks > 0 {
		return true, nil
	}

	chain, err := getAncestorChainInTransaction(tx, id)
	if err != nil {
		return false, err
	}
	if len(chain) <= 1 {
		return false, nil
	}
	query, args, err := sqlx.In(`select count(*) from element where id in (?) and locked = ?`,
		chain[1:], models.LockPropagate)
	if err != nil {
		return false, err
	}
	var ancestorLocks int
	if err := tx.Get(&ancestorLocks, tx.Rebind(query), args...); err != nil {
		return false, err
	}
	return ancestorLocks > 0, nil
}

// UnlockPropagate clears the lock state on an element and its entire
// subtree, returning the ids whose state was cleared so the caller can
// invalidate element-level caches.
func (dao *DataAccessLayer) UnlockPropagate(id int64) ([]int64, error) {
	defer util.Time("UnlockPropagate")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	affected, err := unlockPropagateInTransaction(tx, id)
	if err != nil {
		dao.GetLogger().Error("error in unlockpropagate", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return affected, err
}

func unlockPropagateInTransaction(tx *sqlx.Tx, id int64) ([]int64, error) {
	element, err := getElementInTransaction(tx, id, false)
	if err != nil {
		return nil, err
	}
	prefix := likeEscape(strings.TrimSuffix(element.Fullpath(), "/")+"/") + "%"
	var affected []int64
	err = tx.Select(&affected, `select id from element
        where (id = ? or path like ? escape '\\') and locked != '' order by id`, id, prefix)
	if err != nil {
		return nil, fmt.Errorf("unlockpropagate: selecting locked subtree, %w", err)
	}
	_, err = tx.Exec(`update element set locked = '' where id = ? or path like ? escape '\\'`, id, prefix)
	if err != nil {
		return nil, fmt.Errorf("unlockpropagate: clearing lock state, %w", err)
	}
	return affected, nil
}
