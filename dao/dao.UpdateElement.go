package dao

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// UpdateElement persists content-level changes to an element: subtype and
// lock state, plus a full modification stamp with a version counter
// increment. Conflict detection is the caller's concern; this operation is
// last write wins at the row level. The passed element is refreshed in place
// with its newly assigned counter and stamps. Use SaveElement for the
// conflict-checked variant.
func (dao *DataAccessLayer) UpdateElement(element *models.Element, user models.User) error {
	defer util.Time("UpdateElement")()
	if element.ID == 0 {
		return ErrMissingID
	}
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return err
	}
	err = updateElementInTransaction(tx, element, user)
	if err != nil {
		dao.GetLogger().Error("error in updateelement", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
		dao.invalidateThumbnail(element.ID)
		dao.publish("update", *element, user)
	}
	return err
}

func updateElementInTransaction(tx *sqlx.Tx, element *models.Element, user models.User) error {
	stored, err := getElementInTransaction(tx, element.ID, false)
	if err != nil {
		return err
	}
	// Location data is never written here; moves and renames go through
	// their own pipeline so descendant paths cannot silently drift.
	element.ParentID = stored.ParentID
	element.Path = stored.Path
	element.Key = stored.Key
	element.CreationDate = stored.CreationDate
	element.UserOwner = stored.UserOwner

	if err := updateModificationInfosInTransaction(tx, element, user); err != nil {
		return err
	}
	_, err = tx.Exec(`update element set subtype = ?, locked = ? where id = ?`,
		element.Subtype, element.Locked, element.ID)
	return err
}

// SaveElement is the conflict-checked save. When the element's in-memory
// version counter and modification date no longer match the stored pair the
// save is refused with ErrStaleVersion, leaving the caller to merge, prompt
// or force via UpdateElement.
func (dao *DataAccessLayer) SaveElement(element *models.Element, user models.User) error {
	defer util.Time("SaveElement")()
	if element.ID == 0 {
		return ErrMissingID
	}
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return err
	}
	err = saveElementInTransaction(tx, element, user)
	if err != nil {
		if err != ErrStaleVersion {
			dao.GetLogger().Error("error in saveelement", zap.Error(err))
		}
		tx.Rollback()
	} else {
		tx.Commit()
		dao.invalidateThumbnail(element.ID)
		dao.publish("update", *element, user)
	}
	return err
}

func saveElementInTransaction(tx *sqlx.Tx, element *models.Element, user models.User) error {
	stored, err := getElementInTransaction(tx, element.ID, false)
	if err != nil {
		return err
	}
	if stored.VersionCount != element.VersionCount ||
		stored.ModificationDate != element.ModificationDate {
		return ErrStaleVersion
	}
	return updateElementInTransaction(tx, element, user)
}
