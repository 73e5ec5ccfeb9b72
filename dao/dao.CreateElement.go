package dao

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// CreateElement persists a new element beneath the parent referenced by its
// ParentID. The key is validated against the reserved-character rules of the
// element's tree, the materialized path is derived from the parent and length
// checked before any write, and creation stamps are assigned. The passed
// element is updated in place with its assigned id and path data.
func (dao *DataAccessLayer) CreateElement(element *models.Element, user models.User) error {
	defer util.Time("CreateElement")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return err
	}
	err = createElementInTransaction(tx, element, user)
	if err != nil {
		dao.GetLogger().Error("error in createelement", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
		dao.publish("create", *element, user)
	}
	return err
}

func createElementInTransaction(tx *sqlx.Tx, element *models.Element, user models.User) error {
	if !element.Type.Valid() {
		return fmt.Errorf("createelement: unknown element type %q", element.Type)
	}
	if err := util.ValidateKey(element.Key, element.Type); err != nil {
		return err
	}
	if element.ParentID == 0 {
		element.ParentID = models.RootID
	}
	parent, err := getElementInTransaction(tx, element.ParentID, false)
	if err != nil {
		return fmt.Errorf("createelement: retrieving parent %d: %w", element.ParentID, err)
	}
	element.Path = childPathOf(parent)
	if len(element.Fullpath()) > models.MaxPathLength {
		return ErrPathTooLong
	}
	exists, err := keyExistsInTransaction(tx, element.ParentID, element.Key)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateKey
	}

	now := time.Now().Unix()
	element.CreationDate = now
	element.ModificationDate = now
	element.VersionCount = 1
	element.UserModification = user.ID
	if !element.UserOwner.Valid {
		element.UserOwner = models.ToNullInt64(user.ID)
	}

	stmt, err := tx.Preparex(`insert into element
        (parentId, path, elementKey, type, subtype, versionCount, locked,
         userOwner, userModification, creationDate, modificationDate)
        values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("createelement: preparing insert statement, %w", err)
	}
	defer stmt.Close()
	result, err := stmt.Exec(element.ParentID, element.Path, element.Key,
		element.Type, element.Subtype, element.VersionCount, element.Locked,
		element.UserOwner, element.UserModification, element.CreationDate,
		element.ModificationDate)
	if err != nil {
		return fmt.Errorf("createelement: executing insert statement, %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("createelement: retrieving assigned id, %w", err)
	}
	element.ID = id

	if !element.IsFolder() {
		if _, err := tx.Exec(`insert into version (elementId, versionCount, creationDate) values (?, ?, ?)`,
			element.ID, element.VersionCount, now); err != nil {
			return fmt.Errorf("createelement: recording initial version row, %w", err)
		}
	}
	return nil
}
