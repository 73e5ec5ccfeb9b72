package dao

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// AddWorkspaceGrant persists a workspace grant rooted at the element
// referenced by its CID. The denormalized cpath is assigned from the current
// state of the element, never trusted from the caller.
func (dao *DataAccessLayer) AddWorkspaceGrant(grant *models.WorkspacePermission) error {
	defer util.Time("AddWorkspaceGrant")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return err
	}
	err = addWorkspaceGrantInTransaction(tx, grant)
	if err != nil {
		dao.GetLogger().Error("error in addworkspacegrant", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return err
}

func addWorkspaceGrantInTransaction(tx *sqlx.Tx, grant *models.WorkspacePermission) error {
	if grant.CID == 0 {
		return ErrMissingID
	}
	element, err := getElementInTransaction(tx, grant.CID, false)
	if err != nil {
		return fmt.Errorf("addworkspacegrant: retrieving element %d: %w", grant.CID, err)
	}
	grant.CPath = element.Fullpath()

	stmt, err := tx.Preparex(`insert into workspace
        (cid, cpath, userId, list, view, save, publish, unpublish,
         deleteElement, renameElement, createElement, settings, versions, properties)
        values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("addworkspacegrant: preparing insert statement, %w", err)
	}
	defer stmt.Close()
	result, err := stmt.Exec(grant.CID, grant.CPath, grant.UserID,
		grant.List, grant.View, grant.Save, grant.Publish, grant.Unpublish,
		grant.Delete, grant.Rename, grant.Create, grant.Settings,
		grant.Versions, grant.Properties)
	if err != nil {
		return fmt.Errorf("addworkspacegrant: executing insert statement, %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("addworkspacegrant: retrieving assigned id, %w", err)
	}
	grant.ID = id
	return nil
}

// DeleteWorkspaceGrant removes a single workspace grant row by id.
func (dao *DataAccessLayer) DeleteWorkspaceGrant(id int64) error {
	defer util.Time("DeleteWorkspaceGrant")()
	_, err := dao.MetadataDB.Exec(`delete from workspace where id = ?`, id)
	if err != nil {
		dao.GetLogger().Error("error in deleteworkspacegrant", zap.Error(err))
	}
	return err
}

// GetGrantsForElement retrieves the workspace grant rows rooted exactly at
// the given element, for display and administration.
func (dao *DataAccessLayer) GetGrantsForElement(cid int64) ([]models.WorkspacePermission, error) {
	defer util.Time("GetGrantsForElement")()
	var grants []models.WorkspacePermission
	err := dao.MetadataDB.Select(&grants, `select `+workspaceColumns+` from workspace where cid = ? order by userId`, cid)
	if err != nil {
		dao.GetLogger().Error("error in getgrantsforelement", zap.Error(err))
	}
	return grants, err
}
