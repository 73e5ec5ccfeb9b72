package dao

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

const workspaceColumns = `id, cid, cpath, userId, list, view, save, publish,
    unpublish, deleteElement, renameElement, createElement, settings,
    versions, properties`

// GetWorkspaceGrants retrieves all workspace grant rows whose rooting element
// is among the given cids and whose grantee is among the given user or role
// ids. Rows are returned unordered; precedence is applied by the resolver in
// one audited place.
func (dao *DataAccessLayer) GetWorkspaceGrants(cids []int64, userIDs []int64) ([]models.WorkspacePermission, error) {
	defer util.Time("GetWorkspaceGrants")()
	if len(cids) == 0 || len(userIDs) == 0 {
		return nil, nil
	}
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	grants, err := getWorkspaceGrantsInTransaction(tx, cids, userIDs)
	if err != nil {
		dao.GetLogger().Error("error in getworkspacegrants", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return grants, err
}

func getWorkspaceGrantsInTransaction(tx *sqlx.Tx, cids []int64, userIDs []int64) ([]models.WorkspacePermission, error) {
	query, args, err := sqlx.In(`select `+workspaceColumns+` from workspace
        where cid in (?) and userId in (?)`, cids, userIDs)
	if err != nil {
		return nil, err
	}
	var grants []models.WorkspacePermission
	err = tx.Select(&grants, tx.Rebind(query), args...)
	return grants, err
}
