package dao

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// GetDescendantGrants retrieves workspace grant rows rooted anywhere beneath
// the given full path for the given user or role ids. This is the probe
// backing the list exception: a user must be able to see through a folder to
// reach a permitted descendant even without list rights on the folder itself.
func (dao *DataAccessLayer) GetDescendantGrants(pathPrefix string, userIDs []int64) ([]models.WorkspacePermission, error) {
	defer util.Time("GetDescendantGrants")()
	if len(userIDs) == 0 {
		return nil, nil
	}
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	grants, err := getDescendantGrantsInTransaction(tx, pathPrefix, userIDs)
	if err != nil {
		dao.GetLogger().Error("error in getdescendantgrants", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return grants, err
}

func getDescendantGrantsInTransaction(tx *sqlx.Tx, pathPrefix string, userIDs []int64) ([]models.WorkspacePermission, error) {
	prefix := strings.TrimSuffix(pathPrefix, "/") + "/"
	query, args, err := sqlx.In(`select `+workspaceColumns+` from workspace
        where cpath like ? escape '\\' and userId in (?)`, likeEscape(prefix)+"%", userIDs)
	if err != nil {
		return nil, err
	}
	var grants []models.WorkspacePermission
	err = tx.Select(&grants, tx.Rebind(query), args...)
	return grants, err
}
