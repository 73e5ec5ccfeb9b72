package dao

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// GetChildElements retrieves the direct children of an element ordered by
// key, constrained to the requested page.
func (dao *DataAccessLayer) GetChildElements(parentID int64, pagingRequest PagingRequest) ([]models.Element, error) {
	defer util.Time("GetChildElements")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	children, err := getChildElementsInTransaction(tx, parentID, pagingRequest)
	if err != nil {
		dao.GetLogger().Error("error in getchildelements", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return children, err
}

func getChildElementsInTransaction(tx *sqlx.Tx, parentID int64, pagingRequest PagingRequest) ([]models.Element, error) {
	var children []models.Element
	query := `select ` + elementColumns + ` from element where parentId = ? and id != ?
        order by elementKey limit ? offset ?`
	err := tx.Select(&children, query, parentID, models.RootID,
		GetLimit(pagingRequest.PageNumber, pagingRequest.PageSize),
		GetOffset(pagingRequest.PageNumber, pagingRequest.PageSize))
	return children, err
}
