package dao

import (
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/util"
)

// GetAncestorChain iteratively queries up the chain of parents until the root
// sentinel is reached, returning ids ordered leaf to root. The element's own
// id is the first entry and the root sentinel the last; grants directly on
// the element therefore participate in permission resolution. For the root
// element the chain is the sentinel alone.
func (dao *DataAccessLayer) GetAncestorChain(id int64) ([]int64, error) {
	defer util.Time("GetAncestorChain")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	chain, err := getAncestorChainInTransaction(tx, id)
	if err != nil {
		dao.GetLogger().Error("error in getancestorchain", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return chain, err
}
