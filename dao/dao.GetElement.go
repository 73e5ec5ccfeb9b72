package dao

import (
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// GetElement retrieves a single element by id. When loadProperties is true,
// the element's own properties are returned together with inheritable
// properties contributed by ancestors, nearest ancestor winning and owned
// properties always shadowing inherited ones.
func (dao *DataAccessLayer) GetElement(id int64, loadProperties bool) (models.Element, error) {
	defer util.Time("GetElement")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.Element{}, err
	}
	element, err := getElementInTransaction(tx, id, loadProperties)
	if err != nil {
		if err != ErrNoSuchElement {
			dao.GetLogger().Error("error in getelement", zap.Error(err))
		}
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return element, err
}
