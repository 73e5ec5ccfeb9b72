package dao

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

const propertyColumns = `id, cid, cpath, name, type, data, inheritable`

// AddPropertyToElement persists a property owned by the element referenced by
// its CID, replacing any existing property of the same name. Like workspace
// grants, the denormalized cpath is assigned from the current element state.
func (dao *DataAccessLayer) AddPropertyToElement(property *models.Property) error {
	defer util.Time("AddPropertyToElement")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return err
	}
	err = addPropertyToElementInTransaction(tx, property)
	if err != nil {
		dao.GetLogger().Error("error in addpropertytoelement", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return err
}

func addPropertyToElementInTransaction(tx *sqlx.Tx, property *models.Property) error {
	if property.CID == 0 {
		return ErrMissingID
	}
	if property.Name == "" {
		return fmt.Errorf("addpropertytoelement: property name must not be empty")
	}
	element, err := getElementInTransaction(tx, property.CID, false)
	if err != nil {
		return fmt.Errorf("addpropertytoelement: retrieving element %d: %w", property.CID, err)
	}
	property.CPath = element.Fullpath()

	if _, err := tx.Exec(`delete from property where cid = ? and name = ?`, property.CID, property.Name); err != nil {
		return fmt.Errorf("addpropertytoelement: clearing previous property, %w", err)
	}
	result, err := tx.Exec(`insert into property (cid, cpath, name, type, data, inheritable)
        values (?, ?, ?, ?, ?, ?)`,
		property.CID, property.CPath, property.Name, property.Type,
		property.Data, property.Inheritable)
	if err != nil {
		return fmt.Errorf("addpropertytoelement: executing insert statement, %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("addpropertytoelement: retrieving assigned id, %w", err)
	}
	property.ID = id
	return nil
}

// GetPropertiesForElement retrieves the properties owned by the element
// itself, without inherited entries.
func (dao *DataAccessLayer) GetPropertiesForElement(id int64) ([]models.Property, error) {
	defer util.Time("GetPropertiesForElement")()
	var properties []models.Property
	err := dao.MetadataDB.Select(&properties, `select `+propertyColumns+` from property where cid = ? order by name`, id)
	if err != nil {
		dao.GetLogger().Error("error in getpropertiesforelement", zap.Error(err))
	}
	return properties, err
}

// DeleteProperty removes a single property row by id.
func (dao *DataAccessLayer) DeleteProperty(id int64) error {
	defer util.Time("DeleteProperty")()
	_, err := dao.MetadataDB.Exec(`delete from property where id = ?`, id)
	if err != nil {
		dao.GetLogger().Error("error in deleteproperty", zap.Error(err))
	}
	return err
}

// getPropertiesWithInheritanceInTransaction loads the element's own
// properties plus inheritable properties from ancestors. Owned properties
// shadow inherited ones of the same name, and nearer ancestors shadow
// farther ones.
func getPropertiesWithInheritanceInTransaction(tx *sqlx.Tx, element models.Element) ([]models.Property, error) {
	chain, err := getAncestorChainInTransaction(tx, element.ID)
	if err != nil {
		return nil, err
	}
	var properties []models.Property
	seen := make(map[string]bool)
	for i, cid := range chain {
		var rows []models.Property
		query := `select ` + propertyColumns + ` from property where cid = ? order by name`
		if i > 0 {
			query = `select ` + propertyColumns + ` from property where cid = ? and inheritable = 1 order by name`
		}
		if err := tx.Select(&rows, query, cid); err != nil {
			return nil, err
		}
		for _, row := range rows {
			if seen[row.Name] {
				continue
			}
			seen[row.Name] = true
			row.Inherited = i > 0
			properties = append(properties, row)
		}
	}
	return properties, nil
}
