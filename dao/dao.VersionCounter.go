package dao

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// getVersionCountForUpdateInTransaction reads the element's stored version
// counter with a row lock to serialize concurrent savers, and for non-folder
// elements reconciles against the highest counter recorded in version
// history rows. A version row can carry a higher counter than the live row
// after a restore; taking the max prevents a counter from ever being
// reissued to a different payload.
func getVersionCountForUpdateInTransaction(tx *sqlx.Tx, id int64, isFolder bool) (int64, error) {
	var current int64
	if err := tx.Get(&current, `select versionCount from element where id = ? for update`, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNoSuchElement
		}
		return 0, err
	}
	if isFolder {
		return current, nil
	}
	var historyMax sql.NullInt64
	if err := tx.Get(&historyMax, `select max(versionCount) from version where elementId = ?`, id); err != nil {
		return 0, err
	}
	if historyMax.Valid && historyMax.Int64 > current {
		current = historyMax.Int64
	}
	return current, nil
}

// updateModificationInfosInTransaction assigns the next version counter and
// refreshes modification stamps on the passed element, persisting them in
// the same statement. The creation date is set only if previously unset and
// an existing owner is never overwritten.
func updateModificationInfosInTransaction(tx *sqlx.Tx, element *models.Element, user models.User) error {
	current, err := getVersionCountForUpdateInTransaction(tx, element.ID, element.IsFolder())
	if err != nil {
		return err
	}
	next := current + 1
	if next > models.MaxVersionCounter {
		next = 1
	}
	now := time.Now().Unix()

	element.VersionCount = next
	element.ModificationDate = now
	element.UserModification = user.ID
	if element.CreationDate == 0 {
		element.CreationDate = now
	}
	if !element.UserOwner.Valid {
		element.UserOwner = models.ToNullInt64(user.ID)
	}

	if _, err := tx.Exec(`update element set versionCount = ?, modificationDate = ?,
        creationDate = ?, userModification = ?, userOwner = ? where id = ?`,
		element.VersionCount, element.ModificationDate, element.CreationDate,
		element.UserModification, element.UserOwner, element.ID); err != nil {
		return fmt.Errorf("updatemodificationinfos: updating element row, %w", err)
	}
	if !element.IsFolder() {
		if _, err := tx.Exec(`insert into version (elementId, versionCount, creationDate) values (?, ?, ?)`,
			element.ID, element.VersionCount, now); err != nil {
			return fmt.Errorf("updatemodificationinfos: recording version row, %w", err)
		}
	}
	return nil
}

// MaxVersionCount returns the highest version counter recorded in the
// element's version history, 0 when no history exists.
func (dao *DataAccessLayer) MaxVersionCount(elementID int64) (int64, error) {
	defer util.Time("MaxVersionCount")()
	var historyMax sql.NullInt64
	err := dao.MetadataDB.Get(&historyMax, `select max(versionCount) from version where elementId = ?`, elementID)
	if err != nil {
		dao.GetLogger().Error("error in maxversioncount", zap.Error(err))
		return 0, err
	}
	return historyMax.Int64, nil
}

// IsBasedOnLatestData compares the element's in-memory modification date and
// version counter against the freshly read stored pair. Exact equality on
// both is required; this detects lost-update conflicts before a save
// commits.
func (dao *DataAccessLayer) IsBasedOnLatestData(element models.Element) (bool, error) {
	defer util.Time("IsBasedOnLatestData")()
	var stored models.ChangeTracking
	err := dao.MetadataDB.Get(&stored,
		`select versionCount, modificationDate from element where id = ?`, element.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrNoSuchElement
		}
		dao.GetLogger().Error("error in isbasedonlatestdata", zap.Error(err))
		return false, err
	}
	return stored.VersionCount == element.VersionCount &&
		stored.ModificationDate == element.ModificationDate, nil
}
