package dao

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/util"
)

// thumbnailCacheTTL bounds how long a cached status may serve reads; the
// cache is additionally invalidated whenever the asset mutates.
const thumbnailCacheTTL = 5 * time.Minute

// GetThumbnailStatus returns the generation status of an asset's thumbnail
// through a bounded read-through cache. Assets without a recorded status
// report "none".
func (dao *DataAccessLayer) GetThumbnailStatus(assetID int64) (string, error) {
	defer util.Time("GetThumbnailStatus")()
	if dao.thumbnailCache != nil {
		if item := dao.thumbnailCache.Get(thumbnailCacheKey(assetID)); item != nil && !item.Expired() {
			return item.Value().(string), nil
		}
	}
	var status string
	err := dao.MetadataDB.Get(&status, `select status from asset_thumbnail where assetId = ?`, assetID)
	if err == sql.ErrNoRows {
		status, err = "none", nil
	}
	if err != nil {
		dao.GetLogger().Error("error in getthumbnailstatus", zap.Error(err))
		return "", err
	}
	if dao.thumbnailCache != nil {
		dao.thumbnailCache.Set(thumbnailCacheKey(assetID), status, thumbnailCacheTTL)
	}
	return status, nil
}

// SetThumbnailStatus records the generation status of an asset's thumbnail
// and drops any cached value.
func (dao *DataAccessLayer) SetThumbnailStatus(assetID int64, status string) error {
	defer util.Time("SetThumbnailStatus")()
	_, err := dao.MetadataDB.Exec(`insert into asset_thumbnail (assetId, status, modificationDate)
        values (?, ?, ?) on duplicate key update status = ?, modificationDate = ?`,
		assetID, status, time.Now().Unix(), status, time.Now().Unix())
	if err != nil {
		dao.GetLogger().Error("error in setthumbnailstatus", zap.Error(err))
		return err
	}
	dao.invalidateThumbnail(assetID)
	return nil
}
