package dao

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// GetSaveCopyName derives a sibling-unique key for a copy of an element.
// When the proposed key is already taken under the target parent, "_copy",
// "_copy_2", "_copy_3" and so on are tried until a free key is found. Asset
// filenames keep their extension: the suffix is inserted before the last
// dot. The candidate space is unbounded while the sibling set is finite, so
// the search always terminates.
func (dao *DataAccessLayer) GetSaveCopyName(elementType models.ElementType, key string, parentID int64) (string, error) {
	defer util.Time("GetSaveCopyName")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return "", err
	}
	name, err := getSaveCopyNameInTransaction(tx, elementType, key, parentID)
	if err != nil {
		dao.GetLogger().Error("error in getsavecopyname", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return name, err
}

func getSaveCopyNameInTransaction(tx *sqlx.Tx, elementType models.ElementType, key string, parentID int64) (string, error) {
	exists, err := keyExistsInTransaction(tx, parentID, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return key, nil
	}
	base, ext := splitCopyKey(elementType, key)
	for n := 1; ; n++ {
		candidate := copyCandidate(base, ext, n)
		exists, err := keyExistsInTransaction(tx, parentID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// splitCopyKey separates an asset filename into stem and extension so the
// copy suffix lands before the extension dot. Other element types, and
// dotless or dotfile asset names, keep the whole key as the stem.
func splitCopyKey(elementType models.ElementType, key string) (string, string) {
	if elementType != models.TypeAsset {
		return key, ""
	}
	dot := strings.LastIndex(key, ".")
	if dot <= 0 {
		return key, ""
	}
	return key[:dot], key[dot:]
}

func copyCandidate(base string, ext string, n int) string {
	if n <= 1 {
		return base + "_copy" + ext
	}
	return fmt.Sprintf("%s_copy_%d%s", base, n, ext)
}
