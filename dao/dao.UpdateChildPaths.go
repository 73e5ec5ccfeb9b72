package dao

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// UpdateChildPaths rewrites every descendant element path, workspace cpath
// and property cpath whose value begins with oldFullPath + "/" so that it
// begins with newFullPath + "/" instead. All three rewrites run in a single
// transaction so no reader ever observes a half-moved subtree. The acting
// user is stamped on rewritten element rows; the modification timestamp is
// deliberately left untouched so unrelated unpublished-version comparisons
// are not disturbed. The returned ids identify the affected descendants so
// callers can invalidate any cache keyed by element id.
func (dao *DataAccessLayer) UpdateChildPaths(oldFullPath string, newFullPath string, user models.User) ([]int64, error) {
	defer util.Time("UpdateChildPaths")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return nil, err
	}
	affected, err := updateChildPathsInTransaction(tx, oldFullPath, newFullPath, user)
	if err != nil {
		dao.GetLogger().Error("error in updatechildpaths", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	if err == nil {
		for _, id := range affected {
			dao.invalidateThumbnail(id)
		}
	}
	return affected, err
}

func updateChildPathsInTransaction(tx *sqlx.Tx, oldFullPath string, newFullPath string, user models.User) ([]int64, error) {
	oldPrefix := strings.TrimSuffix(oldFullPath, "/") + "/"
	newPrefix := strings.TrimSuffix(newFullPath, "/") + "/"

	affected, err := subtreeIDsInTransaction(tx, oldFullPath)
	if err != nil {
		return nil, fmt.Errorf("updatechildpaths: selecting affected ids, %w", err)
	}

	extra := map[string]interface{}{"userModification": user.ID}
	if err := rewritePathPrefixInTransaction(tx, "element", "path", oldPrefix, newPrefix, extra); err != nil {
		return nil, fmt.Errorf("updatechildpaths: rewriting element paths, %w", err)
	}
	if err := rewritePathPrefixInTransaction(tx, "workspace", "cpath", oldPrefix, newPrefix, nil); err != nil {
		return nil, fmt.Errorf("updatechildpaths: rewriting workspace cpaths, %w", err)
	}
	if err := rewritePathPrefixInTransaction(tx, "property", "cpath", oldPrefix, newPrefix, nil); err != nil {
		return nil, fmt.Errorf("updatechildpaths: rewriting property cpaths, %w", err)
	}
	return affected, nil
}

// rewritePathPrefixInTransaction is the single audited prefix-rewrite used
// for element paths as well as the denormalized cpath columns. Prefix
// matching is the authorization substrate, so every rewrite funnels through
// here and LIKE metacharacters in paths are always escaped.
func rewritePathPrefixInTransaction(tx *sqlx.Tx, table string, column string, oldPrefix string, newPrefix string, extra map[string]interface{}) error {
	assignments := fmt.Sprintf("%s = concat(?, substring(%s, ?))", column, column)
	args := []interface{}{newPrefix, len(oldPrefix) + 1}
	for name, value := range extra {
		assignments += fmt.Sprintf(", %s = ?", name)
		args = append(args, value)
	}
	query := fmt.Sprintf(`update %s set %s where %s like ? escape '\\'`, table, assignments, column)
	args = append(args, likeEscape(oldPrefix)+"%")
	_, err := tx.Exec(query, args...)
	return err
}

// rewriteExactPathInTransaction updates denormalized cpath values that match
// a moved or renamed element's own previous fullpath, scoped to rows rooted
// at that element.
func rewriteExactPathInTransaction(tx *sqlx.Tx, cid int64, newFullPath string) error {
	if _, err := tx.Exec(`update workspace set cpath = ? where cid = ?`, newFullPath, cid); err != nil {
		return err
	}
	_, err := tx.Exec(`update property set cpath = ? where cid = ?`, newFullPath, cid)
	return err
}
