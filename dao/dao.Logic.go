package dao

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/elementdrive/element-drive-server/metadata/models"
	"github.com/elementdrive/element-drive-server/util"
)

// maxTreeDepth bounds ancestor walks. The tree is acyclic by invariant, so
// hitting this limit indicates corrupted parent links.
const maxTreeDepth = 100

const elementColumns = `id, parentId, path, elementKey, type, subtype, versionCount,
    locked, userOwner, userModification, creationDate, modificationDate`

// IsParentADescendant accepts an element identifier and a candidate parent,
// and returns whether the candidate lies within the element's own subtree.
// Moving an element beneath one of its descendants would create a cycle.
func (dao *DataAccessLayer) IsParentADescendant(id int64, candidateParentID int64) (bool, error) {
	defer util.Time("IsParentADescendant")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		return false, err
	}
	result, err := isParentADescendantInTransaction(tx, id, candidateParentID)
	if err != nil {
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return result, err
}

func isParentADescendantInTransaction(tx *sqlx.Tx, id int64, candidateParentID int64) (bool, error) {
	current := candidateParentID
	for depth := 0; depth < maxTreeDepth; depth++ {
		if current == models.RootID || current == 0 {
			return false, nil
		}
		if current == id {
			return true, nil
		}
		var parentID int64
		if err := tx.Get(&parentID, `select parentId from element where id = ?`, current); err != nil {
			if err == sql.ErrNoRows {
				return false, ErrNoSuchElement
			}
			return false, err
		}
		current = parentID
	}
	return false, fmt.Errorf("ancestor walk exceeded %d levels, parent links corrupted", maxTreeDepth)
}

func getElementInTransaction(tx *sqlx.Tx, id int64, loadProperties bool) (models.Element, error) {
	var element models.Element
	query := `select ` + elementColumns + ` from element where id = ?`
	if err := tx.Get(&element, query, id); err != nil {
		if err == sql.ErrNoRows {
			return element, ErrNoSuchElement
		}
		return element, err
	}
	if loadProperties {
		properties, err := getPropertiesWithInheritanceInTransaction(tx, element)
		if err != nil {
			return element, err
		}
		element.Properties = properties
	}
	return element, nil
}

func getAncestorChainInTransaction(tx *sqlx.Tx, id int64) ([]int64, error) {
	chain := []int64{id}
	if id == models.RootID {
		return chain, nil
	}
	current := id
	for depth := 0; depth < maxTreeDepth; depth++ {
		var parentID int64
		if err := tx.Get(&parentID, `select parentId from element where id = ?`, current); err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrNoSuchElement
			}
			return nil, err
		}
		if parentID == 0 {
			// Detached from the tree; treat like a root-level element.
			return append(chain, models.RootID), nil
		}
		chain = append(chain, parentID)
		if parentID == models.RootID {
			return chain, nil
		}
		current = parentID
	}
	return nil, fmt.Errorf("ancestor walk exceeded %d levels, parent links corrupted", maxTreeDepth)
}

// childPathOf computes the path value assigned to children of the given
// element. The root's fullpath is "/", so trimming the trailing slash first
// keeps child paths single-slashed everywhere.
func childPathOf(parent models.Element) string {
	return strings.TrimSuffix(parent.Fullpath(), "/") + "/"
}

// likeEscape escapes SQL LIKE metacharacters in a path prefix so that only a
// literal prefix match is performed. Prefix matching is the authorization
// substrate, so wildcard leakage here would be a privilege escalation.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func keyExistsInTransaction(tx *sqlx.Tx, parentID int64, key string) (bool, error) {
	var count int
	err := tx.Get(&count, `select count(*) from element where parentId = ? and elementKey = ?`, parentID, key)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func subtreeIDsInTransaction(tx *sqlx.Tx, fullPath string) ([]int64, error) {
	var ids []int64
	err := tx.Select(&ids, `select id from element where path like ? escape '\\' order by id`,
		likeEscape(strings.TrimSuffix(fullPath, "/")+"/")+"%")
	return ids, err
}
