package auth

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/dao"
	"github.com/elementdrive/element-drive-server/metadata/models"
)

// WorkspaceAuth is an Authorization implementation backed by workspace grant
// rows in the element store. Resolution applies longest-cpath precedence,
// then user-over-role precedence, then an explicit-true tie-break, in one
// audited place. Any store failure during a check degrades to deny, never to
// allow.
type WorkspaceAuth struct {
	Logger *zap.Logger
	Store  dao.DAO
}

// NewWorkspaceAuth is a helper that builds a WorkspaceAuth from a provided logger and store.
func NewWorkspaceAuth(logger *zap.Logger, store dao.DAO) *WorkspaceAuth {
	return &WorkspaceAuth{Logger: logger, Store: store}
}

func workspaceAuthCompileCheck() Authorization {
	return &WorkspaceAuth{}
}

// IsAllowed answers whether the user may perform the named capability on the
// element. Admin users are unconditionally allowed. Otherwise the grant rows
// for the element's ancestor chain are resolved by precedence, and for the
// list capability an additional descendant probe lets users see through
// folders toward permitted subtrees.
func (w *WorkspaceAuth) IsAllowed(element models.Element, capability models.Capability, user models.User) bool {
	if user.IsAdmin {
		return true
	}
	principals := user.PrincipalIDs()

	chain, err := w.Store.GetAncestorChain(element.ID)
	if err != nil {
		w.warn("permission check failed resolving ancestor chain", element, capability, err)
		return false
	}
	grants, err := w.Store.GetWorkspaceGrants(chain, principals)
	if err != nil {
		w.warn("permission check failed querying workspace grants", element, capability, err)
		return false
	}
	if value, matched := resolveGrant(grants, capability, user.ID); matched {
		return value
	}

	if capability == models.CapabilityList {
		allowed, err := w.listableThroughDescendants(element, user)
		if err != nil {
			w.warn("permission check failed querying descendant grants", element, capability, err)
			return false
		}
		return allowed
	}
	return false
}

// resolveGrant applies the precedence rule over an unordered grant row set:
// the longest cpath wins, a direct user grant beats a role grant at equal
// length, and an explicit true beats an explicit false at equal specificity.
// The second return reports whether any row carried the capability at all.
func resolveGrant(grants []models.WorkspacePermission, capability models.Capability, userID int64) (bool, bool) {
	type candidate struct {
		value bool
		cpath string
		own   bool
	}
	var candidates []candidate
	for _, g := range grants {
		value, ok := g.Granted(capability)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{value: value, cpath: g.CPath, own: g.UserID == userID})
	}
	if len(candidates) == 0 {
		return false, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i].cpath) != len(candidates[j].cpath) {
			return len(candidates[i].cpath) > len(candidates[j].cpath)
		}
		if candidates[i].own != candidates[j].own {
			return candidates[i].own
		}
		return candidates[i].value && !candidates[j].value
	})
	return candidates[0].value, true
}

// listableThroughDescendants implements the list exception: with no direct
// grant on the element, a list=true grant anywhere beneath it still makes
// the element listable, unless a row at that same cpath denies list to the
// requesting user specifically.
func (w *WorkspaceAuth) listableThroughDescendants(element models.Element, user models.User) (bool, error) {
	prefix := strings.TrimSuffix(element.Fullpath(), "/") + "/"
	grants, err := w.Store.GetDescendantGrants(prefix, user.PrincipalIDs())
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if !g.List {
			continue
		}
		deniedForUser := false
		for _, h := range grants {
			if h.CPath == g.CPath && h.UserID == user.ID && !h.List {
				deniedForUser = true
				break
			}
		}
		if !deniedForUser {
			return true, nil
		}
	}
	return false, nil
}

// UserPermissions iterates the element's closed capability set through
// IsAllowed, producing the name-to-bool map shown in permission displays.
// There is deliberately no separate batch algorithm here.
func (w *WorkspaceAuth) UserPermissions(element models.Element, user models.User) map[models.Capability]bool {
	permissions := make(map[models.Capability]bool)
	for _, capability := range models.CapabilitiesForElement(element) {
		permissions[capability] = w.IsAllowed(element, capability, user)
	}
	return permissions
}

// AreAllowed resolves multiple capabilities for multiple elements with a
// single workspace grant fetch across all ancestor chains. The per-element
// decision runs through the same precedence function as IsAllowed.
func (w *WorkspaceAuth) AreAllowed(elements []models.Element, capabilities []models.Capability, user models.User) []map[models.Capability]bool {
	results := make([]map[models.Capability]bool, len(elements))

	if user.IsAdmin {
		for i := range elements {
			results[i] = make(map[models.Capability]bool)
			for _, capability := range capabilities {
				results[i][capability] = true
			}
		}
		return results
	}

	principals := user.PrincipalIDs()
	chains := make([][]int64, len(elements))
	cidSet := make(map[int64]bool)
	var cids []int64
	for i, element := range elements {
		chain, err := w.Store.GetAncestorChain(element.ID)
		if err != nil {
			w.warn("batch permission check failed resolving ancestor chain", element, "", err)
			chains[i] = nil
			continue
		}
		chains[i] = chain
		for _, cid := range chain {
			if !cidSet[cid] {
				cidSet[cid] = true
				cids = append(cids, cid)
			}
		}
	}

	grants, err := w.Store.GetWorkspaceGrants(cids, principals)
	if err != nil {
		for i := range elements {
			results[i] = denyAll(capabilities)
		}
		w.Logger.Warn("batch permission check failed querying workspace grants", zap.Error(err))
		return results
	}
	grantsByCID := make(map[int64][]models.WorkspacePermission)
	for _, g := range grants {
		grantsByCID[g.CID] = append(grantsByCID[g.CID], g)
	}

	for i, element := range elements {
		results[i] = make(map[models.Capability]bool)
		if chains[i] == nil {
			results[i] = denyAll(capabilities)
			continue
		}
		var rows []models.WorkspacePermission
		for _, cid := range chains[i] {
			rows = append(rows, grantsByCID[cid]...)
		}
		for _, capability := range capabilities {
			value, matched := resolveGrant(rows, capability, user.ID)
			if !matched && capability == models.CapabilityList {
				value, err = w.listableThroughDescendants(element, user)
				if err != nil {
					w.warn("batch permission check failed querying descendant grants", element, capability, err)
					value = false
				}
			}
			results[i][capability] = value
		}
	}
	return results
}

func denyAll(capabilities []models.Capability) map[models.Capability]bool {
	denied := make(map[models.Capability]bool, len(capabilities))
	for _, capability := range capabilities {
		denied[capability] = false
	}
	return denied
}

// HasChildren reports whether any direct child of the element is visible to
// the user, either through a direct or inherited list grant or through the
// list exception on the child's own subtree.
func (w *WorkspaceAuth) HasChildren(element models.Element, user models.User) bool {
	return w.countVisibleChildren(element, user, true) > 0
}

// ChildAmount counts the direct children of the element visible to the user.
func (w *WorkspaceAuth) ChildAmount(element models.Element, user models.User) int {
	return w.countVisibleChildren(element, user, false)
}

func (w *WorkspaceAuth) countVisibleChildren(element models.Element, user models.User, firstOnly bool) int {
	count := 0
	paging := dao.PagingRequest{PageNumber: 1, PageSize: dao.MaxPageSize}
	for {
		children, err := w.Store.GetChildElements(element.ID, paging)
		if err != nil {
			w.warn("child visibility check failed querying children", element, models.CapabilityList, err)
			return count
		}
		for _, child := range children {
			if w.childVisible(child, user) {
				count++
				if firstOnly {
					return count
				}
			}
		}
		if len(children) < paging.PageSize {
			return count
		}
		paging.PageNumber++
	}
}

// childVisible extends IsAllowed for child listings: a deny row on the
// child itself does not hide it while a deeper descendant independently
// grants list, so the user can still navigate toward the permitted subtree.
// IsAllowed only consults the descendant probe when no grant row matches.
func (w *WorkspaceAuth) childVisible(child models.Element, user models.User) bool {
	if w.IsAllowed(child, models.CapabilityList, user) {
		return true
	}
	allowed, err := w.listableThroughDescendants(child, user)
	if err != nil {
		w.warn("child visibility check failed querying descendant grants", child, models.CapabilityList, err)
		return false
	}
	return allowed
}

func (w *WorkspaceAuth) warn(msg string, element models.Element, capability models.Capability, err error) {
	w.Logger.Warn(msg,
		zap.Int64("elementId", element.ID),
		zap.String("capability", string(capability)),
		zap.Error(err))
}
