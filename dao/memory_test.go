package dao

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/elementdrive/element-drive-server/metadata/models"
)

var testUser = models.User{ID: 42}

func mustCreate(t *testing.T, m *MemoryDataAccessLayer, parentID int64, key string, elementType models.ElementType, subtype string) models.Element {
	t.Helper()
	element := models.Element{Type: elementType, Subtype: subtype}
	element.ParentID = parentID
	element.Key = key
	if err := m.CreateElement(&element, testUser); err != nil {
		t.Fatalf("creating %q under %d failed: %v", key, parentID, err)
	}
	return element
}

func TestCreateElementUnderRoot(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	element := mustCreate(t, m, models.RootID, "docs", models.TypeDocument, models.SubtypeFolder)

	if element.Path != "/" {
		t.Errorf("expected path %q, got %q", "/", element.Path)
	}
	if element.Fullpath() != "/docs" {
		t.Errorf("expected fullpath %q, got %q", "/docs", element.Fullpath())
	}
	if element.VersionCount != 1 {
		t.Errorf("expected initial version count 1, got %d", element.VersionCount)
	}
	if element.ModificationDate == 0 || element.CreationDate == 0 {
		t.Errorf("expected timestamps to be stamped on create")
	}
	if !element.UserOwner.Valid || element.UserOwner.Int64 != testUser.ID {
		t.Errorf("expected owner %d, got %+v", testUser.ID, element.UserOwner)
	}
	if element.UserModification != testUser.ID {
		t.Errorf("expected modifier %d, got %d", testUser.ID, element.UserModification)
	}
}

func TestCreateElementDuplicateKey(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	mustCreate(t, m, models.RootID, "docs", models.TypeDocument, models.SubtypeFolder)

	duplicate := models.Element{Type: models.TypeDocument, Subtype: models.SubtypeFolder}
	duplicate.ParentID = models.RootID
	duplicate.Key = "docs"
	if err := m.CreateElement(&duplicate, testUser); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCreateElementUnknownParent(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	orphan := models.Element{Type: models.TypeDocument}
	orphan.ParentID = 9999
	orphan.Key = "stray"
	if err := m.CreateElement(&orphan, testUser); !errors.Is(err, ErrNoSuchElement) {
		t.Errorf("expected ErrNoSuchElement, got %v", err)
	}
}

func TestCreateElementPathTooLong(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	longKey := strings.Repeat("a", 255)
	first := mustCreate(t, m, models.RootID, longKey, models.TypeDocument, models.SubtypeFolder)
	second := mustCreate(t, m, first.ID, longKey, models.TypeDocument, models.SubtypeFolder)

	third := models.Element{Type: models.TypeDocument, Subtype: models.SubtypeFolder}
	third.ParentID = second.ID
	third.Key = longKey
	if err := m.CreateElement(&third, testUser); !errors.Is(err, ErrPathTooLong) {
		t.Errorf("expected ErrPathTooLong, got %v", err)
	}
	if _, err := m.GetElement(third.ID, false); !errors.Is(err, ErrNoSuchElement) {
		t.Errorf("expected nothing persisted after length rejection")
	}
}

func TestGetAncestorChain(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	a := mustCreate(t, m, models.RootID, "a", models.TypeDocument, models.SubtypeFolder)
	b := mustCreate(t, m, a.ID, "b", models.TypeDocument, models.SubtypeFolder)
	c := mustCreate(t, m, b.ID, "c", models.TypeDocument, "")

	chain, err := m.GetAncestorChain(c.ID)
	if err != nil {
		t.Fatalf("ancestor chain failed: %v", err)
	}
	expected := []int64{c.ID, b.ID, a.ID, models.RootID}
	if len(chain) != len(expected) {
		t.Fatalf("expected chain %v, got %v", expected, chain)
	}
	for i := range expected {
		if chain[i] != expected[i] {
			t.Errorf("expected chain %v, got %v", expected, chain)
			break
		}
	}
}

func TestGetChildElementsOrderAndPaging(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	parent := mustCreate(t, m, models.RootID, "parent", models.TypeDocument, models.SubtypeFolder)
	for _, key := range []string{"delta", "alpha", "charlie", "bravo"} {
		mustCreate(t, m, parent.ID, key, models.TypeDocument, "")
	}

	page1, err := m.GetChildElements(parent.ID, PagingRequest{PageNumber: 1, PageSize: 3})
	if err != nil {
		t.Fatalf("get children failed: %v", err)
	}
	if len(page1) != 3 || page1[0].Key != "alpha" || page1[1].Key != "bravo" || page1[2].Key != "charlie" {
		t.Errorf("unexpected first page: %+v", page1)
	}
	page2, err := m.GetChildElements(parent.ID, PagingRequest{PageNumber: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("get children failed: %v", err)
	}
	if len(page2) != 1 || page2[0].Key != "delta" {
		t.Errorf("unexpected second page: %+v", page2)
	}
}

func TestMoveElementRewritesDescendantPathsAndCPaths(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	projects := mustCreate(t, m, models.RootID, "projects", models.TypeAsset, models.SubtypeFolder)
	site := mustCreate(t, m, projects.ID, "site", models.TypeAsset, models.SubtypeFolder)
	logo := mustCreate(t, m, site.ID, "logo.png", models.TypeAsset, "")
	archive := mustCreate(t, m, models.RootID, "archive", models.TypeAsset, models.SubtypeFolder)

	grant := models.WorkspacePermission{CID: site.ID, UserID: 7, List: true}
	if err := m.AddWorkspaceGrant(&grant); err != nil {
		t.Fatalf("adding grant failed: %v", err)
	}
	property := models.Property{CID: logo.ID, Name: "alt", Data: models.ToNullString("company logo")}
	if err := m.AddPropertyToElement(&property); err != nil {
		t.Fatalf("adding property failed: %v", err)
	}

	// Backdate the descendant so an untouched timestamp is observable.
	m.mu.Lock()
	m.elements[logo.ID].ModificationDate = 12345
	m.mu.Unlock()

	affected, err := m.MoveElement(site.ID, archive.ID, testUser)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if len(affected) != 1 || affected[0] != logo.ID {
		t.Errorf("expected affected descendants [%d], got %v", logo.ID, affected)
	}

	movedSite, _ := m.GetElement(site.ID, false)
	if movedSite.Fullpath() != "/archive/site" {
		t.Errorf("expected site at /archive/site, got %q", movedSite.Fullpath())
	}
	movedLogo, _ := m.GetElement(logo.ID, false)
	if movedLogo.Fullpath() != "/archive/site/logo.png" {
		t.Errorf("expected logo at /archive/site/logo.png, got %q", movedLogo.Fullpath())
	}
	if movedLogo.ModificationDate != 12345 {
		t.Errorf("descendant modification timestamp changed during path rewrite")
	}
	if movedLogo.UserModification != testUser.ID {
		t.Errorf("expected descendant modifier stamped to %d, got %d", testUser.ID, movedLogo.UserModification)
	}

	grants, _ := m.GetGrantsForElement(site.ID)
	if len(grants) != 1 || grants[0].CPath != "/archive/site" {
		t.Errorf("expected grant cpath rewritten to /archive/site, got %+v", grants)
	}
	properties, _ := m.GetPropertiesForElement(logo.ID)
	if len(properties) != 1 || properties[0].CPath != "/archive/site/logo.png" {
		t.Errorf("expected property cpath rewritten, got %+v", properties)
	}
}

func TestMoveElementCycles(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	a := mustCreate(t, m, models.RootID, "a", models.TypeObject, models.SubtypeFolder)
	b := mustCreate(t, m, a.ID, "b", models.TypeObject, models.SubtypeFolder)
	c := mustCreate(t, m, b.ID, "c", models.TypeObject, models.SubtypeFolder)

	if _, err := m.MoveElement(a.ID, c.ID, testUser); !errors.Is(err, ErrCyclicMove) {
		t.Errorf("expected ErrCyclicMove moving under own descendant, got %v", err)
	}
	if _, err := m.MoveElement(a.ID, a.ID, testUser); !errors.Is(err, ErrCyclicMove) {
		t.Errorf("expected ErrCyclicMove moving onto itself, got %v", err)
	}

	// No partial rewrite may survive a rejected move.
	unchanged, _ := m.GetElement(c.ID, false)
	if unchanged.Fullpath() != "/a/b/c" {
		t.Errorf("expected tree untouched after rejected move, got %q", unchanged.Fullpath())
	}
}

func TestMoveElementDuplicateKeyAtTarget(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	left := mustCreate(t, m, models.RootID, "left", models.TypeDocument, models.SubtypeFolder)
	right := mustCreate(t, m, models.RootID, "right", models.TypeDocument, models.SubtypeFolder)
	mustCreate(t, m, left.ID, "page", models.TypeDocument, "")
	moving := mustCreate(t, m, right.ID, "page", models.TypeDocument, "")

	if _, err := m.MoveElement(moving.ID, left.ID, testUser); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestRootImmutable(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	other := mustCreate(t, m, models.RootID, "other", models.TypeDocument, models.SubtypeFolder)

	if _, err := m.MoveElement(models.RootID, other.ID, testUser); !errors.Is(err, ErrRootImmutable) {
		t.Errorf("expected ErrRootImmutable on move, got %v", err)
	}
	if _, err := m.RenameElement(models.RootID, "renamed", testUser); !errors.Is(err, ErrRootImmutable) {
		t.Errorf("expected ErrRootImmutable on rename, got %v", err)
	}
	if _, err := m.DeleteElement(models.RootID, testUser); !errors.Is(err, ErrRootImmutable) {
		t.Errorf("expected ErrRootImmutable on delete, got %v", err)
	}
}

func TestRenameElementRewritesPaths(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	folder := mustCreate(t, m, models.RootID, "drafts", models.TypeDocument, models.SubtypeFolder)
	page := mustCreate(t, m, folder.ID, "page", models.TypeDocument, "")

	if _, err := m.RenameElement(folder.ID, "published", testUser); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	renamed, _ := m.GetElement(page.ID, false)
	if renamed.Fullpath() != "/published/page" {
		t.Errorf("expected /published/page, got %q", renamed.Fullpath())
	}
}

func TestRenameElementValidation(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	first := mustCreate(t, m, models.RootID, "first", models.TypeDocument, "")
	mustCreate(t, m, models.RootID, "second", models.TypeDocument, "")

	if _, err := m.RenameElement(first.ID, "second", testUser); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := m.RenameElement(first.ID, "has space", testUser); err == nil {
		t.Errorf("expected invalid document key to be rejected")
	}

	// Renaming to the current key is a no-op without a version bump.
	before, _ := m.GetElement(first.ID, false)
	if _, err := m.RenameElement(first.ID, "first", testUser); err != nil {
		t.Errorf("expected same-key rename to succeed, got %v", err)
	}
	after, _ := m.GetElement(first.ID, false)
	if after.VersionCount != before.VersionCount {
		t.Errorf("expected no version bump on same-key rename")
	}
}

func TestVersionCounterIncrementsDistinctly(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	page := mustCreate(t, m, models.RootID, "page", models.TypeDocument, "")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			update := models.Element{}
			update.ID = page.ID
			if err := m.UpdateElement(&update, testUser); err != nil {
				t.Errorf("update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	max, err := m.MaxVersionCount(page.ID)
	if err != nil {
		t.Fatalf("max version count failed: %v", err)
	}
	if max != 11 {
		t.Errorf("expected max version count 11 after 10 updates, got %d", max)
	}
	m.mu.Lock()
	history := m.versions[page.ID]
	m.mu.Unlock()
	seen := make(map[int64]bool)
	for _, vc := range history {
		if seen[vc] {
			t.Errorf("version counter %d assigned twice", vc)
		}
		seen[vc] = true
	}
	if len(history) != 11 {
		t.Errorf("expected 11 version history rows, got %d", len(history))
	}
}

func TestVersionCounterWraps(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	page := mustCreate(t, m, models.RootID, "page", models.TypeDocument, "")

	m.mu.Lock()
	m.elements[page.ID].VersionCount = models.MaxVersionCounter
	m.mu.Unlock()

	update := models.Element{}
	update.ID = page.ID
	if err := m.UpdateElement(&update, testUser); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if update.VersionCount != 1 {
		t.Errorf("expected counter to wrap to 1, got %d", update.VersionCount)
	}
}

func TestSaveElementConflict(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	page := mustCreate(t, m, models.RootID, "page", models.TypeDocument, "")

	editorA, _ := m.GetElement(page.ID, false)
	editorB, _ := m.GetElement(page.ID, false)

	if err := m.SaveElement(&editorA, testUser); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := m.SaveElement(&editorB, models.User{ID: 43}); !errors.Is(err, ErrStaleVersion) {
		t.Errorf("expected ErrStaleVersion for concurrent editor, got %v", err)
	}

	latest, err := m.IsBasedOnLatestData(editorB)
	if err != nil {
		t.Fatalf("latest check failed: %v", err)
	}
	if latest {
		t.Errorf("expected stale editor copy to be reported as not latest")
	}
	if latest, _ := m.IsBasedOnLatestData(editorA); !latest {
		t.Errorf("expected refreshed copy to be reported as latest")
	}
}

func TestGetSaveCopyName(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	folder := mustCreate(t, m, models.RootID, "images", models.TypeAsset, models.SubtypeFolder)
	mustCreate(t, m, folder.ID, "source.jpg", models.TypeAsset, "")

	name, err := m.GetSaveCopyName(models.TypeAsset, "source.jpg", folder.ID)
	if err != nil {
		t.Fatalf("copy name failed: %v", err)
	}
	if name != "source_copy.jpg" {
		t.Errorf("expected source_copy.jpg, got %q", name)
	}
	mustCreate(t, m, folder.ID, "source_copy.jpg", models.TypeAsset, "")

	name, _ = m.GetSaveCopyName(models.TypeAsset, "source.jpg", folder.ID)
	if name != "source_copy_2.jpg" {
		t.Errorf("expected source_copy_2.jpg, got %q", name)
	}

	// Free keys pass through untouched.
	name, _ = m.GetSaveCopyName(models.TypeAsset, "other.jpg", folder.ID)
	if name != "other.jpg" {
		t.Errorf("expected free key unchanged, got %q", name)
	}

	// Document keys take the suffix at the end.
	docs := mustCreate(t, m, models.RootID, "docs", models.TypeDocument, models.SubtypeFolder)
	mustCreate(t, m, docs.ID, "notes", models.TypeDocument, "")
	name, _ = m.GetSaveCopyName(models.TypeDocument, "notes", docs.ID)
	if name != "notes_copy" {
		t.Errorf("expected notes_copy, got %q", name)
	}
}

func TestLockPropagation(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	folder := mustCreate(t, m, models.RootID, "folder", models.TypeDocument, models.SubtypeFolder)
	child := mustCreate(t, m, folder.ID, "child", models.TypeDocument, "")
	sibling := mustCreate(t, m, models.RootID, "sibling", models.TypeDocument, "")

	if err := m.SetLock(folder.ID, models.LockPropagate); err != nil {
		t.Fatalf("set lock failed: %v", err)
	}
	if locked, _ := m.IsLocked(child.ID); !locked {
		t.Errorf("expected child locked through propagating ancestor")
	}
	if locked, _ := m.IsLocked(sibling.ID); locked {
		t.Errorf("expected sibling unaffected by lock")
	}

	// A self lock does not reach descendants but does surface on ancestors.
	if err := m.SetLock(folder.ID, models.LockSelf); err != nil {
		t.Fatalf("set lock failed: %v", err)
	}
	if locked, _ := m.IsLocked(child.ID); locked {
		t.Errorf("expected self lock not to reach descendants")
	}
	if locked, _ := m.IsLocked(models.RootID); !locked {
		t.Errorf("expected locked descendant to surface on ancestor check")
	}

	affected, err := m.UnlockPropagate(models.RootID)
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if len(affected) != 1 || affected[0] != folder.ID {
		t.Errorf("expected unlock to clear [%d], got %v", folder.ID, affected)
	}
	if state, _ := m.GetLock(folder.ID); state != models.LockNone {
		t.Errorf("expected lock cleared, got %q", state)
	}
}

func TestDeleteElementRemovesSubtreeAndDependents(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	folder := mustCreate(t, m, models.RootID, "folder", models.TypeAsset, models.SubtypeFolder)
	image := mustCreate(t, m, folder.ID, "image.png", models.TypeAsset, "")
	keeper := mustCreate(t, m, models.RootID, "keeper.png", models.TypeAsset, "")

	grant := models.WorkspacePermission{CID: image.ID, UserID: 7, View: true}
	if err := m.AddWorkspaceGrant(&grant); err != nil {
		t.Fatalf("adding grant failed: %v", err)
	}
	property := models.Property{CID: image.ID, Name: "alt", Data: models.ToNullString("x")}
	if err := m.AddPropertyToElement(&property); err != nil {
		t.Fatalf("adding property failed: %v", err)
	}
	if err := m.SetThumbnailStatus(image.ID, "ready"); err != nil {
		t.Fatalf("setting thumbnail failed: %v", err)
	}

	removed, err := m.DeleteElement(folder.ID, testUser)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 removed ids, got %v", removed)
	}
	if _, err := m.GetElement(image.ID, false); !errors.Is(err, ErrNoSuchElement) {
		t.Errorf("expected descendant removed")
	}
	if grants, _ := m.GetGrantsForElement(image.ID); len(grants) != 0 {
		t.Errorf("expected grants removed with element, got %+v", grants)
	}
	if properties, _ := m.GetPropertiesForElement(image.ID); len(properties) != 0 {
		t.Errorf("expected properties removed with element, got %+v", properties)
	}
	if status, _ := m.GetThumbnailStatus(image.ID); status != "none" {
		t.Errorf("expected thumbnail record removed, got %q", status)
	}
	if _, err := m.GetElement(keeper.ID, false); err != nil {
		t.Errorf("expected unrelated element to survive: %v", err)
	}
}

func TestInheritedProperties(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	folder := mustCreate(t, m, models.RootID, "folder", models.TypeDocument, models.SubtypeFolder)
	page := mustCreate(t, m, folder.ID, "page", models.TypeDocument, "")

	shared := models.Property{CID: folder.ID, Name: "language", Data: models.ToNullString("en"), Inheritable: true}
	private := models.Property{CID: folder.ID, Name: "navHidden", Data: models.ToNullString("true")}
	if err := m.AddPropertyToElement(&shared); err != nil {
		t.Fatalf("adding property failed: %v", err)
	}
	if err := m.AddPropertyToElement(&private); err != nil {
		t.Fatalf("adding property failed: %v", err)
	}

	loaded, err := m.GetElement(page.ID, true)
	if err != nil {
		t.Fatalf("loading with properties failed: %v", err)
	}
	if len(loaded.Properties) != 1 {
		t.Fatalf("expected only the inheritable property, got %+v", loaded.Properties)
	}
	if loaded.Properties[0].Name != "language" || !loaded.Properties[0].Inherited {
		t.Errorf("expected inherited language property, got %+v", loaded.Properties[0])
	}

	// An own property with the same name shadows the ancestor's.
	own := models.Property{CID: page.ID, Name: "language", Data: models.ToNullString("de")}
	if err := m.AddPropertyToElement(&own); err != nil {
		t.Fatalf("adding property failed: %v", err)
	}
	loaded, _ = m.GetElement(page.ID, true)
	if len(loaded.Properties) != 1 {
		t.Fatalf("expected one resolved property, got %+v", loaded.Properties)
	}
	p := loaded.Properties[0]
	if p.Inherited || p.Data.String != "de" {
		t.Errorf("expected own property to shadow ancestor, got %+v", p)
	}
}

func TestThumbnailStatus(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	image := mustCreate(t, m, models.RootID, "image.png", models.TypeAsset, "")

	if status, _ := m.GetThumbnailStatus(image.ID); status != "none" {
		t.Errorf("expected default status none, got %q", status)
	}
	if err := m.SetThumbnailStatus(image.ID, "ready"); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if status, _ := m.GetThumbnailStatus(image.ID); status != "ready" {
		t.Errorf("expected status ready, got %q", status)
	}
}

func TestGetDBState(t *testing.T) {
	m := NewMemoryDataAccessLayer()
	state, err := m.GetDBState()
	if err != nil {
		t.Fatalf("db state failed: %v", err)
	}
	if state.SchemaVersion != SchemaVersion {
		t.Errorf("expected schema version %s, got %s", SchemaVersion, state.SchemaVersion)
	}
	if state.Identifier != "memory" {
		t.Errorf("expected identifier memory, got %s", state.Identifier)
	}
}
