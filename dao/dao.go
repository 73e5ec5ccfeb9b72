package dao

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/karlseguin/ccache/v2"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/config"
	"github.com/elementdrive/element-drive-server/events"
	"github.com/elementdrive/element-drive-server/metadata/models"
)

// SchemaVersion marks compatibility with previously created databases.
// On startup, we should be checking the schema, and raise some alarm if
// the schema is out of date, or trigger a migration, etc.
var SchemaVersion = "20260831"

// DAO defines the contract our app has with the element store.
type DAO interface {
	AddPropertyToElement(property *models.Property) error
	AddWorkspaceGrant(grant *models.WorkspacePermission) error
	CreateElement(element *models.Element, user models.User) error
	DeleteElement(id int64, user models.User) ([]int64, error)
	DeleteProperty(id int64) error
	DeleteWorkspaceGrant(id int64) error
	GetAncestorChain(id int64) ([]int64, error)
	GetChildElements(parentID int64, pagingRequest PagingRequest) ([]models.Element, error)
	GetDBState() (models.DBState, error)
	GetDescendantGrants(pathPrefix string, userIDs []int64) ([]models.WorkspacePermission, error)
	GetElement(id int64, loadProperties bool) (models.Element, error)
	GetGrantsForElement(cid int64) ([]models.WorkspacePermission, error)
	GetLock(id int64) (models.LockState, error)
	GetPropertiesForElement(id int64) ([]models.Property, error)
	GetSaveCopyName(elementType models.ElementType, key string, parentID int64) (string, error)
	GetThumbnailStatus(assetID int64) (string, error)
	GetWorkspaceGrants(cids []int64, userIDs []int64) ([]models.WorkspacePermission, error)
	IsBasedOnLatestData(element models.Element) (bool, error)
	IsLocked(id int64) (bool, error)
	IsParentADescendant(id int64, candidateParentID int64) (bool, error)
	MaxVersionCount(elementID int64) (int64, error)
	MoveElement(id int64, newParentID int64, user models.User) ([]int64, error)
	RenameElement(id int64, newKey string, user models.User) ([]int64, error)
	SaveElement(element *models.Element, user models.User) error
	SetLock(id int64, state models.LockState) error
	SetThumbnailStatus(assetID int64, status string) error
	UnlockPropagate(id int64) ([]int64, error)
	UpdateChildPaths(oldFullPath string, newFullPath string, user models.User) ([]int64, error)
	UpdateElement(element *models.Element, user models.User) error
	GetLogger() *zap.Logger
}

// DataAccessLayer is a concrete DAO implementation with a true DB connection.
type DataAccessLayer struct {
	// MetadataDB is the connection.
	MetadataDB *sqlx.DB
	// Logger has a default, but can be updated by passing options to constructor.
	Logger *zap.Logger
	// Publisher receives element change events after committed mutations.
	Publisher events.Publisher
	// thumbnailCache is a bounded read-through cache for asset thumbnail
	// status lookups, invalidated whenever the asset mutates.
	thumbnailCache *ccache.Cache
}

// Opt sets an option on DataAccessLayer.
type Opt func(*DataAccessLayer)

// WithLogger sets a custom logger on DataAccessLayer.
func WithLogger(logger *zap.Logger) Opt {
	return func(d *DataAccessLayer) {
		d.Logger = logger
	}
}

// WithPublisher sets an event publisher on DataAccessLayer.
func WithPublisher(publisher events.Publisher) Opt {
	return func(d *DataAccessLayer) {
		d.Publisher = publisher
	}
}

// NewDataAccessLayer constructs a new DataAccessLayer with defaults and options. A string database
// identifier is also returned.
func NewDataAccessLayer(conf config.DatabaseConfiguration, opts ...Opt) (*DataAccessLayer, string, error) {

	db, err := conf.GetDatabaseHandle()
	if err != nil {
		return nil, "", err
	}
	d := DataAccessLayer{MetadataDB: db}

	defaults(&d)
	for _, opt := range opts {
		opt(&d)
	}

	err = pingDB(&d)
	if err != nil {
		return nil, "", fmt.Errorf("could not ping database: %v", err)
	}

	state, err := d.GetDBState()
	if err != nil {
		return nil, "", fmt.Errorf("getting db state failed: %v", err)
	}

	return &d, state.Identifier, nil
}

func defaults(d *DataAccessLayer) {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	d.Logger = logger
	d.Publisher = events.NullPublisher{}
	d.thumbnailCache = ccache.New(ccache.Configure().MaxSize(1000).ItemsToPrune(50))
}

// GetLogger is a logger, probably for this session
func (d *DataAccessLayer) GetLogger() *zap.Logger {
	return d.Logger
}

func daoCompileCheck() DAO {
	// function exists to make compiler complain when interface changes.
	return &DataAccessLayer{}
}

func pingDB(d *DataAccessLayer) error {

	logger := d.GetLogger()

	attempts := 0
	max := 20
	sleep := 3

	var err error

	for attempts < max {

		attempts++

		err = d.MetadataDB.Ping()
		if err != nil {
			logger.Info("db sleep for retry")
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}
		_, err = d.GetDBState()
		if err != nil {
			logger.Info("db available but schema not populated")
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}
		break
	}
	return err
}

// publish emits an element change event if a publisher is configured.
func (d *DataAccessLayer) publish(action string, element models.Element, user models.User) {
	if d.Publisher == nil {
		return
	}
	d.Publisher.Publish(events.ElementEvent{
		Action:       action,
		ElementID:    element.ID,
		ElementType:  string(element.Type),
		Path:         element.Fullpath(),
		VersionCount: element.VersionCount,
		ModifiedBy:   user.ID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Success:      true,
	})
}

// invalidateThumbnail drops the cached thumbnail status for a mutated asset.
func (d *DataAccessLayer) invalidateThumbnail(id int64) {
	if d.thumbnailCache != nil {
		d.thumbnailCache.Delete(thumbnailCacheKey(id))
	}
}

func thumbnailCacheKey(id int64) string {
	return fmt.Sprintf("thumbnail-status-%d", id)
}
