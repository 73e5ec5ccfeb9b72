package config

import (
	"strings"

	// mysql driver registration for sqlx.Open
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	defaultDBDriver = "mysql"
	defaultDBHost   = "metadatadb"
	defaultDBPort   = "3306"
)

// AppConfiguration is a structure that defines the known configuration format
// for this application.
type AppConfiguration struct {
	DatabaseConnection DatabaseConfiguration   `yaml:"database"`
	DraftStore         DraftStoreConfiguration `yaml:"draft_store"`
	EventQueue         EventQueueConfiguration `yaml:"event_queue"`
}

// DatabaseConfiguration is a structure that defines the attributes
// needed for setting up database connection
type DatabaseConfiguration struct {
	// Driver specifies the database driver. Only "mysql" is supported.
	Driver string `yaml:"driver"`
	// Username is the database username.
	Username string `yaml:"username"`
	// Password is the database password. If the configuration is intended
	// to execute DDL, a user with write permissions is required.
	Password string `yaml:"password"`
	// Protocol specifies the network protocol. Only "tcp" is supported.
	Protocol string `yaml:"protocol"`
	// Host is the database hostname.
	Host string `yaml:"host"`
	// Port is the database port. Commonly 3306 for MySQL.
	Port string `yaml:"port"`
	// Schema is the database name to connect to. A single server can host
	// many logical schemas. The element drive default is "metadatadb".
	Schema string `yaml:"schema"`
	// Params are custom connection params injected into the DSN. These
	// will vary depending on your server's configuration.
	Params string `yaml:"conn_params"`
}

// DraftStoreConfiguration configures the Redis backed session draft store.
// When Addr is empty, drafts are held in process memory only.
type DraftStoreConfiguration struct {
	// Addr is the host:port pair of the Redis server.
	Addr string `yaml:"addr"`
	// Password is the Redis AUTH password, if any.
	Password string `yaml:"password"`
	// Database is the numeric Redis database to select.
	Database int `yaml:"database"`
	// TTLSeconds is how long a draft survives without activity. Zero keeps
	// drafts until removed.
	TTLSeconds int64 `yaml:"ttl_seconds"`
}

// EventQueueConfiguration configures publishing to the Kafka event queue.
type EventQueueConfiguration struct {
	// KafkaAddrs is a list of host:port pairs of Kafka brokers. If empty,
	// events are discarded.
	KafkaAddrs []string `yaml:"kafka_addrs"`
	// PublishSuccessActions, if provided, specifies the types of success actions
	// to publish to Kafka. If empty, all success actions are published.
	PublishSuccessActions []string `yaml:"publish_success_actions"`
	// PublishFailureActions, if provided, specifies the types of failure actions
	// to publish to Kafka. If empty, all failure actions are published.
	PublishFailureActions []string `yaml:"publish_failure_actions"`
	// Topic denotes the name of the topic to publish events to in Kafka.
	Topic string `yaml:"topic"`
}

// NewAppConfiguration loads the YAML configuration file at path and applies
// environment variable overrides on top of it. An empty path yields a
// configuration built from environment variables and defaults alone.
func NewAppConfiguration(path string) (AppConfiguration, error) {
	var conf AppConfiguration
	if len(path) > 0 {
		loaded, err := LoadYAMLConfig(path)
		if err != nil {
			return conf, err
		}
		conf = loaded
	}
	applyEnvOverrides(&conf)
	setDefaults(&conf)
	return conf, nil
}

func applyEnvOverrides(conf *AppConfiguration) {
	db := &conf.DatabaseConnection
	db.Driver = getEnvOrDefault(ED_DB_DRIVER, db.Driver)
	db.Username = getEnvOrDefault(ED_DB_USERNAME, db.Username)
	db.Password = getEnvOrDefault(ED_DB_PASSWORD, db.Password)
	db.Protocol = getEnvOrDefault(ED_DB_PROTOCOL, db.Protocol)
	db.Host = getEnvOrDefault(ED_DB_HOST, db.Host)
	db.Port = getEnvOrDefault(ED_DB_PORT, db.Port)
	db.Schema = getEnvOrDefault(ED_DB_SCHEMA, db.Schema)
	db.Params = getEnvOrDefault(ED_DB_CONN_PARAMS, db.Params)

	ds := &conf.DraftStore
	ds.Addr = getEnvOrDefault(ED_DRAFT_REDIS_ADDR, ds.Addr)
	ds.Password = getEnvOrDefault(ED_DRAFT_REDIS_PASSWORD, ds.Password)
	ds.Database = int(getEnvOrDefaultInt(ED_DRAFT_REDIS_DATABASE, int64(ds.Database)))
	ds.TTLSeconds = getEnvOrDefaultInt(ED_DRAFT_TTL, ds.TTLSeconds)

	eq := &conf.EventQueue
	if addrs := getEnvOrDefault(ED_EVENT_KAFKA_ADDRS, ""); len(addrs) > 0 {
		eq.KafkaAddrs = strings.Split(addrs, ",")
	}
	eq.Topic = getEnvOrDefault(ED_EVENT_TOPIC, eq.Topic)
}

func setDefaults(conf *AppConfiguration) {
	db := &conf.DatabaseConnection
	if len(db.Driver) == 0 {
		db.Driver = defaultDBDriver
	}
	if len(db.Protocol) == 0 {
		db.Protocol = "tcp"
	}
	if len(db.Schema) == 0 {
		db.Schema = "metadatadb"
	}
	eq := &conf.EventQueue
	if len(eq.Topic) == 0 {
		eq.Topic = "element-event"
	}
	if len(eq.PublishSuccessActions) == 0 {
		eq.PublishSuccessActions = []string{"*"}
	}
}

// GetDatabaseHandle initializes database connection using the configuration
func (r *DatabaseConfiguration) GetDatabaseHandle() (*sqlx.DB, error) {
	db, err := sqlx.Open(r.Driver, r.buildDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(int(getEnvOrDefaultInt(ED_DB_MAXIDLECONNS, 10)))
	db.SetMaxOpenConns(int(getEnvOrDefaultInt(ED_DB_MAXOPENCONNS, 10)))
	return db, nil
}

// buildDSN prepares a Data Source Name (DSN) suitable for mysql using the
// driver github.com/go-sql-driver/mysql
func (r *DatabaseConfiguration) buildDSN() string {
	var dbDSN = ""
	if len(r.Username) > 0 {
		dbDSN += r.Username
		if len(r.Password) > 0 {
			dbDSN += ":" + r.Password
		}
	}
	if len(dbDSN) > 0 {
		dbDSN += "@"
	}
	if len(r.Protocol) > 0 {
		dbDSN += r.Protocol + "("
		if len(r.Host) > 0 {
			dbDSN += r.Host
		} else {
			// default to the conventional container hostname
			dbDSN += defaultDBHost
		}
		dbDSN += ":"
		if len(r.Port) > 0 {
			dbDSN += r.Port
		} else {
			dbDSN += defaultDBPort
		}
		dbDSN += ")"
	}
	dbDSN += "/"
	if len(r.Schema) > 0 {
		dbDSN += r.Schema
	}
	if len(r.Params) > 0 {
		dbDSN += "?" + r.Params
	}
	logDSN := dbDSN
	if len(r.Password) > 0 {
		logDSN = strings.Replace(logDSN, r.Password, "{password}", -1)
	}
	if len(r.Username) > 0 {
		logDSN = strings.Replace(logDSN, r.Username, "{username}", -1)
	}
	RootLogger.Info("using this connection string", zap.String("dbdsn", logDSN))
	return dbDSN
}
