package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

const testYAML = `
database:
  driver: mysql
  username: elementdrive
  password: secret
  protocol: tcp
  host: db.internal
  port: "3306"
  schema: metadatadb
  conn_params: parseTime=true
draft_store:
  addr: redis.internal:6379
  database: 2
  ttl_seconds: 3600
event_queue:
  kafka_addrs:
    - kafka1:9092
    - kafka2:9092
  publish_success_actions:
    - create
    - update
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elementdrive.yml")
	if err := ioutil.WriteFile(path, []byte(testYAML), 0600); err != nil {
		t.Fatalf("writing test config failed: %v", err)
	}
	return path
}

func TestLoadYAMLConfig(t *testing.T) {
	conf, err := LoadYAMLConfig(writeTestConfig(t))
	if err != nil {
		t.Fatalf("loading config failed: %v", err)
	}
	if conf.DatabaseConnection.Host != "db.internal" {
		t.Errorf("expected host db.internal, got %q", conf.DatabaseConnection.Host)
	}
	if conf.DatabaseConnection.Params != "parseTime=true" {
		t.Errorf("expected conn params parsed, got %q", conf.DatabaseConnection.Params)
	}
	if conf.DraftStore.Addr != "redis.internal:6379" || conf.DraftStore.Database != 2 {
		t.Errorf("unexpected draft store configuration: %+v", conf.DraftStore)
	}
	if len(conf.EventQueue.KafkaAddrs) != 2 {
		t.Errorf("expected 2 kafka addrs, got %v", conf.EventQueue.KafkaAddrs)
	}
}

func TestLoadYAMLConfigMissingFile(t *testing.T) {
	if _, err := LoadYAMLConfig("/does/not/exist.yml"); err == nil {
		t.Errorf("expected error for missing config file")
	}
}

func TestNewAppConfigurationDefaults(t *testing.T) {
	conf, err := NewAppConfiguration("")
	if err != nil {
		t.Fatalf("building default configuration failed: %v", err)
	}
	if conf.DatabaseConnection.Driver != "mysql" {
		t.Errorf("expected default driver mysql, got %q", conf.DatabaseConnection.Driver)
	}
	if conf.DatabaseConnection.Protocol != "tcp" {
		t.Errorf("expected default protocol tcp, got %q", conf.DatabaseConnection.Protocol)
	}
	if conf.EventQueue.Topic != "element-event" {
		t.Errorf("expected default topic element-event, got %q", conf.EventQueue.Topic)
	}
	if len(conf.EventQueue.PublishSuccessActions) != 1 || conf.EventQueue.PublishSuccessActions[0] != "*" {
		t.Errorf("expected all success actions by default, got %v", conf.EventQueue.PublishSuccessActions)
	}
}

func TestBuildDSN(t *testing.T) {
	r := DatabaseConfiguration{
		Driver:   "mysql",
		Username: "elementdrive",
		Password: "secret",
		Protocol: "tcp",
		Host:     "db.internal",
		Port:     "3306",
		Schema:   "metadatadb",
		Params:   "parseTime=true",
	}
	expected := "elementdrive:secret@tcp(db.internal:3306)/metadatadb?parseTime=true"
	if got := r.buildDSN(); got != expected {
		t.Errorf("expected DSN %q, got %q", expected, got)
	}

	bare := DatabaseConfiguration{Driver: "mysql", Protocol: "tcp", Schema: "metadatadb"}
	expected = "tcp(metadatadb:3306)/metadatadb"
	if got := bare.buildDSN(); got != expected {
		t.Errorf("expected DSN %q, got %q", expected, got)
	}
}
