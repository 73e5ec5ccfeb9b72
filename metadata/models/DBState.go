package models

import "time"

// DBState reflects the dbstate table, identifying the schema revision and
// database instance the application is talking to.
type DBState struct {
	// CreateDate is the date the schema was first created.
	CreateDate time.Time `db:"createdDate"`
	// ModifiedDate is the date of the last schema change.
	ModifiedDate time.Time `db:"modifiedDate"`
	// SchemaVersion is the schema revision in place.
	SchemaVersion string `db:"schemaVersion"`
	// Identifier is a unique id for this database instance.
	Identifier string `db:"identifier"`
}
