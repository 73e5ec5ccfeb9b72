package config

import (
	"os"
	"strconv"
)

// Environment variables
const (
	ED_CONF                 = "ED_CONF"
	ED_DB_CONN_PARAMS       = "ED_DB_CONN_PARAMS"
	ED_DB_DRIVER            = "ED_DB_DRIVER"
	ED_DB_HOST              = "ED_DB_HOST"
	ED_DB_MAXIDLECONNS      = "ED_DB_MAXIDLECONNS"
	ED_DB_MAXOPENCONNS      = "ED_DB_MAXOPENCONNS"
	ED_DB_PASSWORD          = "ED_DB_PASSWORD"
	ED_DB_PORT              = "ED_DB_PORT"
	ED_DB_PROTOCOL          = "ED_DB_PROTOCOL"
	ED_DB_SCHEMA            = "ED_DB_SCHEMA"
	ED_DB_USERNAME          = "ED_DB_USERNAME"
	ED_DRAFT_REDIS_ADDR     = "ED_DRAFT_REDIS_ADDR"
	ED_DRAFT_REDIS_DATABASE = "ED_DRAFT_REDIS_DATABASE"
	ED_DRAFT_REDIS_PASSWORD = "ED_DRAFT_REDIS_PASSWORD"
	ED_DRAFT_TTL            = "ED_DRAFT_TTL"
	ED_EVENT_KAFKA_ADDRS    = "ED_EVENT_KAFKA_ADDRS"
	ED_EVENT_TOPIC          = "ED_EVENT_TOPIC"
	ED_LOG_LEVEL            = "ED_LOG_LEVEL"
)

func getEnvOrDefault(name, defaultValue string) string {
	envVal := os.Getenv(name)
	if len(envVal) == 0 {
		return defaultValue
	}
	return envVal
}

func getEnvOrDefaultInt(envVar string, defaultVal int64) int64 {
	if parsed, err := strconv.ParseInt(os.Getenv(envVar), 10, 64); err == nil {
		return parsed
	}
	return defaultVal
}
