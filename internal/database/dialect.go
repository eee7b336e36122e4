package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"time"
)

// Dialect hides the differences between the supported SQL backends
type Dialect interface {
	Name() string
	DriverName() string
	DSN(config DialectConfig) string

	// RewriteQuery turns the ? placeholders used throughout the repositories
	// into the backend's own syntax
	RewriteQuery(query string) string

	// SupportsLastInsertId is false when inserts need RETURNING id
	SupportsLastInsertId() bool

	ConfigureConnection(db *sql.DB) error
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string

	// UpsertKVQuery writes one kv_store row; args are (user_id, record_key, record_value)
	UpsertKVQuery() string
}

// DialectConfig carries the connection target. SQLite reads Path, the
// server backends read URL.
type DialectConfig struct {
	Path string
	URL  string
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

var defaultPool = poolSettings{
	maxOpen:     25,
	maxIdle:     5,
	maxLifetime: 5 * time.Minute,
	maxIdleTime: time.Minute,
}

func (p poolSettings) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(p.maxIdleTime)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
