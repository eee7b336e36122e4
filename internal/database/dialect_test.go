package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		dialect          Dialect
		driver           string
		name             string
		lastInsertID     bool
		migrationsSubdir string
	}{
		{NewSQLiteDialect(), "sqlite3", "sqlite", true, "sqlite"},
		{NewPostgresDialect(), "postgres", "postgres", false, "postgres"},
		{NewMySQLDialect(), "mysql", "mysql", true, "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.driver, tt.dialect.DriverName())
			assert.Equal(t, tt.name, tt.dialect.Name())
			assert.Equal(t, tt.lastInsertID, tt.dialect.SupportsLastInsertId())
			assert.Equal(t, tt.migrationsSubdir, tt.dialect.MigrationsSubdir())
			assert.Contains(t, tt.dialect.CreateMigrationsTableQuery(), "migrations")
			assert.Contains(t, tt.dialect.UpsertKVQuery(), "kv_store")
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		config  DialectConfig
		want    string
	}{
		{
			name:    "SQLite adds connection parameters",
			dialect: NewSQLiteDialect(),
			config:  DialectConfig{Path: "/data/santa.db"},
			want:    "file:/data/santa.db?" + sqliteConnParams,
		},
		{
			name:    "SQLite keeps explicit parameters",
			dialect: NewSQLiteDialect(),
			config:  DialectConfig{Path: "file:santa.db?mode=ro"},
			want:    "file:santa.db?mode=ro",
		},
		{
			name:    "PostgreSQL passes URL through",
			dialect: NewPostgresDialect(),
			config:  DialectConfig{URL: "postgres://santa@localhost/wishes"},
			want:    "postgres://santa@localhost/wishes",
		},
		{
			name:    "MySQL forces parseTime",
			dialect: NewMySQLDialect(),
			config:  DialectConfig{URL: "santa:secret@tcp(localhost:3306)/wishes"},
			want:    "santa:secret@tcp(localhost:3306)/wishes?parseTime=true",
		},
		{
			name:    "MySQL leaves unparseable URL alone",
			dialect: NewMySQLDialect(),
			config:  DialectConfig{URL: "not a dsn"},
			want:    "not a dsn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.DSN(tt.config))
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM wishes WHERE id = ?",
			expected: "SELECT * FROM wishes WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM wishes WHERE id = ?",
			expected: "SELECT * FROM wishes WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO wishes (title, category) VALUES (?, ?)",
			expected: "INSERT INTO wishes (title, category) VALUES ($1, $2)",
		},
		{
			name:     "PostgreSQL upsert",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO kv_store (user_id, record_key, record_value) VALUES (?, ?, ?)",
			expected: "INSERT INTO kv_store (user_id, record_key, record_value) VALUES ($1, $2, $3)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE wishes SET title = ?, status = ? WHERE id = ?",
			expected: "UPDATE wishes SET title = ?, status = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.RewriteQuery(tt.query))
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- users
CREATE TABLE a (id INTEGER);

-- wishes
CREATE TABLE b (id INTEGER);
CREATE INDEX idx_b ON b(id);
`
	stmts := splitStatements(content)
	assert.Equal(t, []string{
		"CREATE TABLE a (id INTEGER)",
		"CREATE TABLE b (id INTEGER)",
		"CREATE INDEX idx_b ON b(id)",
	}, stmts)
}
