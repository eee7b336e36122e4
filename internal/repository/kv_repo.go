package repository

import (
	"database/sql"
	"fmt"
	"time"

	"santaswishlist/internal/database"
)

// KVRecord is one row of the per-user key/value table
type KVRecord struct {
	UserID    int64     `json:"userId"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// KVRepository stores opaque per-user records keyed by name
type KVRepository struct {
	db database.DBTX
}

// NewKVRepository creates a new key/value repository
func NewKVRepository(db database.DBTX) *KVRepository {
	return &KVRepository{db: db}
}

// Get retrieves a value; ok is false when the key has never been set
func (r *KVRepository) Get(userID int64, key string) (value []byte, ok bool, err error) {
	var raw string
	query := `SELECT record_value FROM kv_store WHERE user_id = ? AND record_key = ?`
	err = r.db.QueryRow(query, userID, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return []byte(raw), true, nil
}

// Set inserts or replaces a value
func (r *KVRepository) Set(userID int64, key string, value []byte) error {
	if _, err := r.db.Exec(r.db.GetDialect().UpsertKVQuery(), userID, key, string(value)); err != nil {
		return fmt.Errorf("failed to set record %s: %w", key, err)
	}
	return nil
}

// Delete removes a value; deleting a missing key is not an error
func (r *KVRepository) Delete(userID int64, key string) error {
	query := `DELETE FROM kv_store WHERE user_id = ? AND record_key = ?`
	if _, err := r.db.Exec(query, userID, key); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

// GetAll retrieves every record, used by backup export
func (r *KVRepository) GetAll() ([]KVRecord, error) {
	rows, err := r.db.Query(`SELECT user_id, record_key, record_value, updated_at FROM kv_store ORDER BY user_id, record_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []KVRecord
	for rows.Next() {
		var rec KVRecord
		if err := rows.Scan(&rec.UserID, &rec.Key, &rec.Value, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// ForUser binds the repository to one user, satisfying profilestore.Backend
func (r *KVRepository) ForUser(userID int64) *UserKV {
	return &UserKV{repo: r, userID: userID}
}

// UserKV is a KVRepository scoped to a single user
type UserKV struct {
	repo   *KVRepository
	userID int64
}

func (u *UserKV) Get(key string) ([]byte, bool, error) {
	return u.repo.Get(u.userID, key)
}

func (u *UserKV) Set(key string, value []byte) error {
	return u.repo.Set(u.userID, key, value)
}

func (u *UserKV) Delete(key string) error {
	return u.repo.Delete(u.userID, key)
}
