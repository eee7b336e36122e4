package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"santaswishlist/internal/database"
	"santaswishlist/internal/models"
	"santaswishlist/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                `json:"version"`
	ExportedAt   time.Time             `json:"exported_at"`
	DatabaseType string                `json:"database_type"`
	Users        []UserBackup          `json:"users"`
	Wishes       []WishBackup          `json:"wishes"`
	Records      []repository.KVRecord `json:"records"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Username      string    `json:"username"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WishBackup represents a wish record for backup
type WishBackup struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{db: db, logger: logger}
}

// Export writes a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	s.logger.Info("database exported", zap.String("path", outputPath))
	return nil
}

// ExportToWriter writes a complete backup of the database as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup, err := s.collect()
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("backup written",
		zap.Int("users", len(backup.Users)),
		zap.Int("wishes", len(backup.Wishes)),
		zap.Int("records", len(backup.Records)))
	return nil
}

func (s *BackupService) collect() (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.Name(),
		Users:        []UserBackup{},
		Wishes:       []WishBackup{},
		Records:      []repository.KVRecord{},
	}

	users, err := repository.NewUserRepository(s.db).GetAllUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:            u.ID,
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			Username:      u.Username,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			CreatedAt:     u.CreatedAt,
			UpdatedAt:     u.UpdatedAt,
		})
	}

	wishes, err := repository.NewWishRepository(s.db).GetAllWishes()
	if err != nil {
		return nil, fmt.Errorf("failed to export wishes: %w", err)
	}
	for _, w := range wishes {
		backup.Wishes = append(backup.Wishes, WishBackup{
			ID:          w.ID,
			UserID:      w.UserID,
			Title:       w.Title,
			Description: w.Description,
			Category:    string(w.Category),
			Status:      string(w.Status),
			CreatedAt:   w.CreatedAt,
			UpdatedAt:   w.UpdatedAt,
		})
	}

	records, err := repository.NewKVRepository(s.db).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to export records: %w", err)
	}
	backup.Records = append(backup.Records, records...)

	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup into an empty database. Everything is
// written in one transaction, so a failed import leaves nothing behind.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("importing backup",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.String("source_database", backup.DatabaseType))

	err := s.db.WithTx(func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		for _, u := range backup.Users {
			if err := users.RestoreUser(models.User{
				ID:            u.ID,
				Email:         u.Email,
				PasswordHash:  u.PasswordHash,
				Username:      u.Username,
				OAuthProvider: u.OAuthProvider,
				OAuthSubject:  u.OAuthSubject,
				CreatedAt:     u.CreatedAt,
				UpdatedAt:     u.UpdatedAt,
			}); err != nil {
				return err
			}
		}

		wishes := repository.NewWishRepository(tx)
		for _, w := range backup.Wishes {
			if err := wishes.CreateWish(&models.Wish{
				ID:          w.ID,
				UserID:      w.UserID,
				Title:       w.Title,
				Description: w.Description,
				Category:    models.WishCategory(w.Category),
				Status:      models.WishStatus(w.Status),
				CreatedAt:   w.CreatedAt,
				UpdatedAt:   w.UpdatedAt,
			}); err != nil {
				return fmt.Errorf("failed to import wish %s: %w", w.ID, err)
			}
		}

		records := repository.NewKVRepository(tx)
		for _, rec := range backup.Records {
			if err := records.Set(rec.UserID, rec.Key, []byte(rec.Value)); err != nil {
				return err
			}
		}

		return resetSequences(tx)
	})
	if err != nil {
		return fmt.Errorf("failed to import backup: %w", err)
	}

	s.logger.Info("backup imported",
		zap.Int("users", len(backup.Users)),
		zap.Int("wishes", len(backup.Wishes)),
		zap.Int("records", len(backup.Records)))
	return nil
}

// resetSequences moves PostgreSQL's users id sequence past restored ids.
// SQLite and MySQL track the next id from the data itself.
func resetSequences(tx *database.Tx) error {
	if tx.GetDialect().Name() != "postgres" {
		return nil
	}
	_, err := tx.Exec(`SELECT setval(pg_get_serial_sequence('users', 'id'), COALESCE(MAX(id), 1)) FROM users`)
	if err != nil {
		return fmt.Errorf("failed to reset users sequence: %w", err)
	}
	return nil
}

// Clear deletes every row the backup covers, children first
func (s *BackupService) Clear() error {
	tables := []string{"kv_store", "wishes", "sessions", "users"}

	return s.db.WithTx(func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			s.logger.Info("cleared table", zap.String("table", table))
		}
		return nil
	})
}
