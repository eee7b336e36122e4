package repository

import (
	"database/sql"
	"fmt"

	"santaswishlist/internal/database"
	"santaswishlist/internal/models"
)

const wishColumns = `id, user_id, title, description, category, status, created_at, updated_at`

// WishRepository handles database operations for wishes
type WishRepository struct {
	db database.DBTX
}

// NewWishRepository creates a new wish repository
func NewWishRepository(db database.DBTX) *WishRepository {
	return &WishRepository{db: db}
}

func scanWish(row rowScanner) (*models.Wish, error) {
	wish := &models.Wish{}
	err := row.Scan(
		&wish.ID,
		&wish.UserID,
		&wish.Title,
		&wish.Description,
		&wish.Category,
		&wish.Status,
		&wish.CreatedAt,
		&wish.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return wish, nil
}

// CreateWish inserts a wish; the caller assigns ID and timestamps
func (r *WishRepository) CreateWish(wish *models.Wish) error {
	query := `
		INSERT INTO wishes (` + wishColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, wish.ID, wish.UserID, wish.Title, wish.Description,
		wish.Category, wish.Status, wish.CreatedAt, wish.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wish: %w", err)
	}
	return nil
}

// GetWish retrieves a wish by ID regardless of owner
func (r *WishRepository) GetWish(id string) (*models.Wish, error) {
	query := `SELECT ` + wishColumns + ` FROM wishes WHERE id = ?`
	wish, err := scanWish(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wish: %w", err)
	}
	return wish, nil
}

// GetUserWishes retrieves all wishes of a user, newest first
func (r *WishRepository) GetUserWishes(userID int64) ([]models.Wish, error) {
	query := `SELECT ` + wishColumns + ` FROM wishes WHERE user_id = ? ORDER BY created_at DESC, id`
	return r.queryWishes(query, userID)
}

// GetAllWishes retrieves every wish, used by backup export
func (r *WishRepository) GetAllWishes() ([]models.Wish, error) {
	return r.queryWishes(`SELECT ` + wishColumns + ` FROM wishes ORDER BY user_id, created_at`)
}

func (r *WishRepository) queryWishes(query string, args ...interface{}) ([]models.Wish, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishes: %w", err)
	}
	defer rows.Close()

	wishes := []models.Wish{}
	for rows.Next() {
		wish, err := scanWish(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wish: %w", err)
		}
		wishes = append(wishes, *wish)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishes: %w", err)
	}

	return wishes, nil
}

// UpdateWish writes the mutable fields of a wish
func (r *WishRepository) UpdateWish(wish *models.Wish) error {
	query := `
		UPDATE wishes
		SET title = ?, description = ?, category = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, wish.Title, wish.Description, wish.Category, wish.Status, wish.UpdatedAt, wish.ID)
	if err != nil {
		return fmt.Errorf("failed to update wish: %w", err)
	}
	return nil
}

// DeleteWish removes a wish
func (r *WishRepository) DeleteWish(id string) error {
	if _, err := r.db.Exec("DELETE FROM wishes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete wish: %w", err)
	}
	return nil
}
