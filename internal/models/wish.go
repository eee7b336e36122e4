package models

import "time"

// WishCategory groups wishes by the kind of gift
type WishCategory string

const (
	CategoryToys        WishCategory = "toys"
	CategoryBooks       WishCategory = "books"
	CategoryElectronics WishCategory = "electronics"
	CategoryClothes     WishCategory = "clothes"
	CategoryOther       WishCategory = "other"
)

// WishCategories lists every category in display order
var WishCategories = []WishCategory{
	CategoryToys,
	CategoryBooks,
	CategoryElectronics,
	CategoryClothes,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories
func (c WishCategory) IsValid() bool {
	for _, known := range WishCategories {
		if c == known {
			return true
		}
	}
	return false
}

// WishStatus is the lifecycle position of a wish
type WishStatus string

const (
	StatusPending   WishStatus = "pending"
	StatusApproved  WishStatus = "approved"
	StatusDelivered WishStatus = "delivered"
)

// WishStatuses lists the statuses in lifecycle order
var WishStatuses = []WishStatus{StatusPending, StatusApproved, StatusDelivered}

// IsValid reports whether s is one of the known statuses
func (s WishStatus) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of s in the lifecycle, or -1 for unknown statuses
func (s WishStatus) Rank() int {
	for i, known := range WishStatuses {
		if s == known {
			return i
		}
	}
	return -1
}

// Wish is a single gift request
type Wish struct {
	ID          string       `json:"id"`
	UserID      int64        `json:"-"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    WishCategory `json:"category"`
	Status      WishStatus   `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// WishFilter narrows a wish listing; empty fields match everything
type WishFilter struct {
	Category WishCategory
	Status   WishStatus
}

// Matches reports whether the wish passes the filter
func (f WishFilter) Matches(w Wish) bool {
	if f.Category != "" && w.Category != f.Category {
		return false
	}
	if f.Status != "" && w.Status != f.Status {
		return false
	}
	return true
}

// WishUpdate carries a partial update; nil fields are left unchanged
type WishUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Category    *WishCategory `json:"category,omitempty"`
	Status      *WishStatus   `json:"status,omitempty"`
}
