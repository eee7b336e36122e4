package models

import "time"

// ActivityAction describes what happened to a wish in the activity feed
type ActivityAction string

const (
	ActionCreated   ActivityAction = "created"
	ActionUpdated   ActivityAction = "updated"
	ActionDelivered ActivityAction = "delivered"
)

// ActivityEntry is one line of the recent activity feed
type ActivityEntry struct {
	Date   time.Time      `json:"date"`
	Action ActivityAction `json:"action"`
	WishID string         `json:"wishId"`
}

// WishStatistics is derived from a wish collection on every read
type WishStatistics struct {
	TotalWishes    int                  `json:"totalWishes"`
	ByCategory     map[WishCategory]int `json:"byCategory"`
	ByStatus       map[WishStatus]int   `json:"byStatus"`
	RecentActivity []ActivityEntry      `json:"recentActivity"`
}
