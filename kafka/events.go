package kafka

import "time"

// FavoriteToggledEvent records a confirmed favorite flag change
type FavoriteToggledEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ProductID  uint      `json:"product_id"`
	UserID     string    `json:"user_id"`
	IsFavorite bool      `json:"is_favorite"`
	Timestamp  time.Time `json:"timestamp"`
}

// ThresholdChangedEvent records a critical threshold edit
type ThresholdChangedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Value     int       `json:"value"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeFavoriteToggled  = "catalog.favorite_toggled"
	EventTypeThresholdChanged = "catalog.threshold_changed"
)

// Kafka topics
const (
	TopicFavoriteToggled  = "catalog-favorite-toggled"
	TopicThresholdChanged = "catalog-threshold-changed"
)
