package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Plan is a subscription tier
type Plan string

// Subscription tiers
const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// PlanLimits describes the allowances attached to a plan
type PlanLimits struct {
	MaxEventsPerMonth  int
	MaxEventCategories int
}

// Per-plan allowances
var (
	FreeLimits = PlanLimits{MaxEventsPerMonth: 100, MaxEventCategories: 3}
	ProLimits  = PlanLimits{MaxEventsPerMonth: 1000, MaxEventCategories: 10}
)

// LimitsFor returns the allowances for a plan
func LimitsFor(plan Plan) PlanLimits {
	if plan == PlanPro {
		return ProLimits
	}
	return FreeLimits
}

// DeliveryStatus is the delivery state of an event notification
type DeliveryStatus string

// Delivery states. An event is created PENDING and transitions exactly once.
const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
)

// User represents an account
type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
	ExternalID      string          `gorm:"not null;uniqueIndex" json:"external_id"`
	Email           string          `gorm:"not null" json:"email"`
	APIKey          string          `gorm:"column:api_key;not null;uniqueIndex" json:"-"`
	DiscordID       *string         `json:"discord_id"`
	Plan            Plan            `gorm:"not null;default:FREE" json:"plan"`
	EventCategories []EventCategory `gorm:"foreignKey:UserID" json:"-"`
	Quotas          []Quota         `gorm:"foreignKey:UserID" json:"-"`
}

// EventCategory is a user-defined label partitioning events
type EventCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Name      string    `gorm:"not null;uniqueIndex:idx_category_name_user" json:"name"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_name_user" json:"user_id"`
	Emoji     *string   `json:"emoji"`
	Color     int       `gorm:"not null" json:"color"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Events    []Event   `gorm:"foreignKey:EventCategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

// Event is a single ingested event and its notification outcome
type Event struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Name             string         `gorm:"not null" json:"name"`
	Fields           []byte         `gorm:"type:jsonb" json:"fields"`
	FormattedMessage string         `gorm:"not null" json:"formatted_message"`
	DeliveryStatus   DeliveryStatus `gorm:"not null;default:PENDING;index" json:"delivery_status"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	EventCategoryID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"event_category_id"`
}

// Quota tracks delivered events per user and calendar period
type Quota struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quota_period" json:"user_id"`
	Month     int       `gorm:"not null;uniqueIndex:idx_quota_period" json:"month"`
	Year      int       `gorm:"not null;uniqueIndex:idx_quota_period" json:"year"`
	Count     int       `gorm:"not null;default:0" json:"count"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&EventCategory{},
		&Event{},
		&Quota{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
