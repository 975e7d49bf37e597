package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory is an append-only record of a single price change.
// Exactly one entry exists per accepted change, including the baseline
// entry (OldPrice = 0) written when the book is created.
type PriceHistory struct {
	BaseModel
	BookID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"book_id"`
	Book         *Book           `gorm:"foreignKey:BookID" json:"book,omitempty"`
	OldPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"old_price"`
	NewPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"new_price"`
	ChangedBy    string          `gorm:"type:varchar(255);not null" json:"changed_by"`
	ChangeReason string          `gorm:"type:varchar(500)" json:"change_reason"`
	ChangedAt    time.Time       `gorm:"index" json:"changed_at"`
}
