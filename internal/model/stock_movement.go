package model

import (
	"strings"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// ParseMovementType normalizes a caller-supplied movement type string.
func ParseMovementType(s string) (MovementType, bool) {
	switch MovementType(strings.ToUpper(strings.TrimSpace(s))) {
	case MovementIn:
		return MovementIn, true
	case MovementOut:
		return MovementOut, true
	case MovementAdjustment:
		return MovementAdjustment, true
	}
	return "", false
}

// StockMovement is an append-only record of a single stock change.
// Quantity always holds the magnitude of the change: for ADJUSTMENT
// (an absolute target) it records |NewStock - PreviousStock|.
type StockMovement struct {
	BaseModel
	BookID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"book_id"`
	Book          *Book        `gorm:"foreignKey:BookID" json:"book,omitempty"`
	MovementType  MovementType `gorm:"type:varchar(20);not null" json:"movement_type"`
	Quantity      int          `gorm:"not null" json:"quantity"`
	PreviousStock int          `gorm:"not null" json:"previous_stock"`
	NewStock      int          `gorm:"not null" json:"new_stock"`
	Reason        string       `gorm:"type:varchar(500)" json:"reason"`
}
