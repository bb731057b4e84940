package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
)

var ErrPurchaseSettled = errors.New("purchase already settled")

// Purchase is one attempt by a user to buy a course. The amount is fixed when the
// purchase is created and never recomputed.
type Purchase struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CourseID    string          `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Course      *Course         `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	UserID      string          `gorm:"type:varchar(64);index;not null" json:"userId"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status      PurchaseStatus  `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	ExternalRef *string         `gorm:"type:varchar(255);uniqueIndex" json:"externalRef,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PurchasePending
	}
	return nil
}

func (s PurchaseStatus) Terminal() bool {
	return s == PurchaseCompleted || s == PurchaseFailed
}

// Transition moves a pending purchase to a terminal state. Repeating the transition
// that already happened is a no-op (changed == false); any other move out of a
// terminal state fails with ErrPurchaseSettled.
func (p *Purchase) Transition(to PurchaseStatus) (changed bool, err error) {
	if !to.Terminal() {
		return false, fmt.Errorf("invalid purchase transition to %q", to)
	}
	if p.Status == to {
		return false, nil
	}
	if p.Status.Terminal() {
		return false, fmt.Errorf("%w: %s -> %s", ErrPurchaseSettled, p.Status, to)
	}
	p.Status = to
	return true, nil
}
