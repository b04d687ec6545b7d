// Package billingkey models the gateway-issued tokens that stand in for a
// member's card on recurring charges.
package billingkey

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusRemoved Status = "REMOVED"
)

var ErrBillingKeyNotFound = errors.New("billing key not found")

// BillingKey is a stored BID. Raw card data is never kept.
type BillingKey struct {
	id           uint
	memberID     uint
	bid          string
	cardCode     string
	cardName     string
	cardNoMasked string
	status       Status
	createdAt    time.Time
	removedAt    *time.Time
}

// NewBillingKey creates an ACTIVE billing key for a member
func NewBillingKey(memberID uint, bid, cardCode, cardName, cardNoMasked string) (*BillingKey, error) {
	if memberID == 0 {
		return nil, fmt.Errorf("member ID is required")
	}
	if bid == "" {
		return nil, fmt.Errorf("BID is required")
	}
	return &BillingKey{
		memberID:     memberID,
		bid:          bid,
		cardCode:     cardCode,
		cardName:     cardName,
		cardNoMasked: cardNoMasked,
		status:       StatusActive,
		createdAt:    time.Now().UTC().Truncate(time.Second),
	}, nil
}

// ReconstructBillingKey reconstructs a billing key from persistence
func ReconstructBillingKey(id, memberID uint, bid, cardCode, cardName, cardNoMasked string, status Status, createdAt time.Time, removedAt *time.Time) *BillingKey {
	return &BillingKey{
		id:           id,
		memberID:     memberID,
		bid:          bid,
		cardCode:     cardCode,
		cardName:     cardName,
		cardNoMasked: cardNoMasked,
		status:       status,
		createdAt:    createdAt,
		removedAt:    removedAt,
	}
}

func (k *BillingKey) ID() uint             { return k.id }
func (k *BillingKey) MemberID() uint       { return k.memberID }
func (k *BillingKey) BID() string          { return k.bid }
func (k *BillingKey) CardCode() string     { return k.cardCode }
func (k *BillingKey) CardName() string     { return k.cardName }
func (k *BillingKey) CardNoMasked() string { return k.cardNoMasked }
func (k *BillingKey) Status() Status       { return k.status }
func (k *BillingKey) CreatedAt() time.Time { return k.createdAt }
func (k *BillingKey) RemovedAt() *time.Time {
	return k.removedAt
}

func (k *BillingKey) SetID(id uint) {
	k.id = id
}

func (k *BillingKey) IsActive() bool {
	return k.status == StatusActive
}

// Remove retires the key. Removing twice keeps the first removal time.
func (k *BillingKey) Remove(at time.Time) {
	if k.status == StatusRemoved {
		return
	}
	removedAt := at.UTC().Truncate(time.Second)
	k.status = StatusRemoved
	k.removedAt = &removedAt
}
