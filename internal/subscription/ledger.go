// Package subscription implements the subscription ledger: assignment,
// the single-active-per-user invariant, and expiry derivation.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dbutil "github.com/pdfgate/pdfgate/internal/db"
	"github.com/pdfgate/pdfgate/internal/models"
	"gorm.io/gorm"
)

// ErrNoActiveSubscription indicates the user has no subscription with the
// active flag set.
var ErrNoActiveSubscription = errors.New("subscription: no active subscription")

// Ledger persists subscription records and enforces the invariant that at
// most one subscription per user is active at any time.
type Ledger struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex // per-user assignment locks
}

// NewLedger constructs a Ledger.
func NewLedger(conn *gorm.DB) *Ledger {
	return &Ledger{
		db:    conn,
		locks: make(map[uint64]*sync.Mutex),
	}
}

// userLock returns the mutex guarding assignments for one user.
func (l *Ledger) userLock(userID uint64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock := l.locks[userID]
	if lock == nil {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// ComputeEndDate derives a subscription end date from the package duration.
// A zero duration means lifetime and yields nil.
func ComputeEndDate(start time.Time, durationDays int) *time.Time {
	if durationDays <= 0 {
		return nil
	}
	end := start.AddDate(0, 0, durationDays)
	return &end
}

// Assign deactivates all prior active subscriptions for the user and creates
// a new active record. When endDate is nil it is computed from the package
// duration. The deactivate-then-create sequence runs in one transaction under
// a per-user lock so a concurrent assignment never observes two active rows.
func (l *Ledger) Assign(ctx context.Context, userID uint64, pkg *models.Package, start time.Time, endDate *time.Time) (*models.Subscription, error) {
	if pkg == nil {
		return nil, fmt.Errorf("subscription: nil package")
	}

	if endDate == nil {
		endDate = ComputeEndDate(start, pkg.Duration)
	}

	sub := models.Subscription{
		UserID:    userID,
		PackageID: pkg.ID,
		StartDate: start,
		EndDate:   endDate,
		IsActive:  true,
	}

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDeactivate := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; errDeactivate != nil {
			return errDeactivate
		}
		return tx.Create(&sub).Error
	})
	if errTx != nil {
		return nil, fmt.Errorf("subscription: assign: %w", errTx)
	}
	return &sub, nil
}

// CurrentActive returns the user's active subscription, preferring the latest
// end date when a race has left more than one row active. Lifetime rows sort
// ahead of dated ones.
func (l *Ledger) CurrentActive(ctx context.Context, userID uint64) (*models.Subscription, error) {
	var sub models.Subscription
	errFind := l.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order(dbutil.EndDateDescExpr(l.db)).
		First(&sub).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, fmt.Errorf("subscription: lookup: %w", errFind)
	}
	return &sub, nil
}

// Deactivate flips a subscription's active flag off.
func (l *Ledger) Deactivate(ctx context.Context, id uint64) error {
	res := l.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("subscription: deactivate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
