package ledger

import (
	"context"
	"errors"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreditLedger mutates per-user credit balances. Both operations run as a
// single guarded UPDATE at the storage layer so concurrent calls for the same
// user cannot lose updates or drive the balance below zero.
type CreditLedger struct {
	db *gorm.DB
}

func NewCreditLedger(db *gorm.DB) *CreditLedger {
	return &CreditLedger{db: db}
}

// Charge decrements the balance by amount, failing with InsufficientCredits
// and mutating nothing when the current balance is lower than amount.
// A zero amount is a no-op beyond the existence check.
func (l *CreditLedger) Charge(ctx context.Context, userID, amount int64) error {
	if amount < 0 {
		return errs.Validation("charge amount must not be negative")
	}
	if amount == 0 {
		return l.exists(ctx, userID)
	}

	result := l.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ? AND credits >= ?", userID, amount).
		UpdateColumn("credits", gorm.Expr("credits - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := l.exists(ctx, userID); err != nil {
			return err
		}
		return errs.InsufficientCredits("insufficient credits, please top up")
	}

	zap.L().Info("credits charged",
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount))
	return nil
}

// Grant increments the balance by amount (purchase confirmation, admin top-up).
func (l *CreditLedger) Grant(ctx context.Context, userID, amount int64) error {
	if amount <= 0 {
		return errs.Validation("grant amount must be positive")
	}

	result := l.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("user not found")
	}

	zap.L().Info("credits granted",
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount))
	return nil
}

// Balance reads the current balance. Display use only; charging relies on the
// guarded UPDATE, never on this read.
func (l *CreditLedger) Balance(ctx context.Context, userID int64) (int64, error) {
	var user domain.SysUser
	err := l.db.WithContext(ctx).Select("credits").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, errs.NotFound("user not found")
	}
	if err != nil {
		return 0, err
	}
	return user.Credits, nil
}

func (l *CreditLedger) exists(ctx context.Context, userID int64) error {
	var count int64
	if err := l.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}
