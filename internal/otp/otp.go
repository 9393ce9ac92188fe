// Package otp issues and verifies the short-lived numeric codes used for the
// first-login step-up and for password resets.
package otp

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/Thecaracter/be-berita/internal/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

const (
	// Expiry is how long an issued code stays verifiable.
	Expiry = 3 * time.Minute
	// ResendCooldown is the minimum gap between two issuances for the same
	// (user, purpose) pair.
	ResendCooldown = 3 * time.Minute

	codeSpace = 10000 // 4 digits, 0000-9999
)

var (
	// ErrNoActiveCode means no unused code exists for the (user, purpose) pair.
	ErrNoActiveCode = errors.New("no active otp code")
	// ErrExpired means the active code exists but its expiry has passed.
	ErrExpired = errors.New("otp code expired")
	// ErrMismatch means the supplied code does not equal the active one.
	ErrMismatch = errors.New("otp code mismatch")
)

// Ledger owns the otp_tokens table. The clock is injectable so expiry and
// cooldown boundaries are testable.
type Ledger struct {
	db    *gorm.DB
	clock clockwork.Clock
}

func NewLedger(db *gorm.DB, clock clockwork.Clock) *Ledger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Ledger{db: db, clock: clock}
}

func generateCode() string {
	return fmt.Sprintf("%04d", rand.Intn(codeSpace))
}

// Issue invalidates every prior unused code for (user, purpose), stores a
// fresh one and returns it in plaintext for immediate delivery. A superseded
// code becomes unusable the moment a new one lands, not only when consumed.
func (l *Ledger) Issue(userID, purpose string) (string, error) {
	err := l.db.Model(&models.OTPToken{}).
		Where("user_id = ? AND purpose = ? AND used = ?", userID, purpose, false).
		Update("used", true).Error
	if err != nil {
		return "", fmt.Errorf("invalidate prior otp: %w", err)
	}

	now := l.clock.Now()
	rec := models.OTPToken{
		UserID:    userID,
		Purpose:   purpose,
		Code:      generateCode(),
		ExpiresAt: now.Add(Expiry),
		CreatedAt: now,
	}
	if err := l.db.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return rec.Code, nil
}

// Verify checks code against the most recent unused record for the pair and
// consumes it on success. Exactly one of nil, ErrNoActiveCode, ErrExpired or
// ErrMismatch is returned; the record is only marked used on the nil path.
func (l *Ledger) Verify(userID, code, purpose string) error {
	var rec models.OTPToken
	err := l.db.
		Where("user_id = ? AND purpose = ? AND used = ?", userID, purpose, false).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoActiveCode
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	if l.clock.Now().After(rec.ExpiresAt) {
		return ErrExpired
	}

	// codes are numeric; the case-insensitive compare is kept from the
	// original alphanumeric design
	if !strings.EqualFold(rec.Code, code) {
		return ErrMismatch
	}

	if err := l.db.Model(&rec).Update("used", true).Error; err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

// CanResend reports whether a new code may be issued for the pair. When the
// cooldown is still running it returns false plus the remaining seconds,
// rounded up. The check looks at the latest issuance regardless of its used
// flag, so consuming a code does not shorten the cooldown.
func (l *Ledger) CanResend(userID, purpose string) (bool, int, error) {
	var rec models.OTPToken
	err := l.db.
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("load otp: %w", err)
	}

	elapsed := l.clock.Now().Sub(rec.CreatedAt)
	if elapsed < ResendCooldown {
		remaining := int(math.Ceil((ResendCooldown - elapsed).Seconds()))
		return false, remaining, nil
	}
	return true, 0, nil
}
