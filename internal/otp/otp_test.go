package otp

import (
	"errors"
	"testing"
	"time"

	"github.com/Thecaracter/be-berita/internal/database/dbtest"
	"github.com/Thecaracter/be-berita/internal/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

func newTestLedger(t *testing.T) (*Ledger, *clockwork.FakeClock, *gorm.DB) {
	db := dbtest.Open(t)
	clock := clockwork.NewFakeClock()
	return NewLedger(db, clock), clock, db
}

func createUser(t *testing.T, db *gorm.DB) string {
	t.Helper()
	u := models.User{FullName: "Test User", Email: "otp@example.com", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func TestIssueAndVerify(t *testing.T) {
	ledger, _, db := newTestLedger(t)
	userID := createUser(t, db)

	code, err := ledger.Issue(userID, models.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(code) != 4 {
		t.Fatalf("code length = %d, want 4", len(code))
	}

	if err := ledger.Verify(userID, code, models.OTPPurposeLogin); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifySingleUse(t *testing.T) {
	ledger, _, db := newTestLedger(t)
	userID := createUser(t, db)

	code, _ := ledger.Issue(userID, models.OTPPurposeLogin)
	if err := ledger.Verify(userID, code, models.OTPPurposeLogin); err != nil {
		t.Fatalf("first Verify: %v", err)
	}

	// the same correct code must not verify twice
	if err := ledger.Verify(userID, code, models.OTPPurposeLogin); !errors.Is(err, ErrNoActiveCode) {
		t.Errorf("second Verify err = %v, want ErrNoActiveCode", err)
	}
}

func TestVerifyMismatch(t *testing.T) {
	ledger, _, db := newTestLedger(t)
	userID := createUser(t, db)

	code, _ := ledger.Issue(userID, models.OTPPurposeLogin)
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	if err := ledger.Verify(userID, wrong, models.OTPPurposeLogin); !errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(wrong) err = %v, want ErrMismatch", err)
	}
	// a mismatch must not consume the code
	if err := ledger.Verify(userID, code, models.OTPPurposeLogin); err != nil {
		t.Errorf("Verify(correct after mismatch) err = %v, want nil", err)
	}
}

func TestVerifyNoCode(t *testing.T) {
	ledger, _, db := newTestLedger(t)
	userID := createUser(t, db)

	if err := ledger.Verify(userID, "1234", models.OTPPurposeLogin); !errors.Is(err, ErrNoActiveCode) {
		t.Errorf("Verify err = %v, want ErrNoActiveCode", err)
	}
}

func TestIssueSupersedesPriorCode(t *testing.T) {
	ledger, clock, db := newTestLedger(t)
	userID := createUser(t, db)

	if _, err := ledger.Issue(userID, models.OTPPurposeLogin); err != nil {
		t.Fatalf("first Issue: %v", err)
	}
	clock.Advance(time.Second)
	second, err := ledger.Issue(userID, models.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("second Issue: %v", err)
	}

	// the first code is superseded even though still inside its own expiry
	// window: only one unused row may remain, and it holds the newest code
	var unused []models.OTPToken
	if err := db.Where("user_id = ? AND used = ?", userID, false).Find(&unused).Error; err != nil {
		t.Fatalf("load unused: %v", err)
	}
	if len(unused) != 1 {
		t.Fatalf("unused rows = %d, want 1", len(unused))
	}
	if unused[0].Code != second {
		t.Errorf("active code = %q, want latest %q", unused[0].Code, second)
	}

	if err := ledger.Verify(userID, second, models.OTPPurposeLogin); err != nil {
		t.Errorf("Verify(latest code) err = %v, want nil", err)
	}
}

func TestPurposesAreIndependent(t *testing.T) {
	ledger, _, db := newTestLedger(t)
	userID := createUser(t, db)

	loginCode, _ := ledger.Issue(userID, models.OTPPurposeLogin)
	if err := ledger.Verify(userID, loginCode, models.OTPPurposeResetPassword); !errors.Is(err, ErrNoActiveCode) {
		t.Errorf("Verify(login code, reset purpose) err = %v, want ErrNoActiveCode", err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	ledger, clock, db := newTestLedger(t)
	userID := createUser(t, db)

	code, _ := ledger.Issue(userID, models.OTPPurposeLogin)
	clock.Advance(179 * time.Second)
	if err := ledger.Verify(userID, code, models.OTPPurposeLogin); err != nil {
		t.Fatalf("Verify at +179s err = %v, want nil", err)
	}

	code, _ = ledger.Issue(userID, models.OTPPurposeLogin)
	clock.Advance(181 * time.Second)
	if err := ledger.Verify(userID, code, models.OTPPurposeLogin); !errors.Is(err, ErrExpired) {
		t.Errorf("Verify at +181s err = %v, want ErrExpired", err)
	}
}

func TestCanResendCooldown(t *testing.T) {
	ledger, clock, db := newTestLedger(t)
	userID := createUser(t, db)

	// no prior issuance: always allowed
	ok, remaining, err := ledger.CanResend(userID, models.OTPPurposeLogin)
	if err != nil || !ok || remaining != 0 {
		t.Fatalf("CanResend(no prior) = %v %d %v, want true 0 nil", ok, remaining, err)
	}

	if _, err := ledger.Issue(userID, models.OTPPurposeLogin); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock.Advance(60 * time.Second)
	ok, remaining, err = ledger.CanResend(userID, models.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("CanResend: %v", err)
	}
	if ok {
		t.Error("CanResend inside cooldown = true, want false")
	}
	if remaining != 120 {
		t.Errorf("remaining = %d, want 120", remaining)
	}

	clock.Advance(120 * time.Second)
	ok, _, err = ledger.CanResend(userID, models.OTPPurposeLogin)
	if err != nil {
		t.Fatalf("CanResend: %v", err)
	}
	if !ok {
		t.Error("CanResend at cooldown boundary = false, want true")
	}
}
