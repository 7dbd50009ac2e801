package verification

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/school-meeting-booking/internal/model"
)

// memStore is an in-memory Store for exercising the service without a
// database.
type memStore struct {
	nextID uint64
	codes  []model.VerificationCode
}

func (m *memStore) Insert(_ context.Context, subject, codeHash string, expiresAt time.Time) error {
	m.nextID++
	m.codes = append(m.codes, model.VerificationCode{
		ID:        m.nextID,
		Subject:   subject,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
	})
	return nil
}

func (m *memStore) ActiveBySubject(_ context.Context, subject string, now time.Time) ([]model.VerificationCode, error) {
	var out []model.VerificationCode
	for i := len(m.codes) - 1; i >= 0; i-- {
		c := m.codes[i]
		if c.Subject == subject && c.UsedAt == nil && c.ExpiresAt.After(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) Consume(_ context.Context, id uint64, at time.Time) (bool, error) {
	for i := range m.codes {
		if m.codes[i].ID == id && m.codes[i].UsedAt == nil {
			t := at
			m.codes[i].UsedAt = &t
			return true, nil
		}
	}
	return false, nil
}

// clock is a controllable time source, advanced explicitly by tests.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService() (*Service, *memStore, *clock) {
	store := &memStore{}
	clk := &clock{t: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)}
	svc := New(store, bcrypt.MinCost).WithClock(clk.now)
	return svc, store, clk
}

func TestIssueProducesSixDigitCode(t *testing.T) {
	svc, store, _ := newTestService()
	code, err := svc.Issue(context.Background(), BookingSubject(7), 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code %q is not six digits", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit %q", code, r)
		}
	}
	if len(store.codes) != 1 {
		t.Fatalf("stored %d codes, want 1", len(store.codes))
	}
	if store.codes[0].CodeHash == code {
		t.Fatal("code stored in clear")
	}
}

func TestCheckConsumesExactlyOnce(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	subject := BookingSubject(42)
	code, err := svc.Issue(ctx, subject, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := svc.Check(ctx, subject, code); err != nil {
		t.Fatalf("first Check: %v", err)
	}
	if err := svc.Check(ctx, subject, code); err != ErrCodeInvalid {
		t.Fatalf("second Check = %v, want ErrCodeInvalid", err)
	}
}

func TestMatchDoesNotConsume(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	subject := BookingSubject(5)
	code, err := svc.Issue(ctx, subject, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := svc.Match(ctx, subject, code)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// Matching is repeatable; the code stays active until Consume.
	again, err := svc.Match(ctx, subject, code)
	if err != nil || again != id {
		t.Fatalf("second Match = %d, %v; want %d", again, err, id)
	}
	if err := svc.Consume(ctx, id); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if _, err := svc.Match(ctx, subject, code); err != ErrCodeInvalid {
		t.Fatalf("Match after Consume = %v, want ErrCodeInvalid", err)
	}
}

func TestMatchRejectsWrongCode(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	subject := BookingSubject(6)
	code, err := svc.Issue(ctx, subject, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := svc.Match(ctx, subject, wrong); err != ErrCodeInvalid {
		t.Fatalf("Match(wrong) = %v, want ErrCodeInvalid", err)
	}
}

func TestCheckRejectsWrongCode(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	subject := BookingSubject(42)
	code, err := svc.Issue(ctx, subject, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := svc.Check(ctx, subject, wrong); err != ErrCodeInvalid {
		t.Fatalf("Check(wrong) = %v, want ErrCodeInvalid", err)
	}
	// The real code is untouched and still works afterwards.
	if err := svc.Check(ctx, subject, code); err != nil {
		t.Fatalf("Check(correct) after failed attempt: %v", err)
	}
}

func TestCheckRejectsExpiredCode(t *testing.T) {
	svc, _, clk := newTestService()
	ctx := context.Background()
	subject := BookingSubject(9)
	code, err := svc.Issue(ctx, subject, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clk.advance(5*time.Minute + time.Second)
	if err := svc.Check(ctx, subject, code); err != ErrCodeInvalid {
		t.Fatalf("Check after expiry = %v, want ErrCodeInvalid", err)
	}
}

func TestResendLeavesPriorCodesValid(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	subject := BookingSubject(11)
	first, err := svc.Issue(ctx, subject, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue first: %v", err)
	}
	second, err := svc.Issue(ctx, subject, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue second: %v", err)
	}
	// The earlier code stays checkable until its own expiry.
	if err := svc.Check(ctx, subject, first); err != nil {
		t.Fatalf("Check(first) after resend: %v", err)
	}
	if first != second {
		if err := svc.Check(ctx, subject, second); err != nil {
			t.Fatalf("Check(second): %v", err)
		}
	}
}

func TestSubjectsAreIsolated(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	code, err := svc.Issue(ctx, BookingSubject(1), 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := svc.Check(ctx, BookingSubject(2), code); err != ErrCodeInvalid {
		t.Fatalf("Check with foreign subject = %v, want ErrCodeInvalid", err)
	}
	if err := svc.Check(ctx, AdminSubject("a@example.org"), code); err != ErrCodeInvalid {
		t.Fatalf("Check with admin subject = %v, want ErrCodeInvalid", err)
	}
}
