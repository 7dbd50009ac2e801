// Package verification issues and checks the short-lived six-digit
// codes that gate booking confirmation and administrator login. Codes
// are generated from crypto/rand, stored only as bcrypt hashes, and
// consumed exactly once.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/school-meeting-booking/internal/model"
)

// ErrCodeInvalid is returned whenever a check fails: wrong code,
// expired code, or a code that was already consumed. Callers cannot
// distinguish the cases; the client message is the same for all three.
var ErrCodeInvalid = errors.New("invalid or expired code")

// BookingSubject builds the subject string binding codes to a booking.
func BookingSubject(bookingID uint64) string { return fmt.Sprintf("booking:%d", bookingID) }

// AdminSubject builds the subject string binding codes to an
// administrator's login email.
func AdminSubject(email string) string { return "admin:" + email }

// Store is the persistence surface the service needs. CodeRepo
// implements it on MySQL; tests substitute an in-memory store.
type Store interface {
	Insert(ctx context.Context, subject, codeHash string, expiresAt time.Time) error
	ActiveBySubject(ctx context.Context, subject string, now time.Time) ([]model.VerificationCode, error)
	Consume(ctx context.Context, id uint64, at time.Time) (bool, error)
}

// Service generates, stores and checks verification codes.
type Service struct {
	store Store
	cost  int
	now   func() time.Time
}

// New returns a Service using the given store and bcrypt cost.
func New(store Store, bcryptCost int) *Service {
	return &Service{store: store, cost: bcryptCost, now: time.Now}
}

// WithClock overrides the time source. Tests use it to step through
// expiry windows without sleeping.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue generates a uniformly random six-digit decimal code, stores
// its hash against the subject with the given TTL, and returns the
// plain code exactly once for delivery. Previously issued codes for
// the same subject stay valid until their own expiry; resending is
// simply another Issue.
func (s *Service) Issue(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", err
	}
	expiresAt := s.now().UTC().Add(ttl)
	if err := s.store.Insert(ctx, subject, string(hash), expiresAt); err != nil {
		return "", err
	}
	return code, nil
}

// Match returns the ID of the active code matching the supplied value
// without consuming it, or ErrCodeInvalid. Callers that must couple the
// check with a state change of their own do Match, apply the change,
// then Consume — a failure in between leaves the code usable for the
// retry instead of burning it.
func (s *Service) Match(ctx context.Context, subject, code string) (uint64, error) {
	active, err := s.store.ActiveBySubject(ctx, subject, s.now().UTC())
	if err != nil {
		return 0, err
	}
	for _, c := range active {
		if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) == nil {
			return c.ID, nil
		}
	}
	return 0, ErrCodeInvalid
}

// Consume marks a matched code used. Losing the consume race is not an
// error here: the competing attempt applied the same state change.
func (s *Service) Consume(ctx context.Context, id uint64) error {
	_, err := s.store.Consume(ctx, id, s.now().UTC())
	return err
}

// Check succeeds only when an unconsumed, unexpired code for the
// subject matches the supplied value; the matching code is consumed
// atomically so it can never be replayed. Every active code is
// candidate, newest first. Any failure is ErrCodeInvalid.
func (s *Service) Check(ctx context.Context, subject, code string) error {
	now := s.now().UTC()
	active, err := s.store.ActiveBySubject(ctx, subject, now)
	if err != nil {
		return err
	}
	for _, c := range active {
		if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) != nil {
			continue
		}
		ok, err := s.store.Consume(ctx, c.ID, now)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		// Lost the consume race; the code no longer counts.
	}
	return ErrCodeInvalid
}
