package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/school-meeting-booking/internal/model"
)

// CodeRepo provides data access to verification codes. Codes are bound
// to a subject string ("booking:<id>" or "admin:<email>") and stored as
// bcrypt hashes. Consumption flips used_at exactly once; the update is
// conditioned on the row still being unused, which is the one place the
// booking flow requires atomicity.
type CodeRepo struct {
	db *sql.DB
}

// NewCodeRepo returns a new CodeRepo bound to the given database.
func NewCodeRepo(db *sql.DB) *CodeRepo { return &CodeRepo{db: db} }

// Insert stores a freshly issued code hash for a subject.
func (r *CodeRepo) Insert(ctx context.Context, subject, codeHash string, expiresAt time.Time) error {
	const q = `INSERT INTO verification_codes (subject, code_hash, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, subject, codeHash, expiresAt.UTC())
	return err
}

// ActiveBySubject returns the unconsumed, unexpired codes for a
// subject, newest first. Several codes may be active at once: issuing
// a replacement does not invalidate earlier ones.
func (r *CodeRepo) ActiveBySubject(ctx context.Context, subject string, now time.Time) ([]model.VerificationCode, error) {
	const q = `SELECT id, subject, code_hash, expires_at, used_at, created_at
               FROM verification_codes
               WHERE subject = ? AND used_at IS NULL AND expires_at > ?
               ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, subject, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []model.VerificationCode
	for rows.Next() {
		var c model.VerificationCode
		var usedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Subject, &c.CodeHash, &c.ExpiresAt, &usedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		if usedAt.Valid {
			t := usedAt.Time
			c.UsedAt = &t
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// Consume marks a code used. It reports false when the code was
// already consumed by a concurrent check, in which case the caller
// must treat the attempt as failed.
func (r *CodeRepo) Consume(ctx context.Context, id uint64, at time.Time) (bool, error) {
	const q = `UPDATE verification_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
