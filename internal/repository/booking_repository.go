package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/school-meeting-booking/internal/model"
)

// BookingRepo provides data access to booking requests. Creation is a
// transactional check-and-insert keyed on (event, class, date, time)
// over the rows that currently occupy a slot, so two concurrent
// requests for the same slot cannot both succeed. All timestamps are
// stored in UTC.
//
// A slot counts as occupied by any non-rejected request that is either
// verified or younger than the abandon window. Unverified requests
// older than the window stop pinning their slot but are kept as rows
// for the administrator's records.
type BookingRepo struct {
	db         *sql.DB
	abandonMin int
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
// abandonMin is the age in minutes after which an unverified request no
// longer occupies its slot.
func NewBookingRepo(db *sql.DB, abandonMin int) *BookingRepo {
	return &BookingRepo{db: db, abandonMin: abandonMin}
}

// occupiedCond is the SQL predicate selecting requests that currently
// claim a slot. It takes one argument: the abandon window in minutes.
const occupiedCond = `status <> 'rejected'
                AND (verified_at IS NOT NULL OR created_at > UTC_TIMESTAMP() - INTERVAL ? MINUTE)`

// Create inserts a new booking request with status pending. It locks
// and checks the slot tuple first; when another occupying request
// already holds the same (event, class, date, time) it returns
// ErrSlotTaken and inserts nothing. On success the generated ID and
// creation timestamp are written back onto the request.
func (r *BookingRepo) Create(ctx context.Context, b *model.BookingRequest) error {
	extras, err := model.EncodeAnswers(b.Extras)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const checkQ = `SELECT id FROM booking_requests
                    WHERE event_id = ? AND class_id = ? AND meeting_date = ? AND meeting_time = ?
                      AND ` + occupiedCond + `
                    LIMIT 1 FOR UPDATE`
	var existing uint64
	err = tx.QueryRowContext(ctx, checkQ, b.EventID, b.ClassID, b.Date, b.Time, r.abandonMin).Scan(&existing)
	if err == nil {
		return ErrSlotTaken
	}
	if err != sql.ErrNoRows {
		return err
	}

	// created_at is written as UTC_TIMESTAMP() explicitly: occupiedCond
	// compares it against UTC_TIMESTAMP(), so the two must share a zone
	// no matter what the session default is.
	const insQ = `INSERT INTO booking_requests
                  (event_id, class_id, class_name, meeting_date, meeting_time,
                   parent_name, child_name, email, phone, status, extras, created_at)
                  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?, UTC_TIMESTAMP())`
	res, err := tx.ExecContext(ctx, insQ,
		b.EventID, b.ClassID, b.ClassName, b.Date, b.Time,
		b.ParentName, b.ChildName, b.Email, b.Phone, nullable(extras),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.StatusPending
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM booking_requests WHERE id = ?`, b.ID).Scan(&b.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// nullable maps the empty string to a SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

const bookingCols = `id, event_id, class_id, class_name, meeting_date, meeting_time,
                     parent_name, child_name, email, phone, status, extras, verified_at, created_at`

// scanBooking reads one booking row into a model struct.
func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*model.BookingRequest, error) {
	var b model.BookingRequest
	var extras sql.NullString
	var verifiedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.EventID, &b.ClassID, &b.ClassName, &b.Date, &b.Time,
		&b.ParentName, &b.ChildName, &b.Email, &b.Phone, &b.Status,
		&extras, &verifiedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if extras.Valid {
		answers, err := model.DecodeAnswers(extras.String)
		if err != nil {
			return nil, err
		}
		b.Extras = answers
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		b.VerifiedAt = &t
	}
	return &b, nil
}

// GetByID returns a single booking request or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	const q = `SELECT ` + bookingCols + ` FROM booking_requests WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// List returns booking requests ordered newest first. When eventID is
// non-zero the list is restricted to that event; the administrator's
// review queue passes zero to see everything.
func (r *BookingRepo) List(ctx context.Context, eventID uint64) ([]model.BookingRequest, error) {
	q := `SELECT ` + bookingCols + ` FROM booking_requests`
	var args []interface{}
	if eventID != 0 {
		q += ` WHERE event_id = ?`
		args = append(args, eventID)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.BookingRequest, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// BookedSlots returns the (date, class, time) tuples currently
// occupying slots for an event. The availability resolver recomputes
// slot statuses from this set on every read.
func (r *BookingRepo) BookedSlots(ctx context.Context, eventID uint64) ([]model.BookedSlot, error) {
	const q = `SELECT meeting_date, class_id, meeting_time FROM booking_requests
               WHERE event_id = ? AND ` + occupiedCond + `
               ORDER BY meeting_date, class_id, meeting_time`
	rows, err := r.db.QueryContext(ctx, q, eventID, r.abandonMin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.BookedSlot, 0)
	for rows.Next() {
		var s model.BookedSlot
		if err := rows.Scan(&s.Date, &s.ClassID, &s.Time); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// SetVerified stamps the booking as code-confirmed. Stamping twice is
// harmless; the first timestamp wins.
func (r *BookingRepo) SetVerified(ctx context.Context, id uint64, at time.Time) error {
	const q = `UPDATE booking_requests SET verified_at = ? WHERE id = ? AND verified_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, at.UTC(), id)
	if err != nil {
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// UpdateStatusFrom transitions a booking's status with a compare-and-
// swap: the update applies only while the row still holds the expected
// current status. ErrStatusChanged reports a lost race so the
// administrator can re-read before deciding again.
func (r *BookingRepo) UpdateStatusFrom(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	const q = `UPDATE booking_requests SET status = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var cur model.BookingStatus
		err := r.db.QueryRowContext(ctx, `SELECT status FROM booking_requests WHERE id = ?`, id).Scan(&cur)
		if err == sql.ErrNoRows {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if cur != to {
			return ErrStatusChanged
		}
	}
	return nil
}

// Delete removes a booking request outright. Used by administrators to
// clear test entries; the approval workflow never deletes.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM booking_requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
