package repository

import (
	"context"
	"database/sql"

	"github.com/example/school-meeting-booking/internal/model"
)

// EventRepo provides CRUD access to meeting events and their owned
// children: the date list, the class assignments and the per-class
// staff lists. Events are authored by administrators and read by the
// public booking flow. All timestamps are stored in UTC.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// Create inserts a new meeting event together with its dates, classes
// and staff in a single transaction. The generated ID is written back
// onto the provided event.
func (r *EventRepo) Create(ctx context.Context, ev *model.MeetingEvent) error {
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

	const q = `INSERT INTO meeting_events (title, start_time, end_time, duration_min, buffer_min, active)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, ev.Title, ev.StartTime, ev.EndTime, ev.DurationMin, ev.BufferMin, ev.Active)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)

	if err := insertChildrenTx(ctx, tx, ev); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update replaces the event row and rewrites all child rows. Child
// tables are cleared and reinserted rather than diffed; the lists are
// small and the admin UI always submits them whole.
func (r *EventRepo) Update(ctx context.Context, ev *model.MeetingEvent) error {
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

	const q = `UPDATE meeting_events
               SET title = ?, start_time = ?, end_time = ?, duration_min = ?, buffer_min = ?, active = ?
               WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, ev.Title, ev.StartTime, ev.EndTime, ev.DurationMin, ev.BufferMin, ev.Active, ev.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for an
		// unchanged one; confirm existence before reporting not found.
		var exists uint64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM meeting_events WHERE id = ?`, ev.ID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrEventNotFound
			}
			return err
		}
	}

	for _, child := range []string{"meeting_event_staff", "meeting_event_classes", "meeting_event_dates"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+child+` WHERE event_id = ?`, ev.ID); err != nil {
			return err
		}
	}
	if err := insertChildrenTx(ctx, tx, ev); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertChildrenTx bulk-inserts the date, class and staff rows for an
// event within the provided transaction.
func insertChildrenTx(ctx context.Context, tx *sql.Tx, ev *model.MeetingEvent) error {
	if len(ev.Dates) > 0 {
		q := `INSERT INTO meeting_event_dates (event_id, meeting_date, position) VALUES `
		args := make([]interface{}, 0, len(ev.Dates)*3)
		for i, d := range ev.Dates {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?)"
			args = append(args, ev.ID, d, i)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	if len(ev.Classes) > 0 {
		q := `INSERT INTO meeting_event_classes (event_id, class_id, name, included, position) VALUES `
		args := make([]interface{}, 0, len(ev.Classes)*5)
		for i, cl := range ev.Classes {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?, ?, ?)"
			args = append(args, ev.ID, cl.ClassID, cl.Name, cl.Included, i)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	var staffArgs []interface{}
	staffQ := `INSERT INTO meeting_event_staff (event_id, class_id, staff_id, name, role, branch, icon, position) VALUES `
	rows := 0
	for _, cl := range ev.Classes {
		for i, st := range cl.Staff {
			if rows > 0 {
				staffQ += ","
			}
			staffQ += "(?, ?, ?, ?, ?, ?, ?, ?)"
			staffArgs = append(staffArgs, ev.ID, cl.ClassID, st.StaffID, st.Name, st.Role, st.Branch, st.Icon, i)
			rows++
		}
	}
	if rows > 0 {
		if _, err := tx.ExecContext(ctx, staffQ, staffArgs...); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an event and all of its child rows. Bookings that
// reference the event are kept for the administrator's records.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
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
	for _, child := range []string{"meeting_event_staff", "meeting_event_classes", "meeting_event_dates"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+child+` WHERE event_id = ?`, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM meeting_events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a single event with its dates, classes and staff.
// Returns ErrEventNotFound when no such event exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.MeetingEvent, error) {
	const q = `SELECT id, title, start_time, end_time, duration_min, buffer_min, active, created_at, updated_at
               FROM meeting_events WHERE id = ?`
	var ev model.MeetingEvent
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&ev.ID, &ev.Title, &ev.StartTime, &ev.EndTime, &ev.DurationMin, &ev.BufferMin, &ev.Active,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// List returns all events ordered newest first. When activeOnly is set,
// inactive events are filtered out; the public listing uses that form.
func (r *EventRepo) List(ctx context.Context, activeOnly bool) ([]model.MeetingEvent, error) {
	q := `SELECT id, title, start_time, end_time, duration_min, buffer_min, active, created_at, updated_at
          FROM meeting_events`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.MeetingEvent, 0)
	for rows.Next() {
		var ev model.MeetingEvent
		if err := rows.Scan(
			&ev.ID, &ev.Title, &ev.StartTime, &ev.EndTime, &ev.DurationMin, &ev.BufferMin, &ev.Active,
			&ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		if err := r.loadChildren(ctx, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// loadChildren populates Dates and Classes (with staff) for the event.
func (r *EventRepo) loadChildren(ctx context.Context, ev *model.MeetingEvent) error {
	const dateQ = `SELECT meeting_date FROM meeting_event_dates WHERE event_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, dateQ, ev.ID)
	if err != nil {
		return err
	}
	ev.Dates = []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			rows.Close()
			return err
		}
		ev.Dates = append(ev.Dates, d)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	const classQ = `SELECT class_id, name, included FROM meeting_event_classes WHERE event_id = ? ORDER BY position`
	crows, err := r.db.QueryContext(ctx, classQ, ev.ID)
	if err != nil {
		return err
	}
	ev.Classes = []model.ClassAssignment{}
	classIdx := make(map[string]int)
	for crows.Next() {
		var cl model.ClassAssignment
		if err := crows.Scan(&cl.ClassID, &cl.Name, &cl.Included); err != nil {
			crows.Close()
			return err
		}
		cl.Staff = []model.StaffMember{}
		classIdx[cl.ClassID] = len(ev.Classes)
		ev.Classes = append(ev.Classes, cl)
	}
	if err := crows.Close(); err != nil {
		return err
	}

	const staffQ = `SELECT class_id, staff_id, name, role, branch, icon
                    FROM meeting_event_staff WHERE event_id = ? ORDER BY class_id, position`
	srows, err := r.db.QueryContext(ctx, staffQ, ev.ID)
	if err != nil {
		return err
	}
	defer srows.Close()
	for srows.Next() {
		var classID string
		var st model.StaffMember
		if err := srows.Scan(&classID, &st.StaffID, &st.Name, &st.Role, &st.Branch, &st.Icon); err != nil {
			return err
		}
		if idx, ok := classIdx[classID]; ok {
			ev.Classes[idx].Staff = append(ev.Classes[idx].Staff, st)
		}
	}
	return srows.Err()
}
