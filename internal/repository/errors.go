// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them to localized client messages without string matching.
package repository

import "errors"

// ErrEventNotFound is returned when no meeting event exists for the
// requested ID. Handlers translate this into an HTTP 404.
var ErrEventNotFound = errors.New("meeting event not found")

// ErrEventInactive is returned when a booking is attempted against an
// event that is not open for booking. Handlers translate this into an
// HTTP 409.
var ErrEventInactive = errors.New("meeting event not active")

// ErrBookingNotFound is returned when no booking request exists for the
// requested ID. Handlers translate this into an HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrSlotTaken is returned when a create collides with an existing
// non-rejected booking for the same (event, class, date, time). It is
// distinct from generic validation failure so the client can prompt the
// parent to pick another slot. Handlers translate this into an HTTP 409.
var ErrSlotTaken = errors.New("slot already booked")

// ErrStatusChanged is returned when a status transition loses a race:
// the booking's status no longer matches the state the administrator
// saw when deciding. Handlers translate this into an HTTP 409.
var ErrStatusChanged = errors.New("booking status changed concurrently")
