// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish between different failure scenarios:
// ErrOutOfStock and ErrSlotTaken are validation rejections from the
// booking flow, ErrTicketUsed guards repeated redemption, and
// ErrForbidden indicates an operation on a resource the caller may not
// touch.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// email index.  Handlers should translate this into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrMatriculeExists is returned when an insert collides with the
// unique matricule index.  Handlers should translate this into 409.
var ErrMatriculeExists = errors.New("matricule already exists")

// ErrMenuNotFound is returned when a menu lookup matches no row.
var ErrMenuNotFound = errors.New("menu not found")

// ErrOutOfStock is returned when the conditional stock decrement
// affects no rows, meaning the menu is sold out or inactive.  No state
// changes when this is returned.
var ErrOutOfStock = errors.New("out of stock")

// ErrSlotTaken is returned when the student already holds a reservation
// for the same menu date and meal type.
var ErrSlotTaken = errors.New("slot already booked")

// ErrTicketUsed is returned when redemption is attempted on a ticket
// whose is_used flag is already set.  The flag never reverts.
var ErrTicketUsed = errors.New("ticket already used")

// ErrCodeExhausted is returned when every ticket-code insert attempt
// collided with the unique code index.  Practically unreachable unless
// the random source is broken.
var ErrCodeExhausted = errors.New("ticket code generation exhausted retries")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they may not act on, such as deleting a non-staff account
// through the staff-management endpoint.  Handlers should translate
// this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
