package model

import "time"

// Ticket is the single-use redemption code proving a reservation,
// exchanged at pickup.  Exactly one ticket exists per reservation and
// it is consumed at most once: the unused→used transition is terminal.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – the reservation this ticket proves (1:1).
//  Code          – unique 8-character uppercase alphanumeric code.
//  IsUsed        – whether the ticket has been redeemed.
//  UsedAt        – when it was redeemed (nil while unused).
//  CreatedAt     – creation timestamp.
type Ticket struct {
	ID            uint64     // tickets.id
	ReservationID uint64     // tickets.reservation_id
	Code          string     // tickets.code
	IsUsed        bool       // tickets.is_used
	UsedAt        *time.Time // tickets.used_at (nullable)
	CreatedAt     time.Time  // tickets.created_at
}
