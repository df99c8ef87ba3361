// Package queue defines the message payloads exchanged over the broker
// and the background consumer that turns them into audit log lines.
package queue

// MealBookedQueue and TicketRedeemedQueue are the durable queue names
// shared by the publisher and the audit consumer.
const (
	MealBookedQueue     = "meal.booked"
	TicketRedeemedQueue = "ticket.redeemed"
)

// MealBookedEvent is published when a booking commits.  It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type MealBookedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	MenuID        uint64 `json:"menu_id"`
	MenuDate      string `json:"menu_date"`
	MealType      string `json:"meal_type"`
	PriceCents    uint32 `json:"price_cents"`
	PaymentMethod string `json:"payment_method"`
	IsPaid        bool   `json:"is_paid"`
	TicketCode    string `json:"ticket_code"`
	BookedAt      string `json:"booked_at"`
}

// TicketRedeemedEvent is published when staff consumes a ticket and the
// linked reservation is settled.
type TicketRedeemedEvent struct {
	TicketID      uint64 `json:"ticket_id"`
	Code          string `json:"code"`
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	MenuID        uint64 `json:"menu_id"`
	RedeemedAt    string `json:"redeemed_at"`
}
