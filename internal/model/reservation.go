package model

import (
	"strings"
	"time"
)

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayOnline PaymentMethod = "online"
)

// ParsePaymentMethod normalizes a payment method string.  Unknown
// values return false.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PayCash:
		return PayCash, true
	case PayOnline:
		return PayOnline, true
	}
	return "", false
}

// Paid reports whether a booking made with this method is settled
// immediately.  Online payments are paid at booking time; cash settles
// at ticket redemption.
func (m PaymentMethod) Paid() bool { return m == PayOnline }

// Reservation records a student's claim on one unit of a menu.  It is
// created only by the booking flow and never updated afterwards except
// for the IsPaid flag, which redemption flips for cash bookings.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – student who booked.
//  MenuID           – menu being booked.
//  OriginalMenuDate – snapshot of the menu date at booking time.
//  PaymentMethod    – cash or online.
//  IsPaid           – whether payment is settled (one-way false→true).
//  Status           – reservation state (currently always "confirmed").
//  CreatedAt        – creation timestamp.
type Reservation struct {
	ID               uint64        // reservations.id
	UserID           uint64        // reservations.user_id
	MenuID           uint64        // reservations.menu_id
	OriginalMenuDate time.Time     // reservations.original_menu_date
	PaymentMethod    PaymentMethod // reservations.payment_method
	IsPaid           bool          // reservations.is_paid
	Status           string        // reservations.status
	CreatedAt        time.Time     // reservations.created_at
}
