package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/uniresto/meal-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  A reservation
// links a student to one unit of a menu; the booking flow creates it
// together with its ticket inside a single transaction.  All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It populates the generated ID and creation timestamp on
// the provided record.  The caller must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, menu_id, original_menu_date, payment_method, is_paid, status) VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.UserID, res.MenuID, res.OriginalMenuDate.Format("2006-01-02"),
		string(res.PaymentMethod), res.IsPaid, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT created_at FROM reservations WHERE id=?", res.ID).Scan(&res.CreatedAt)
}

// CheckSlotFreeTx returns ErrSlotTaken when the user already holds a
// reservation for any menu on the given date and meal type.  Run inside
// the booking transaction so the conflict check and the insert observe
// the same state.
func (r *ReservationRepo) CheckSlotFreeTx(ctx context.Context, tx *sql.Tx, userID uint64, date time.Time, meal model.MealType) error {
	const q = `SELECT EXISTS(
	               SELECT 1 FROM reservations r
	               JOIN menus m ON m.id = r.menu_id
	               WHERE r.user_id = ? AND m.menu_date = ? AND m.meal_type = ?)`
	var taken bool
	if err := tx.QueryRowContext(ctx, q, userID, date.Format("2006-01-02"), string(meal)).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}
	return nil
}

// BookedSlots returns the slot keys (YYYY-MM-DD_<meal>) the user
// already holds reservations for.  The student dashboard uses these to
// grey out booked slots.
func (r *ReservationRepo) BookedSlots(ctx context.Context, userID uint64) ([]string, error) {
	const q = `SELECT m.menu_date, m.meal_type
	           FROM reservations r
	           JOIN menus m ON m.id = r.menu_id
	           WHERE r.user_id = ?`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]string, 0)
	for rows.Next() {
		var d time.Time
		var meal string
		if err := rows.Scan(&d, &meal); err != nil {
			return nil, err
		}
		slots = append(slots, model.SlotKey(d, model.MealType(meal)))
	}
	return slots, rows.Err()
}

// BookingDetail is a reservation joined with its menu and ticket for
// display to the student who owns it.
type BookingDetail struct {
	ID            uint64  `json:"id"`
	MenuID        uint64  `json:"menu_id"`
	MenuDate      string  `json:"menu_date"`
	MealType      string  `json:"meal_type"`
	Description   string  `json:"description"`
	PriceCents    uint32  `json:"price_cents"`
	PaymentMethod string  `json:"payment_method"`
	IsPaid        bool    `json:"is_paid"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	TicketID      uint64  `json:"ticket_id"`
	TicketCode    string  `json:"ticket_code"`
	TicketUsed    bool    `json:"ticket_used"`
	TicketUsedAt  *string `json:"ticket_used_at,omitempty"`
}

// StaffBookingDetail extends BookingDetail with the booking student's
// identity for the staff dashboard feed.
type StaffBookingDetail struct {
	BookingDetail
	StudentID   uint64 `json:"student_id"`
	StudentName string `json:"student_name"`
	Matricule   string `json:"matricule"`
}

const bookingJoin = `SELECT r.id, r.menu_id, m.menu_date, m.meal_type, m.description, m.price_cents,
	       r.payment_method, r.is_paid, r.status, r.created_at,
	       t.id, t.code, t.is_used, t.used_at`

func scanBooking(rows *sql.Rows, d *BookingDetail, extra ...any) error {
	var menuDate, createdAt time.Time
	var usedAt sql.NullTime
	dest := []any{
		&d.ID, &d.MenuID, &menuDate, &d.MealType, &d.Description, &d.PriceCents,
		&d.PaymentMethod, &d.IsPaid, &d.Status, &createdAt,
		&d.TicketID, &d.TicketCode, &d.TicketUsed, &usedAt,
	}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	d.MenuDate = menuDate.Format("2006-01-02")
	d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	if usedAt.Valid {
		iso := usedAt.Time.UTC().Format(time.RFC3339)
		d.TicketUsedAt = &iso
	}
	return nil
}

// ListByUser returns all bookings for the given user with menu and
// ticket details, newest first.  When no bookings exist an empty slice
// is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := bookingJoin + `
	           FROM reservations r
	           JOIN menus m ON m.id = r.menu_id
	           JOIN tickets t ON t.reservation_id = r.id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := scanBooking(rows, &d); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListRecent returns the most recent bookings across all students with
// the booking student's identity attached.  The staff dashboard shows
// the latest handful.
func (r *ReservationRepo) ListRecent(ctx context.Context, limit int) ([]StaffBookingDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	q := bookingJoin + `,
	       u.id, CONCAT(u.first_name, ' ', u.last_name), u.matricule
	           FROM reservations r
	           JOIN menus m ON m.id = r.menu_id
	           JOIN tickets t ON t.reservation_id = r.id
	           JOIN users u ON u.id = r.user_id
	           ORDER BY r.created_at DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]StaffBookingDetail, 0)
	for rows.Next() {
		var d StaffBookingDetail
		if err := scanBooking(rows, &d.BookingDetail, &d.StudentID, &d.StudentName, &d.Matricule); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// CountAll returns the total number of reservations ever made.
func (r *ReservationRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations").Scan(&n)
	return n, err
}

// SetPaidTx marks a reservation as settled inside a transaction.  The
// flag only ever moves false→true.
func (r *ReservationRepo) SetPaidTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE reservations SET is_paid=1 WHERE id=?", reservationID)
	return err
}
