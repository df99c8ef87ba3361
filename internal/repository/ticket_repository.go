package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/uniresto/meal-reservation/internal/model"
	"github.com/uniresto/meal-reservation/internal/utils"
)

// TicketRepo provides persistence for redemption tickets.  A ticket is
// created together with its reservation and consumed at most once.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// codeInsertAttempts bounds the retry loop on duplicate-key collisions.
// With 36^8 possible codes a second collision in a row is effectively
// impossible; the bound only keeps a broken RNG from looping forever.
const codeInsertAttempts = 5

// CreateTx inserts a ticket for the reservation within an existing
// transaction, generating a fresh random code.  A collision with the
// unique code index (MySQL 1062) is retried with a new code.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (model.Ticket, error) {
	var t model.Ticket
	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		code, err := utils.NewTicketCode()
		if err != nil {
			return t, err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO tickets (reservation_id, code) VALUES (?,?)", reservationID, code)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") &&
				strings.Contains(strings.ToLower(err.Error()), "code") {
				continue // code collision, roll a new one
			}
			return t, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return t, err
		}
		t.ID = uint64(id)
		t.ReservationID = reservationID
		t.Code = code
		return t, nil
	}
	return t, ErrCodeExhausted
}

// TicketDetail bundles a ticket with its reservation, the booking
// student and the menu, as shown to staff during redemption.
type TicketDetail struct {
	ID            uint64  `json:"id"`
	Code          string  `json:"code"`
	IsUsed        bool    `json:"is_used"`
	UsedAt        *string `json:"used_at,omitempty"`
	ReservationID uint64  `json:"reservation_id"`
	PaymentMethod string  `json:"payment_method"`
	IsPaid        bool    `json:"is_paid"`
	StudentID     uint64  `json:"student_id"`
	StudentName   string  `json:"student_name"`
	Matricule     string  `json:"matricule"`
	MenuID        uint64  `json:"menu_id"`
	MenuDate      string  `json:"menu_date"`
	MealType      string  `json:"meal_type"`
	Description   string  `json:"description"`
	PriceCents    uint32  `json:"price_cents"`
}

const ticketDetailQuery = `SELECT t.id, t.code, t.is_used, t.used_at,
	       r.id, r.payment_method, r.is_paid,
	       u.id, CONCAT(u.first_name, ' ', u.last_name), u.matricule,
	       m.id, m.menu_date, m.meal_type, m.description, m.price_cents
	FROM tickets t
	JOIN reservations r ON r.id = t.reservation_id
	JOIN users u ON u.id = r.user_id
	JOIN menus m ON m.id = r.menu_id`

func scanTicketDetail(row *sql.Row) (*TicketDetail, error) {
	var d TicketDetail
	var usedAt sql.NullTime
	var menuDate time.Time
	err := row.Scan(&d.ID, &d.Code, &d.IsUsed, &usedAt,
		&d.ReservationID, &d.PaymentMethod, &d.IsPaid,
		&d.StudentID, &d.StudentName, &d.Matricule,
		&d.MenuID, &menuDate, &d.MealType, &d.Description, &d.PriceCents)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		iso := usedAt.Time.UTC().Format(time.RFC3339)
		d.UsedAt = &iso
	}
	d.MenuDate = menuDate.Format("2006-01-02")
	return &d, nil
}

// FindByCode looks a ticket up by its redemption code, case-folded to
// upper.  Missing codes return sql.ErrNoRows.
func (r *TicketRepo) FindByCode(ctx context.Context, code string) (*TicketDetail, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return scanTicketDetail(r.db.QueryRowContext(ctx, ticketDetailQuery+" WHERE t.code = ?", code))
}

// GetByID fetches a ticket with its joined detail by primary key.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*TicketDetail, error) {
	return scanTicketDetail(r.db.QueryRowContext(ctx, ticketDetailQuery+" WHERE t.id = ?", id))
}

// RedeemTx consumes the ticket inside a transaction.  The is_used=0
// predicate makes the unused→used transition atomic: a second
// redemption affects zero rows and returns ErrTicketUsed with no
// mutation.  On success the linked reservation's id is returned so the
// caller can settle payment in the same transaction.
func (r *TicketRepo) RedeemTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (uint64, error) {
	var reservationID uint64
	err := tx.QueryRowContext(ctx,
		"SELECT reservation_id FROM tickets WHERE id=?", ticketID).Scan(&reservationID)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE tickets SET is_used=1, used_at=UTC_TIMESTAMP() WHERE id=? AND is_used=0", ticketID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrTicketUsed
	}
	return reservationID, nil
}
