package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/repository"
)

const (
	selectTicketReservation = "SELECT reservation_id FROM tickets WHERE id=?"
	redeemTicket            = "UPDATE tickets SET is_used=1, used_at=UTC_TIMESTAMP() WHERE id=? AND is_used=0"
	settlePayment           = "UPDATE reservations SET is_paid=1 WHERE id=?"
)

// consumeTicket drives StaffHandler.ConsumeTicket for ticket 21 against
// a mocked database.
func consumeTicket(t *testing.T, db *sql.DB) *httptest.ResponseRecorder {
	t.Helper()
	t.Setenv("RABBITMQ_URL", "amqp://127.0.0.1:1")

	h := NewStaffHandler(
		repository.NewMenuRepo(db),
		repository.NewReservationRepo(db),
		repository.NewTicketRepo(db),
	)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("21")
	if err := h.ConsumeTicket(c); err != nil {
		t.Fatalf("ConsumeTicket returned error: %v", err)
	}
	return rec
}

func ticketDetailRow(used bool) *sqlmock.Rows {
	cols := []string{
		"t_id", "code", "is_used", "used_at",
		"r_id", "payment_method", "is_paid",
		"u_id", "student_name", "matricule",
		"m_id", "menu_date", "meal_type", "description", "price_cents",
	}
	var usedAt interface{}
	if used {
		usedAt = time.Date(2026, 9, 2, 12, 15, 0, 0, time.UTC)
	}
	return sqlmock.NewRows(cols).AddRow(
		int64(21), "AB12CD34", used, usedAt,
		int64(11), "cash", used,
		int64(7), "Awa Diallo", "20260042",
		int64(5), time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), "lunch", "grilled chicken", int64(450),
	)
}

func TestConsumeTicketSettlesAndMarksUsed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectTicketReservation)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id"}).AddRow(int64(11)))
	mock.ExpectExec(regexp.QuoteMeta(redeemTicket)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(settlePayment)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM tickets t").WillReturnRows(ticketDetailRow(true))

	rec := consumeTicket(t, db)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		IsUsed bool `json:"is_used"`
		IsPaid bool `json:"is_paid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsUsed || !resp.IsPaid {
		t.Errorf("response is_used=%v is_paid=%v, want both true", resp.IsUsed, resp.IsPaid)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsumeTicketRejectsSecondRedemption(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectTicketReservation)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id"}).AddRow(int64(11)))
	// The is_used=0 guard matches no row on a used ticket.
	mock.ExpectExec(regexp.QuoteMeta(redeemTicket)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rec := consumeTicket(t, db)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	// No payment settlement and no commit: a second redemption leaves
	// the reservation untouched.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsumeTicketNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectTicketReservation)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	rec := consumeTicket(t, db)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
