package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/repository"
)

const (
	selectMenuByID  = "FROM menus WHERE id=? LIMIT 1"
	checkSlotFree   = "SELECT EXISTS"
	decrementStock  = "UPDATE menus SET stock = stock - 1 WHERE id=? AND stock > 0 AND is_active=1"
	insertBooking   = "INSERT INTO reservations"
	selectCreatedAt = "SELECT created_at FROM reservations WHERE id=?"
	insertTicket    = "INSERT INTO tickets (reservation_id, code) VALUES (?,?)"
)

// duplicateTicketCodeErr mimics the driver error for a collision on the
// unique tickets.code index.
var duplicateTicketCodeErr = errors.New("Error 1062 (23000): Duplicate entry 'AB12CD34' for key 'tickets.code'")

var menuColumns = []string{
	"id", "menu_date", "meal_type", "description", "price_cents",
	"image_url", "stock", "is_active", "created_at", "updated_at",
}

func menuRow(stock int) *sqlmock.Rows {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(menuColumns).
		AddRow(int64(5), date, "lunch", "grilled chicken", int64(450), nil, int64(stock), true, now, now)
}

// bookMeal drives StudentHandler.Book for menu 5 as user 7 against a
// mocked database.
func bookMeal(t *testing.T, db *sql.DB, body string) *httptest.ResponseRecorder {
	t.Helper()
	// The post-commit event publish must not reach a live broker.
	t.Setenv("RABBITMQ_URL", "amqp://127.0.0.1:1")

	h := NewStudentHandler(
		repository.NewMenuRepo(db),
		repository.NewReservationRepo(db),
		repository.NewTicketRepo(db),
	)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", uint64(7))
	if err := h.Book(c); err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	return rec
}

func newBookingMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestBookMenuNotFound(t *testing.T) {
	db, mock := newBookingMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectMenuByID)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	rec := bookMeal(t, db, `{"payment_method":"cash"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookRejectsDuplicateSlot(t *testing.T) {
	db, mock := newBookingMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectMenuByID)).WillReturnRows(menuRow(10))
	mock.ExpectQuery(checkSlotFree).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(true))
	mock.ExpectRollback()

	rec := bookMeal(t, db, `{"payment_method":"cash"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	// No stock decrement and no inserts were expected: the conflict must
	// leave catalog and ledger untouched.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookRejectsWhenSoldOut(t *testing.T) {
	db, mock := newBookingMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectMenuByID)).WillReturnRows(menuRow(0))
	mock.ExpectQuery(checkSlotFree).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(false))
	// Conditional decrement affects zero rows when stock is gone.
	mock.ExpectExec(regexp.QuoteMeta(decrementStock)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rec := bookMeal(t, db, `{"payment_method":"online"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookRejectsBadPaymentMethod(t *testing.T) {
	db, mock := newBookingMock(t)

	rec := bookMeal(t, db, `{"payment_method":"card"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	// Validation fails before any transaction starts.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookOnlineCommitsPaidReservation(t *testing.T) {
	db, mock := newBookingMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectMenuByID)).WillReturnRows(menuRow(3))
	mock.ExpectQuery(checkSlotFree).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(decrementStock)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertBooking).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectCreatedAt)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).
			AddRow(time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)))
	// First code insert collides with the unique index; the retry lands.
	mock.ExpectExec(regexp.QuoteMeta(insertTicket)).
		WillReturnError(duplicateTicketCodeErr)
	mock.ExpectExec(regexp.QuoteMeta(insertTicket)).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	rec := bookMeal(t, db, `{"payment_method":"online"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		ReservationID uint64 `json:"reservation_id"`
		IsPaid        bool   `json:"is_paid"`
		PaymentMethod string `json:"payment_method"`
		Ticket        struct {
			ID   uint64 `json:"id"`
			Code string `json:"code"`
		} `json:"ticket"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ReservationID != 11 {
		t.Errorf("reservation_id = %d, want 11", resp.ReservationID)
	}
	if !resp.IsPaid {
		t.Error("online booking must be paid immediately")
	}
	if len(resp.Ticket.Code) != 8 {
		t.Errorf("ticket code %q length = %d, want 8", resp.Ticket.Code, len(resp.Ticket.Code))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookCashIsUnpaidUntilRedemption(t *testing.T) {
	db, mock := newBookingMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectMenuByID)).WillReturnRows(menuRow(3))
	mock.ExpectQuery(checkSlotFree).
		WillReturnRows(sqlmock.NewRows([]string{"taken"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(decrementStock)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertBooking).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectCreatedAt)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).
			AddRow(time.Date(2026, 9, 1, 9, 31, 0, 0, time.UTC)))
	mock.ExpectExec(regexp.QuoteMeta(insertTicket)).
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectCommit()

	rec := bookMeal(t, db, `{"payment_method":"cash"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		IsPaid bool `json:"is_paid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsPaid {
		t.Error("cash booking must stay unpaid until redemption")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
