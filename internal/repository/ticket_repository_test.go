package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// duplicateCodeErr mimics the driver error for a collision on the
// unique tickets.code index.
var duplicateCodeErr = errors.New("Error 1062 (23000): Duplicate entry 'AB12CD34' for key 'tickets.code'")

// newTicketTx returns the mock plus a closure running CreateTx for
// reservation 3 inside a mocked transaction.
func newTicketTx(t *testing.T) (sqlmock.Sqlmock, func() error) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	repo := NewTicketRepo(db)
	return mock, func() error {
		_, err := repo.CreateTx(context.Background(), tx, 3)
		return err
	}
}

func TestTicketCreateTxRetriesOnCodeCollision(t *testing.T) {
	mock, createTx := newTicketTx(t)
	insert := regexp.QuoteMeta("INSERT INTO tickets (reservation_id, code) VALUES (?,?)")
	mock.ExpectExec(insert).WillReturnError(duplicateCodeErr)
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(9, 1))

	if err := createTx(); err != nil {
		t.Fatalf("CreateTx after one collision: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTicketCreateTxExhaustsRetries(t *testing.T) {
	mock, createTx := newTicketTx(t)
	insert := regexp.QuoteMeta("INSERT INTO tickets (reservation_id, code) VALUES (?,?)")
	for i := 0; i < codeInsertAttempts; i++ {
		mock.ExpectExec(insert).WillReturnError(duplicateCodeErr)
	}

	if err := createTx(); !errors.Is(err, ErrCodeExhausted) {
		t.Fatalf("CreateTx error = %v, want ErrCodeExhausted", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTicketCreateTxStopsOnOtherError(t *testing.T) {
	mock, createTx := newTicketTx(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).WillReturnError(boom)

	if err := createTx(); !errors.Is(err, boom) {
		t.Fatalf("CreateTx error = %v, want the driver error unchanged", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
