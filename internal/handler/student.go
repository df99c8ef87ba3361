package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/model"
	"github.com/uniresto/meal-reservation/internal/queue"
	"github.com/uniresto/meal-reservation/internal/repository"
	queue_publisher "github.com/uniresto/meal-reservation/internal/service"
)

// StudentHandler groups repositories for the student-facing booking
// flow.  All methods assume JWT authentication and role validation have
// already been performed by middleware; they may still return 401 when
// the user ID cannot be extracted from the context.  The booking
// mutation runs inside a transaction owned by the handler to guarantee
// that the stock decrement, the reservation and the ticket are observed
// together.
type StudentHandler struct {
	Menus        *repository.MenuRepo
	Reservations *repository.ReservationRepo
	Tickets      *repository.TicketRepo
}

// NewStudentHandler constructs a StudentHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewStudentHandler(menus *repository.MenuRepo, reservations *repository.ReservationRepo, tickets *repository.TicketRepo) *StudentHandler {
	if menus == nil || reservations == nil || tickets == nil {
		panic("nil repository passed to NewStudentHandler")
	}
	return &StudentHandler{Menus: menus, Reservations: reservations, Tickets: tickets}
}

// Dashboard handles GET /v1/student/dashboard.  It returns the active
// menus with remaining stock plus the slot keys the student has already
// booked, so the client can disable those slots.
func (h *StudentHandler) Dashboard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	menus, err := h.Menus.ListActiveAvailable(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	slots, err := h.Reservations.BookedSlots(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"menus":        toMenuResps(menus),
		"booked_slots": slots,
	})
}

// Book handles POST /v1/menus/:id/book.  The whole mutation runs in one
// transaction: load the menu, reject a duplicate slot, take one unit of
// stock with a conditional update, insert the reservation and its
// ticket.  Online bookings are paid immediately; cash settles at
// redemption.  On success a meal.booked event is published best-effort.
func (h *StudentHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	menuID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}
	var body struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	method, ok := model.ParsePaymentMethod(body.PaymentMethod)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method must be cash or online"})
	}

	ctx := c.Request().Context()
	tx, err := h.Menus.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	menu, err := h.Menus.GetByIDTx(ctx, tx, menuID)
	if err != nil {
		if errors.Is(err, repository.ErrMenuNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.Reservations.CheckSlotFreeTx(ctx, tx, userID, menu.MenuDate, menu.MealType); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already booked this slot"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing bookings"})
	}

	if err := h.Menus.DecrementStockTx(ctx, tx, menuID); err != nil {
		if errors.Is(err, repository.ErrOutOfStock) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no stock left for this meal"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reserve stock"})
	}

	res := &model.Reservation{
		UserID:           userID,
		MenuID:           menuID,
		OriginalMenuDate: menu.MenuDate,
		PaymentMethod:    method,
		IsPaid:           method.Paid(),
		Status:           "confirmed",
	}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	ticket, err := h.Tickets.CreateTx(ctx, tx, res.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ticket"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Best-effort: booking already committed, publish failures are only
	// logged.  Background context because the request context ends with
	// the response.
	go func() {
		_ = queue_publisher.PublishMealBooked(context.Background(), queue.MealBookedEvent{
			ReservationID: res.ID,
			UserID:        userID,
			MenuID:        menuID,
			MenuDate:      menu.MenuDate.Format("2006-01-02"),
			MealType:      string(menu.MealType),
			PriceCents:    menu.PriceCents,
			PaymentMethod: string(method),
			IsPaid:        res.IsPaid,
			TicketCode:    ticket.Code,
			BookedAt:      time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": res.ID,
		"menu_id":        menuID,
		"is_paid":        res.IsPaid,
		"payment_method": string(method),
		"ticket": echo.Map{
			"id":   ticket.ID,
			"code": ticket.Code,
		},
	})
}

// MyTickets handles GET /v1/tickets.  It lists the student's own
// reservations with menu and ticket details, newest first.
func (h *StudentHandler) MyTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}
