package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/model"
	"github.com/uniresto/meal-reservation/internal/queue"
	"github.com/uniresto/meal-reservation/internal/repository"
	queue_publisher "github.com/uniresto/meal-reservation/internal/service"
)

// StaffHandler bundles repositories for menu management and ticket
// redemption.  Role middleware guarantees only staff reach these
// handlers.
type StaffHandler struct {
	Menus        *repository.MenuRepo
	Reservations *repository.ReservationRepo
	Tickets      *repository.TicketRepo
}

// NewStaffHandler constructs a StaffHandler and panics if any
// dependency is nil.
func NewStaffHandler(menus *repository.MenuRepo, reservations *repository.ReservationRepo, tickets *repository.TicketRepo) *StaffHandler {
	if menus == nil || reservations == nil || tickets == nil {
		panic("nil repository passed to NewStaffHandler")
	}
	return &StaffHandler{Menus: menus, Reservations: reservations, Tickets: tickets}
}

// menuBody binds the create/update menu payload.
type menuBody struct {
	MenuDate    string  `json:"menu_date"`
	MealType    string  `json:"meal_type"`
	Description string  `json:"description"`
	PriceCents  *uint32 `json:"price_cents"`
	ImageURL    *string `json:"image_url"`
	Stock       *int    `json:"stock"`
}

// defaultStock is the stock assigned to new menus when the publisher
// leaves it out.
const defaultStock = 100

func (b *menuBody) validate() (time.Time, model.MealType, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(b.MenuDate))
	if err != nil {
		return time.Time{}, "", errors.New("menu_date must be YYYY-MM-DD")
	}
	meal, ok := model.ParseMealType(b.MealType)
	if !ok {
		return time.Time{}, "", errors.New("meal_type must be breakfast, lunch or dinner")
	}
	if b.PriceCents == nil {
		return time.Time{}, "", errors.New("price_cents is required")
	}
	if b.Stock != nil && *b.Stock < 0 {
		return time.Time{}, "", errors.New("stock must not be negative")
	}
	return date, meal, nil
}

// CreateMenu handles POST /v1/staff/menus and publishes a new meal
// offering.
func (h *StaffHandler) CreateMenu(c echo.Context) error {
	var body menuBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, meal, err := body.validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	stock := defaultStock
	if body.Stock != nil {
		stock = *body.Stock
	}
	m := &model.Menu{
		MenuDate:    date,
		MealType:    meal,
		Description: body.Description,
		PriceCents:  *body.PriceCents,
		ImageURL:    body.ImageURL,
		Stock:       stock,
		IsActive:    true,
	}
	if err := h.Menus.Create(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create menu"})
	}
	return c.JSON(http.StatusCreated, toMenuResp(*m))
}

// ListMenus handles GET /v1/staff/menus.  Staff see the full catalog
// including inactive and sold-out menus, newest date first.
func (h *StaffHandler) ListMenus(c echo.Context) error {
	menus, err := h.Menus.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"menus": toMenuResps(menus)})
}

// GetMenu handles GET /v1/staff/menus/:id, returning current values for
// the edit form.
func (h *StaffHandler) GetMenu(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}
	m, err := h.Menus.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMenuNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toMenuResp(m))
}

// UpdateMenu handles PUT /v1/staff/menus/:id and rewrites the editable
// fields.
func (h *StaffHandler) UpdateMenu(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}
	var body menuBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, meal, err := body.validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if body.Stock == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock is required"})
	}
	m := &model.Menu{
		ID:          id,
		MenuDate:    date,
		MealType:    meal,
		Description: body.Description,
		PriceCents:  *body.PriceCents,
		ImageURL:    body.ImageURL,
		Stock:       *body.Stock,
	}
	if err := h.Menus.Update(c.Request().Context(), m); err != nil {
		if errors.Is(err, repository.ErrMenuNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update menu"})
	}
	fresh, err := h.Menus.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusOK, toMenuResp(*m))
	}
	return c.JSON(http.StatusOK, toMenuResp(fresh))
}

// ToggleMenu handles POST /v1/staff/menus/:id/toggle, flipping the
// menu's visibility.
func (h *StaffHandler) ToggleMenu(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}
	active, err := h.Menus.ToggleActive(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMenuNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not toggle menu"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": active})
}

// DeleteMenu handles DELETE /v1/staff/menus/:id.  The database cascades
// the delete to the menu's reservations and their tickets.
func (h *StaffHandler) DeleteMenu(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}
	if err := h.Menus.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrMenuNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete menu"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Dashboard handles GET /v1/staff/dashboard.  It returns the ten most
// recent bookings and the full menu list; when a ticket_code query
// parameter is present the matching ticket detail is included, mirroring
// the counter workflow of scanning a ticket while watching the feed.
func (h *StaffHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	bookings, err := h.Reservations.ListRecent(ctx, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	menus, err := h.Menus.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resp := echo.Map{
		"recent_bookings": bookings,
		"menus":           toMenuResps(menus),
	}
	if code := strings.TrimSpace(c.QueryParam("ticket_code")); code != "" {
		det, err := h.Tickets.FindByCode(ctx, code)
		switch {
		case err == nil:
			resp["ticket"] = det
		case errors.Is(err, sql.ErrNoRows):
			resp["ticket"] = nil
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// SearchTicket handles POST /v1/staff/tickets/search.  Codes are
// case-folded to upper before lookup; a missing code reports not found
// without touching any state.
func (h *StaffHandler) SearchTicket(c echo.Context) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	det, err := h.Tickets.FindByCode(c.Request().Context(), body.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, det)
}

// ConsumeTicket handles POST /v1/staff/tickets/:id/consume.  Redemption
// and payment settlement commit together: the ticket flips to used and
// the linked reservation is marked paid (covers cash at pickup).  An
// already-used ticket is rejected with 409 and nothing changes.
func (h *StaffHandler) ConsumeTicket(c echo.Context) error {
	ticketID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
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

	reservationID, err := h.Tickets.RedeemTx(ctx, tx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		if errors.Is(err, repository.ErrTicketUsed) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already used"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to redeem ticket"})
	}
	if err := h.Reservations.SetPaidTx(ctx, tx, reservationID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to settle payment"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	det, err := h.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"id": ticketID, "is_used": true})
	}

	go func() {
		_ = queue_publisher.PublishTicketRedeemed(context.Background(), queue.TicketRedeemedEvent{
			TicketID:      det.ID,
			Code:          det.Code,
			ReservationID: det.ReservationID,
			UserID:        det.StudentID,
			MenuID:        det.MenuID,
			RedeemedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, det)
}
