package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/config"
	"github.com/uniresto/meal-reservation/internal/model"
	"github.com/uniresto/meal-reservation/internal/repository"
)

// AdminHandler covers staff account management and revenue reporting.
type AdminHandler struct {
	Cfg          config.Config
	Users        *repository.UserRepo
	Reservations *repository.ReservationRepo
	Reports      *repository.ReportRepo
}

func NewAdminHandler(cfg config.Config, users *repository.UserRepo, reservations *repository.ReservationRepo, reports *repository.ReportRepo) *AdminHandler {
	if users == nil || reservations == nil || reports == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Users: users, Reservations: reservations, Reports: reports}
}

// staffResp is the JSON shape of a staff account in admin views.  The
// password hash never leaves the server.
type staffResp struct {
	ID        uint64 `json:"id"`
	Matricule string `json:"matricule"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
}

func toStaffResps(users []model.User) []staffResp {
	out := make([]staffResp, 0, len(users))
	for _, u := range users {
		out = append(out, staffResp{
			ID:        u.ID,
			Matricule: u.Matricule,
			Name:      strings.TrimSpace(u.FirstName + " " + u.LastName),
			Email:     u.Email,
			IsActive:  u.IsActive,
		})
	}
	return out
}

// Dashboard handles GET /v1/admin/dashboard: staff roster, total booking
// count and the revenue breakdown in one payload.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	staff, err := h.Users.ListByRole(ctx, model.RoleStaff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	total, err := h.Reservations.CountAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	revenue, err := h.Reports.RevenueByDate(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"staff":               toStaffResps(staff),
		"total_reservations":  total,
		"revenue_by_date":     revenue,
		"revenue_total_cents": repository.GrandTotal(revenue),
	})
}

// Revenue handles GET /v1/admin/revenue, the per-date breakdown of paid
// reservations plus the grand total.
func (h *AdminHandler) Revenue(c echo.Context) error {
	rows, err := h.Reports.RevenueByDate(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"revenue_by_date":     rows,
		"revenue_total_cents": repository.GrandTotal(rows),
	})
}

// ListStaff handles GET /v1/admin/staff.
func (h *AdminHandler) ListStaff(c echo.Context) error {
	staff, err := h.Users.ListByRole(c.Request().Context(), model.RoleStaff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"staff": toStaffResps(staff)})
}

// AddStaff handles POST /v1/admin/staff, creating a staff account with
// an admin-chosen initial password.
func (h *AdminHandler) AddStaff(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Matricule = strings.TrimSpace(req.Matricule)
	if req.Email == "" || req.Password == "" || req.Matricule == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "matricule, email and password required"})
	}

	uid, err := h.Users.Create(c.Request().Context(), repository.NewUserParams{
		Matricule: req.Matricule,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      model.RoleStaff,
		Quota:     h.Cfg.DefaultQuota,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		if errors.Is(err, repository.ErrMatriculeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "matricule already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create staff failed"})
	}

	return c.JSON(http.StatusCreated, staffResp{
		ID:        uid,
		Matricule: req.Matricule,
		Name:      strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:     req.Email,
		IsActive:  true,
	})
}

// DeleteStaff handles DELETE /v1/admin/staff/:id.  Only accounts holding
// the staff role can be removed this way; hitting an admin or student
// row yields 403 rather than silently deleting it.
func (h *AdminHandler) DeleteStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if err := h.Users.DeleteStaff(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a staff account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
