package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/model"
	"github.com/uniresto/meal-reservation/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints.  Responses
// carry no user-specific data, which is what allows the response cache
// to sit in front of them.
type PublicHandler struct {
	Menus *repository.MenuRepo
}

func NewPublicHandler(menus *repository.MenuRepo) *PublicHandler {
	if menus == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Menus: menus}
}

// menuResp is the JSON shape of a menu across all views.
type menuResp struct {
	ID          uint64  `json:"id"`
	MenuDate    string  `json:"menu_date"`
	MealType    string  `json:"meal_type"`
	Description string  `json:"description"`
	PriceCents  uint32  `json:"price_cents"`
	ImageURL    *string `json:"image_url,omitempty"`
	Stock       int     `json:"stock"`
	IsActive    bool    `json:"is_active"`
}

func toMenuResp(m model.Menu) menuResp {
	return menuResp{
		ID:          m.ID,
		MenuDate:    m.MenuDate.Format("2006-01-02"),
		MealType:    string(m.MealType),
		Description: m.Description,
		PriceCents:  m.PriceCents,
		ImageURL:    m.ImageURL,
		Stock:       m.Stock,
		IsActive:    m.IsActive,
	}
}

func toMenuResps(menus []model.Menu) []menuResp {
	out := make([]menuResp, 0, len(menus))
	for _, m := range menus {
		out = append(out, toMenuResp(m))
	}
	return out
}

// ListMenus handles GET /v1/menus.  It returns active menus that still
// have stock, date ascending, so guests can preview the catalog before
// logging in.
func (h *PublicHandler) ListMenus(c echo.Context) error {
	menus, err := h.Menus.ListActiveAvailable(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"menus": toMenuResps(menus)})
}
