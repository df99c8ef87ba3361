package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestGetUserID(t *testing.T) {
	e := echo.New()
	newCtx := func(v any) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if v != nil {
			c.Set("user_id", v)
		}
		return c
	}

	// JWT numeric claims come back as float64.
	for _, v := range []any{uint64(42), int(42), int64(42), float64(42), "42"} {
		got, err := getUserID(newCtx(v))
		if err != nil {
			t.Errorf("getUserID(%T) returned error: %v", v, err)
			continue
		}
		if got != 42 {
			t.Errorf("getUserID(%T) = %d, want 42", v, got)
		}
	}

	if _, err := getUserID(newCtx(nil)); err == nil {
		t.Error("missing user_id should error")
	}
	if _, err := getUserID(newCtx("not-a-number")); err == nil {
		t.Error("garbage user_id should error")
	}
}

func TestPathID(t *testing.T) {
	e := echo.New()
	newCtx := func(id string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(id)
		return c
	}

	got, err := pathID(newCtx("17"))
	if err != nil || got != 17 {
		t.Errorf("pathID(17) = %d, %v; want 17, nil", got, err)
	}
	for _, bad := range []string{"0", "-1", "abc", ""} {
		if _, err := pathID(newCtx(bad)); err == nil {
			t.Errorf("pathID(%q) should error", bad)
		}
	}
}

func TestMenuBodyValidate(t *testing.T) {
	price := uint32(350)
	good := menuBody{MenuDate: "2026-04-01", MealType: "lunch", PriceCents: &price}
	date, meal, err := good.validate()
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if date.Format("2006-01-02") != "2026-04-01" || meal != "lunch" {
		t.Errorf("validate = %v %v, want 2026-04-01 lunch", date, meal)
	}

	bad := []menuBody{
		{MenuDate: "01/04/2026", MealType: "lunch", PriceCents: &price},
		{MenuDate: "2026-04-01", MealType: "brunch", PriceCents: &price},
		{MenuDate: "2026-04-01", MealType: "lunch"},
	}
	negStock := -1
	bad = append(bad, menuBody{MenuDate: "2026-04-01", MealType: "lunch", PriceCents: &price, Stock: &negStock})
	for i, b := range bad {
		if _, _, err := b.validate(); err == nil {
			t.Errorf("case %d: validate should reject %+v", i, b)
		}
	}
}
