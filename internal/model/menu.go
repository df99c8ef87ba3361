package model

import (
	"strings"
	"time"
)

// MealType is the closed set of meal slots a menu can be published for.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// ParseMealType normalizes a meal type string.  Unknown values return
// false.
func ParseMealType(s string) (MealType, bool) {
	switch MealType(strings.ToLower(strings.TrimSpace(s))) {
	case MealBreakfast:
		return MealBreakfast, true
	case MealLunch:
		return MealLunch, true
	case MealDinner:
		return MealDinner, true
	}
	return "", false
}

// Menu represents a bookable meal offering for a specific date and meal
// type.  This struct corresponds to a row in the `menus` table.  A menu
// owns its reservations: deleting a menu removes its reservations and
// their tickets through the foreign key cascade.
//
// Fields:
//  ID          – primary key identifier.
//  MenuDate    – calendar date the meal is served on.
//  MealType    – breakfast, lunch or dinner.
//  Description – free text describing the meal.
//  PriceCents  – price in cents.
//  ImageURL    – optional image reference.
//  Stock       – remaining bookable units (never negative).
//  IsActive    – whether the menu is visible to students.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Menu struct {
	ID          uint64    // menus.id
	MenuDate    time.Time // menus.menu_date (date only)
	MealType    MealType  // menus.meal_type
	Description string    // menus.description
	PriceCents  uint32    // menus.price_cents
	ImageURL    *string   // menus.image_url (nullable)
	Stock       int       // menus.stock
	IsActive    bool      // menus.is_active
	CreatedAt   time.Time // menus.created_at
	UpdatedAt   time.Time // menus.updated_at
}

// SlotKey identifies the booking slot a menu occupies.  A student may
// hold at most one reservation per slot key.
func SlotKey(date time.Time, meal MealType) string {
	return date.Format("2006-01-02") + "_" + string(meal)
}
