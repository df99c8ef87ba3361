package repository

import (
	"context"
	"database/sql"

	"github.com/uniresto/meal-reservation/internal/model"
)

// MenuRepo provides CRUD operations for the menu catalog.  Dates are
// stored as DATE columns and handled as UTC midnight time.Time values.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// spanning multiple repositories.
func (r *MenuRepo) DB() *sql.DB { return r.db }

const menuColumns = "id, menu_date, meal_type, description, price_cents, image_url, stock, is_active, created_at, updated_at"

func scanMenu(scan func(dest ...any) error) (model.Menu, error) {
	var m model.Menu
	var meal string
	var img sql.NullString
	err := scan(&m.ID, &m.MenuDate, &meal, &m.Description, &m.PriceCents,
		&img, &m.Stock, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return m, err
	}
	if parsed, ok := model.ParseMealType(meal); ok {
		m.MealType = parsed
	}
	if img.Valid {
		u := img.String
		m.ImageURL = &u
	}
	return m, nil
}

// Create inserts a menu and populates the generated ID on the struct.
func (r *MenuRepo) Create(ctx context.Context, m *model.Menu) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO menus (menu_date, meal_type, description, price_cents, image_url, stock, is_active) VALUES (?,?,?,?,?,?,?)",
		m.MenuDate.Format("2006-01-02"), string(m.MealType), m.Description, m.PriceCents, m.ImageURL, m.Stock, m.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update rewrites all editable menu fields.
func (r *MenuRepo) Update(ctx context.Context, m *model.Menu) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE menus SET menu_date=?, meal_type=?, description=?, price_cents=?, image_url=?, stock=? WHERE id=?",
		m.MenuDate.Format("2006-01-02"), string(m.MealType), m.Description, m.PriceCents, m.ImageURL, m.Stock, m.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also zero for no-change updates; confirm the row is gone
		var exists bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM menus WHERE id=?)", m.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrMenuNotFound
		}
	}
	return nil
}

// ToggleActive flips the is_active flag and returns the new value.
func (r *MenuRepo) ToggleActive(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE menus SET is_active = NOT is_active WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrMenuNotFound
	}
	var active bool
	err = r.db.QueryRowContext(ctx, "SELECT is_active FROM menus WHERE id=?", id).Scan(&active)
	return active, err
}

// Delete removes a menu.  The foreign keys cascade the delete to the
// menu's reservations and their tickets.
func (r *MenuRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM menus WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMenuNotFound
	}
	return nil
}

// GetByID fetches a menu by id.  Missing rows map to ErrMenuNotFound.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (model.Menu, error) {
	m, err := scanMenu(r.db.QueryRowContext(ctx,
		"SELECT "+menuColumns+" FROM menus WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return m, ErrMenuNotFound
	}
	return m, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *MenuRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Menu, error) {
	m, err := scanMenu(tx.QueryRowContext(ctx,
		"SELECT "+menuColumns+" FROM menus WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return m, ErrMenuNotFound
	}
	return m, err
}

// ListActiveAvailable returns active menus with remaining stock,
// ordered by date ascending.  This is the student-facing catalog.
func (r *MenuRepo) ListActiveAvailable(ctx context.Context) ([]model.Menu, error) {
	return r.list(ctx, "SELECT "+menuColumns+" FROM menus WHERE is_active=1 AND stock > 0 ORDER BY menu_date ASC, meal_type ASC")
}

// ListAll returns every menu, newest date first.  Used by staff views.
func (r *MenuRepo) ListAll(ctx context.Context) ([]model.Menu, error) {
	return r.list(ctx, "SELECT "+menuColumns+" FROM menus ORDER BY menu_date DESC, meal_type ASC")
}

func (r *MenuRepo) list(ctx context.Context, query string) ([]model.Menu, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	menus := make([]model.Menu, 0)
	for rows.Next() {
		m, err := scanMenu(rows.Scan)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

// DecrementStockTx atomically takes one unit of stock inside the
// booking transaction.  The conditional update is the whole point:
// stock>0 is checked and decremented in one statement, so two
// concurrent bookings of the last unit cannot both pass.  Zero affected
// rows means sold out or inactive and maps to ErrOutOfStock.
func (r *MenuRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE menus SET stock = stock - 1 WHERE id=? AND stock > 0 AND is_active=1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOutOfStock
	}
	return nil
}
