package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopchat/internal/catalog"
	"shopchat/internal/logging"
)

// =============================================================================
// WRITES
// =============================================================================

// CreateUser inserts u and sets its ID and CreatedAt.
func (s *LocalStore) CreateUser(ctx context.Context, u *catalog.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, created_at) VALUES (?, ?, ?)",
		u.Name, u.Email, ts,
	)
	if err != nil {
		return fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	if u.ID, err = insertID(res, "user"); err != nil {
		return err
	}
	u.CreatedAt = parseTimestamp(ts)
	return nil
}

// CreateCategory inserts c. An empty slug is derived from the name.
func (s *LocalStore) CreateCategory(ctx context.Context, c *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Slug == "" {
		c.Slug = catalog.Slugify(c.Name)
	}
	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, description, slug, image, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Description, c.Slug, c.Image, c.IsActive, ts,
	)
	if err != nil {
		return fmt.Errorf("insert category %q: %w", c.Slug, err)
	}
	if c.ID, err = insertID(res, "category"); err != nil {
		return err
	}
	c.CreatedAt = parseTimestamp(ts)
	return nil
}

// CreateProduct inserts p. An empty slug is derived from the name.
func (s *LocalStore) CreateProduct(ctx context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Slug == "" {
		p.Slug = catalog.Slugify(p.Name)
	}
	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, slug, description, price, image, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Slug, p.Description, p.Price, p.Image, p.IsActive, ts,
	)
	if err != nil {
		return fmt.Errorf("insert product %q: %w", p.Slug, err)
	}
	if p.ID, err = insertID(res, "product"); err != nil {
		return err
	}
	p.CreatedAt = parseTimestamp(ts)
	return nil
}

// LinkCategory puts a product in a category. Linking twice is a no-op.
func (s *LocalStore) LinkCategory(ctx context.Context, productID, categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO category_product (category_id, product_id) VALUES (?, ?)",
		categoryID, productID,
	)
	if err != nil {
		return fmt.Errorf("link product %d to category %d: %w", productID, categoryID, err)
	}
	return nil
}

// CreateOrder inserts o and its items in one transaction. TotalAmount is
// recomputed from the items before writing.
func (s *LocalStore) CreateOrder(ctx context.Context, o *catalog.Order) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.Recalculate()
	ts := s.timestamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, status, payment_method, payment_status, total_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.UserID, string(o.Status), o.PaymentMethod, string(o.PaymentStatus), o.TotalAmount, ts,
	)
	if err != nil {
		return fmt.Errorf("insert order for user %d: %w", o.UserID, err)
	}
	orderID, err := insertID(res, "order")
	if err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price, total_amount)
			 VALUES (?, ?, ?, ?, ?)`,
			orderID, it.ProductID, it.Quantity, it.Price, it.TotalAmount,
		)
		if err != nil {
			return fmt.Errorf("insert order item (product %d): %w", it.ProductID, err)
		}
		if it.ID, err = insertID(res, "order item"); err != nil {
			return err
		}
		it.OrderID = orderID
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	o.ID = orderID
	o.CreatedAt = parseTimestamp(ts)
	logging.StoreDebug("Created order %d for user %d (%d items, total %d)", o.ID, o.UserID, len(o.Items), o.TotalAmount)
	return nil
}

// insertID returns the row ID of an INSERT result.
func insertID(res sql.Result, what string) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read %s id: %w", what, err)
	}
	return id, nil
}

// =============================================================================
// READS
// =============================================================================

const categoryColumns = "id, name, description, slug, image, is_active, created_at"
const productColumns = "p.id, p.name, p.slug, p.description, p.price, p.image, p.is_active, p.created_at"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(row scanner) (catalog.Category, error) {
	var c catalog.Category
	var created string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.Image, &c.IsActive, &created)
	c.CreatedAt = parseTimestamp(created)
	return c, err
}

func scanProduct(row scanner) (catalog.Product, error) {
	var p catalog.Product
	var created string
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Image, &p.IsActive, &created)
	p.CreatedAt = parseTimestamp(created)
	return p, err
}

// ListCategories returns categories ordered by name.
func (s *LocalStore) ListCategories(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + categoryColumns + " FROM categories"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryBySlug returns the category with slug, or ErrNotFound.
func (s *LocalStore) CategoryBySlug(ctx context.Context, slug string) (catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoryBySlugLocked(ctx, slug)
}

func (s *LocalStore) categoryBySlugLocked(ctx context.Context, slug string) (catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE slug = ?", slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return catalog.Category{}, fmt.Errorf("get category %q: %w", slug, err)
	}
	return c, nil
}

// ProductsInCategory returns the products linked to the category with slug.
func (s *LocalStore) ProductsInCategory(ctx context.Context, slug string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.categoryBySlugLocked(ctx, slug)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN category_product cp ON cp.product_id = p.id
		 WHERE cp.category_id = ?
		 ORDER BY p.name, p.id`,
		c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("list products in %q: %w", slug, err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListProducts returns every product ordered by name.
func (s *LocalStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products p ORDER BY p.name, p.id")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]catalog.Product, error) {
	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListUsers returns every user ordered by id.
func (s *LocalStore) ListUsers(ctx context.Context) ([]catalog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []catalog.User
	for rows.Next() {
		var u catalog.User
		var created string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = parseTimestamp(created)
		out = append(out, u)
	}
	return out, rows.Err()
}

// OrdersForUser returns a user's orders with their items, oldest first.
// ErrNotFound if the user does not exist.
func (s *LocalStore) OrdersForUser(ctx context.Context, userID int64) ([]catalog.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check user %d: %w", userID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, status, payment_method, payment_status, total_amount, created_at
		 FROM orders WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}

	var orders []catalog.Order
	index := map[int64]int{}
	for rows.Next() {
		var o catalog.Order
		var status, payStatus, created string
		if err := rows.Scan(&o.ID, &o.UserID, &status, &o.PaymentMethod, &payStatus, &o.TotalAmount, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = catalog.Status(status)
		o.PaymentStatus = catalog.Status(payStatus)
		o.CreatedAt = parseTimestamp(created)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.db.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.total_amount
		 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		 WHERE o.user_id = ? ORDER BY oi.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items for user %d: %w", userID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it catalog.OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, itemRows.Err()
}

// Stats counts rows per entity.
func (s *LocalStore) Stats(ctx context.Context) (catalog.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st catalog.Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"users", &st.Users},
		{"categories", &st.Categories},
		{"products", &st.Products},
		{"orders", &st.Orders},
		{"order_items", &st.OrderItems},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return st, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return st, nil
}
