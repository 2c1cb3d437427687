package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"shopchat/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := Open(DriverPure, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type brokenResult struct{}

func (brokenResult) LastInsertId() (int64, error) { return 0, errors.New("no id") }
func (brokenResult) RowsAffected() (int64, error) { return 1, nil }

func TestInsertID_ReportsDriverError(t *testing.T) {
	id, err := insertID(brokenResult{}, "order")
	assert.Zero(t, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read order id")
}

func TestOpen_SchemaAndMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"users", "categories", "products", "category_product", "orders", "order_items"} {
		assert.True(t, tableExists(s.DB(), table), table)
	}
	assert.True(t, columnExists(s.DB(), "categories", "image"))
	assert.True(t, columnExists(s.DB(), "products", "image"))

	// Running again is a no-op
	require.NoError(t, RunMigrations(s.DB()))
}

func TestOpen_FileDatabaseReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shop.db")

	s, err := Open(DriverPure, path)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.CreateCategory(ctx, &catalog.Category{Name: "Books", IsActive: true}))
	require.NoError(t, s.Close())

	s, err = Open(DriverPure, path)
	require.NoError(t, err)
	defer s.Close()

	c, err := s.CategoryBySlug(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)
	assert.Equal(t, path, s.Path())
}

func TestCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fixed := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.CreateCategory(ctx, &catalog.Category{Name: "Toys", Description: "Fun", Image: "/t.jpg", IsActive: true}))
	hidden := &catalog.Category{Name: "Archive", IsActive: false}
	require.NoError(t, s.CreateCategory(ctx, hidden))
	assert.NotZero(t, hidden.ID)
	assert.Equal(t, "archive", hidden.Slug)

	all, err := s.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Archive", all[0].Name)

	active, err := s.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, catalog.Category{
		ID: active[0].ID, Name: "Toys", Description: "Fun", Slug: "toys", Image: "/t.jpg", IsActive: true, CreatedAt: fixed,
	}, active[0])

	_, err = s.CategoryBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Slugs are unique
	assert.Error(t, s.CreateCategory(ctx, &catalog.Category{Name: "Toys"}))
}

func TestProductsInCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	books := &catalog.Category{Name: "Books", IsActive: true}
	games := &catalog.Category{Name: "Games", IsActive: true}
	require.NoError(t, s.CreateCategory(ctx, books))
	require.NoError(t, s.CreateCategory(ctx, games))

	novel := &catalog.Product{Name: "Novel", Price: 1299, IsActive: true}
	chess := &catalog.Product{Name: "Chess", Price: 2500, IsActive: true}
	require.NoError(t, s.CreateProduct(ctx, novel))
	require.NoError(t, s.CreateProduct(ctx, chess))

	require.NoError(t, s.LinkCategory(ctx, novel.ID, books.ID))
	require.NoError(t, s.LinkCategory(ctx, novel.ID, books.ID))
	require.NoError(t, s.LinkCategory(ctx, chess.ID, games.ID))
	require.NoError(t, s.LinkCategory(ctx, chess.ID, books.ID))

	got, err := s.ProductsInCategory(ctx, "books")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Chess", got[0].Name)
	assert.Equal(t, int64(1299), got[1].Price)

	got, err = s.ProductsInCategory(ctx, "games")
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = s.ProductsInCategory(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateOrder_Transactional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &catalog.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, s.CreateUser(ctx, u))
	p := &catalog.Product{Name: "Lamp", Price: 450, IsActive: true}
	require.NoError(t, s.CreateProduct(ctx, p))

	o := &catalog.Order{
		UserID:        u.ID,
		Status:        catalog.StatusPending,
		PaymentMethod: catalog.PaymentCash,
		PaymentStatus: catalog.StatusCompleted,
		Items:         []catalog.OrderItem{catalog.NewOrderItem(*p, 3)},
		TotalAmount:   1, // corrected on write
	}
	require.NoError(t, s.CreateOrder(ctx, o))
	assert.Equal(t, int64(1350), o.TotalAmount)
	assert.NotZero(t, o.ID)
	assert.NotZero(t, o.Items[0].ID)
	assert.Equal(t, o.ID, o.Items[0].OrderID)

	// An item referencing a missing product fails the whole order
	bad := &catalog.Order{
		UserID:        u.ID,
		Status:        catalog.StatusPending,
		PaymentMethod: catalog.PaymentCash,
		PaymentStatus: catalog.StatusPending,
		Items:         []catalog.OrderItem{catalog.NewOrderItem(catalog.Product{ID: 999, Price: 1}, 1)},
	}
	assert.Error(t, s.CreateOrder(ctx, bad))

	orders, err := s.OrdersForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, catalog.StatusCompleted, orders[0].PaymentStatus)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 3, orders[0].Items[0].Quantity)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Stats{Users: 1, Products: 1, Orders: 1, OrderItems: 1}, st)

	_, err = s.OrdersForUser(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeederAgainstStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := catalog.NewSeeder(s, rand.New(rand.NewPCG(11, 22))).Seed(ctx, catalog.DefaultSeedOptions)
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Categories, st.Categories)
	assert.Equal(t, res.Products, st.Products)
	assert.Equal(t, res.Users, st.Users)
	assert.Equal(t, res.Orders, st.Orders)
	assert.Equal(t, res.OrderItems, st.OrderItems)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, res.Users)

	for _, u := range users {
		orders, err := s.OrdersForUser(ctx, u.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(orders), 1)
		assert.LessOrEqual(t, len(orders), 3)
		for _, o := range orders {
			var sum int64
			for _, it := range o.Items {
				sum += it.TotalAmount
			}
			assert.Equal(t, sum, o.TotalAmount)
		}
	}
}
