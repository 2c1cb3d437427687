package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"

	"shopchat/internal/logging"
)

// Writer is the persistence surface the seeder needs.
type Writer interface {
	CreateUser(ctx context.Context, u *User) error
	CreateCategory(ctx context.Context, c *Category) error
	CreateProduct(ctx context.Context, p *Product) error
	LinkCategory(ctx context.Context, productID, categoryID int64) error
	CreateOrder(ctx context.Context, o *Order) error
}

// SeedOptions sizes the generated data set.
type SeedOptions struct {
	Categories int
	Products   int
	Users      int
}

// DefaultSeedOptions is a small demo shop.
var DefaultSeedOptions = SeedOptions{Categories: 6, Products: 24, Users: 5}

// SeedResult reports what was written.
type SeedResult struct {
	Categories int
	Products   int
	Links      int
	Users      int
	Orders     int
	OrderItems int
}

var categoryNames = []string{
	"Electronics", "Books", "Home & Kitchen", "Toys", "Clothing",
	"Sports", "Garden", "Beauty", "Grocery", "Office Supplies",
}

var adjectives = []string{"Classic", "Compact", "Deluxe", "Eco", "Smart", "Vintage", "Ultra", "Handmade"}
var nouns = []string{"Lamp", "Backpack", "Mug", "Headphones", "Notebook", "Blender", "Sneakers", "Puzzle", "Kettle", "Jacket"}
var firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Dennis", "Margaret", "Alan"}

// Seeder generates demo data. With the same rng seed it writes the same rows.
type Seeder struct {
	w   Writer
	rng *rand.Rand
}

// NewSeeder creates a seeder. A nil rng gets a fixed seed.
func NewSeeder(w Writer, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Seeder{w: w, rng: rng}
}

// between returns an int in [lo, hi].
func (s *Seeder) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

// Seed writes categories, products (each linked to 1-3 random categories) and
// users (each with 1-3 orders of 1-3 items, quantity 1-3).
func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Seed")
	defer timer.Stop()

	var res SeedResult

	categories := make([]Category, 0, opts.Categories)
	for i := 0; i < opts.Categories; i++ {
		name := categoryNames[i%len(categoryNames)]
		if i >= len(categoryNames) {
			name = fmt.Sprintf("%s %d", name, i/len(categoryNames)+1)
		}
		c := Category{
			Name:        name,
			Description: fmt.Sprintf("Everything in %s.", name),
			Slug:        Slugify(name),
			Image:       fmt.Sprintf("/images/categories/%s.jpg", Slugify(name)),
			IsActive:    s.rng.IntN(10) > 0,
		}
		if err := s.w.CreateCategory(ctx, &c); err != nil {
			return res, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		categories = append(categories, c)
		res.Categories++
	}

	products := make([]Product, 0, opts.Products)
	for i := 0; i < opts.Products; i++ {
		name := fmt.Sprintf("%s %s", adjectives[s.rng.IntN(len(adjectives))], nouns[s.rng.IntN(len(nouns))])
		p := Product{
			Name:        name,
			Slug:        fmt.Sprintf("%s-%d", Slugify(name), i+1),
			Description: fmt.Sprintf("A %s for everyday use.", name),
			Price:       int64(s.between(5, 500))*100 + int64(s.rng.IntN(100)),
			Image:       fmt.Sprintf("/images/products/%d.jpg", i+1),
			IsActive:    true,
		}
		if err := s.w.CreateProduct(ctx, &p); err != nil {
			return res, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		products = append(products, p)
		res.Products++

		if len(categories) == 0 {
			continue
		}
		n := min(s.between(1, 3), len(categories))
		for _, idx := range s.rng.Perm(len(categories))[:n] {
			c := categories[idx]
			if err := s.w.LinkCategory(ctx, p.ID, c.ID); err != nil {
				return res, fmt.Errorf("link product %d to category %d: %w", p.ID, c.ID, err)
			}
			res.Links++
		}
	}

	for i := 0; i < opts.Users; i++ {
		first := firstNames[i%len(firstNames)]
		u := User{
			Name:  fmt.Sprintf("%s %d", first, i+1),
			Email: fmt.Sprintf("user%d@example.com", i+1),
		}
		if err := s.w.CreateUser(ctx, &u); err != nil {
			return res, fmt.Errorf("seed user %q: %w", u.Email, err)
		}
		res.Users++

		if len(products) == 0 {
			continue
		}
		for j, n := 0, s.between(1, 3); j < n; j++ {
			o := Order{
				UserID:        u.ID,
				Status:        Statuses[s.rng.IntN(len(Statuses))],
				PaymentMethod: PaymentCash,
				PaymentStatus: Statuses[s.rng.IntN(len(Statuses))],
			}
			for k, m := 0, s.between(1, 3); k < m; k++ {
				p := products[s.rng.IntN(len(products))]
				o.Items = append(o.Items, NewOrderItem(p, s.between(1, 3)))
			}
			o.Recalculate()

			if err := s.w.CreateOrder(ctx, &o); err != nil {
				return res, fmt.Errorf("seed order for user %d: %w", u.ID, err)
			}
			res.Orders++
			res.OrderItems += len(o.Items)
		}
	}

	logging.Store("Seeded %d categories, %d products, %d users, %d orders", res.Categories, res.Products, res.Users, res.Orders)
	return res, nil
}
