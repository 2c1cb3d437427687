// Package catalog defines the storefront entities (users, categories,
// products, orders) and a deterministic demo-data seeder.
package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Status is the lifecycle state shared by orders and their payments.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every Status in seeding order.
var Statuses = []Status{StatusPending, StatusCompleted, StatusCancelled}

// PaymentCash is the only payment method the shop supports.
const PaymentCash = "cash"

// User is a shop customer.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Category groups products. It is addressed by Slug.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Image       string    `json:"image"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a sellable item. Price is in cents.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Image       string    `json:"image"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order is a user's purchase. TotalAmount is the sum of item totals.
type Order struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user_id"`
	Status        Status      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	PaymentStatus Status      `json:"payment_status"`
	TotalAmount   int64       `json:"total_amount"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem is one line of an order. Price is the unit price at order time.
type OrderItem struct {
	ID          int64 `json:"id"`
	OrderID     int64 `json:"order_id"`
	ProductID   int64 `json:"product_id"`
	Quantity    int   `json:"quantity"`
	Price       int64 `json:"price"`
	TotalAmount int64 `json:"total_amount"`
}

// NewOrderItem prices a line from the product's current price.
func NewOrderItem(p Product, quantity int) OrderItem {
	return OrderItem{
		ProductID:   p.ID,
		Quantity:    quantity,
		Price:       p.Price,
		TotalAmount: p.Price * int64(quantity),
	}
}

// Recalculate sets TotalAmount from the items.
func (o *Order) Recalculate() {
	var total int64
	for _, it := range o.Items {
		total += it.TotalAmount
	}
	o.TotalAmount = total
}

// Stats counts rows per entity.
type Stats struct {
	Users      int `json:"users"`
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Orders     int `json:"orders"`
	OrderItems int `json:"order_items"`
}

// FormatPrice renders cents as a dollar amount.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
