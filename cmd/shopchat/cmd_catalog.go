package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"shopchat/internal/catalog"
	"shopchat/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// catalogCmd groups the storefront commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Seed and browse the storefront catalog",
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo categories, products, users and orders",
	RunE:  runCatalogSeed,
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE:  runCatalogCategories,
}

var catalogProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products, optionally within one category",
	RunE:  runCatalogProducts,
}

var catalogUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE:  runCatalogUsers,
}

var catalogOrdersCmd = &cobra.Command{
	Use:   "orders <user-id>",
	Short: "List a user's orders with their items",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogOrders,
}

var (
	seedOpts      = catalog.DefaultSeedOptions
	seedValue     uint64
	allCategories bool
	categorySlug  string
)

func init() {
	catalogSeedCmd.Flags().IntVar(&seedOpts.Categories, "categories", seedOpts.Categories, "Number of categories")
	catalogSeedCmd.Flags().IntVar(&seedOpts.Products, "products", seedOpts.Products, "Number of products")
	catalogSeedCmd.Flags().IntVar(&seedOpts.Users, "users", seedOpts.Users, "Number of users")
	catalogSeedCmd.Flags().Uint64Var(&seedValue, "seed", 1, "Random seed; the same seed writes the same data")

	catalogCategoriesCmd.Flags().BoolVar(&allCategories, "all", false, "Include inactive categories")
	catalogProductsCmd.Flags().StringVar(&categorySlug, "category", "", "Only products in the category with this slug")

	catalogCmd.AddCommand(catalogSeedCmd)
	catalogCmd.AddCommand(catalogCategoriesCmd)
	catalogCmd.AddCommand(catalogProductsCmd)
	catalogCmd.AddCommand(catalogUsersCmd)
	catalogCmd.AddCommand(catalogOrdersCmd)
}

func runCatalogSeed(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	timer := logging.StartTimer(logging.CategoryStore, "catalog seed")
	seeder := catalog.NewSeeder(st, rand.New(rand.NewPCG(seedValue, seedValue)))
	res, err := seeder.Seed(cmd.Context(), seedOpts)
	timer.Stop()
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if logger != nil {
		logger.Info("catalog seeded",
			zap.Int("categories", res.Categories),
			zap.Int("products", res.Products),
			zap.Int("users", res.Users),
			zap.Int("orders", res.Orders),
		)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded %s\n", st.Path())
	fmt.Fprintf(out, "  categories:   %d\n", res.Categories)
	fmt.Fprintf(out, "  products:     %d (%d category links)\n", res.Products, res.Links)
	fmt.Fprintf(out, "  users:        %d\n", res.Users)
	fmt.Fprintf(out, "  orders:       %d (%d items)\n", res.Orders, res.OrderItems)
	return nil
}

func runCatalogCategories(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cats, err := st.ListCategories(cmd.Context(), !allCategories)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cats) == 0 {
		fmt.Fprintln(out, "No categories. Run: shopchat catalog seed")
		return nil
	}
	for _, c := range cats {
		status := ""
		if !c.IsActive {
			status = " (inactive)"
		}
		fmt.Fprintf(out, "%-20s %-24s%s\n", c.Slug, c.Name, status)
	}
	return nil
}

func runCatalogProducts(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var products []catalog.Product
	if categorySlug != "" {
		products, err = st.ProductsInCategory(cmd.Context(), categorySlug)
	} else {
		products, err = st.ListProducts(cmd.Context())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(products) == 0 {
		fmt.Fprintln(out, "No products.")
		return nil
	}
	for _, p := range products {
		fmt.Fprintf(out, "%4d  %-32s %10s\n", p.ID, p.Name, catalog.FormatPrice(p.Price))
	}
	fmt.Fprintf(out, "Total: %d products\n", len(products))
	return nil
}

func runCatalogUsers(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.ListUsers(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, u := range users {
		fmt.Fprintf(out, "%4d  %-20s %s\n", u.ID, u.Name, u.Email)
	}
	return nil
}

func runCatalogOrders(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	orders, err := st.OrdersForUser(cmd.Context(), userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(orders) == 0 {
		fmt.Fprintf(out, "User %d has no orders.\n", userID)
		return nil
	}
	for _, o := range orders {
		fmt.Fprintf(out, "Order #%d  %s  payment=%s/%s  total=%s\n",
			o.ID, o.Status, o.PaymentMethod, o.PaymentStatus, catalog.FormatPrice(o.TotalAmount))
		for _, it := range o.Items {
			fmt.Fprintf(out, "  product %-4d x%d @ %s = %s\n",
				it.ProductID, it.Quantity, catalog.FormatPrice(it.Price), catalog.FormatPrice(it.TotalAmount))
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "Total: %d orders\n", len(orders))
	return nil
}
