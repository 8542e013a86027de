// Command shop is the storefront client. It keeps a local cart, talks to the
// storefront API and drives the hosted checkout flow from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nordmart/storefront/internal/shop/api"
	"github.com/nordmart/storefront/internal/shop/cart"
	"github.com/nordmart/storefront/internal/shop/checkout"
	"github.com/nordmart/storefront/internal/shop/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shop:", err)
		os.Exit(1)
	}
}

type app struct {
	client *api.Client
	store  storage.Store
	cart   *cart.Cart
}

func newApp() (*app, error) {
	client, err := api.NewClient(viper.GetString("api_url"))
	if err != nil {
		return nil, err
	}
	dir := viper.GetString("state_dir")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		dir = filepath.Join(base, "storefront")
	}
	store, err := storage.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &app{
		client: client,
		store:  store,
		cart:   cart.New(store),
	}, nil
}

func (a *app) workflow() (*checkout.Workflow, error) {
	return checkout.New(checkout.Config{
		Cart:              a.cart,
		Backend:           a.client,
		Store:             a.store,
		NewIdempotencyKey: uuid.NewString,
	})
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shop",
		Short:         "Storefront client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("api-url", "http://localhost:8080", "storefront API base URL")
	root.PersistentFlags().String("state-dir", "", "directory for cart and customer state")

	viper.SetEnvPrefix("shop")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("state_dir", root.PersistentFlags().Lookup("state-dir"))

	root.AddCommand(
		newProductsCommand(),
		newCartCommand(),
		newCheckoutCommand(),
		newSessionStatusCommand(),
		newReturnCommand(),
		newOrdersCommand(),
	)
	return root
}

func newProductsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			products, err := a.client.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
			for _, p := range products {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, formatMoney(p.Price), p.Stock)
			}
			return tw.Flush()
		},
	}
}

func newCartCommand() *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}

	cartCmd.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := findProduct(cmd.Context(), a.client, productID)
			if err != nil {
				return err
			}
			if err := a.cart.Add(cart.Item{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", product.Name)
			return nil
		},
	})

	cartCmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cart.Remove(productID)
		},
	})

	cartCmd.AddCommand(&cobra.Command{
		Use:   "quantity <product-id> <count>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil || quantity < 1 {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return a.cart.SetQuantity(productID, quantity)
		},
	})

	cartCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			lines := a.cart.Lines()
			if len(lines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "cart is empty")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY")
			for _, line := range lines {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", line.ProductID, line.Name, formatMoney(line.UnitPrice), line.Quantity)
			}
			fmt.Fprintf(tw, "\tTOTAL\t%s\t\n", formatMoney(a.cart.Total()))
			return tw.Flush()
		},
	})

	cartCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.cart.Clear()
		},
	})

	return cartCmd
}

func newCheckoutCommand() *cobra.Command {
	var info checkout.CustomerInfo
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Start payment for the cart",
		Long: "Validates the customer details, creates the order and prints the\n" +
			"payment URL. Fields left unset fall back to the values from the\n" +
			"previous checkout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			w, err := a.workflow()
			if err != nil {
				return err
			}
			if err := w.GoToCheckout(); err != nil {
				return err
			}
			mergeSavedInfo(&info, w.SavedCustomerInfo())
			redirect, err := w.Submit(cmd.Context(), info)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "complete payment at:")
			fmt.Fprintln(cmd.OutOrStdout(), redirect)
			fmt.Fprintln(cmd.OutOrStdout(), "then run: shop return --session-id <id>")
			return nil
		},
	}

	cmd.Flags().StringVar(&info.Firstname, "firstname", "", "first name")
	cmd.Flags().StringVar(&info.Lastname, "lastname", "", "last name")
	cmd.Flags().StringVar(&info.Email, "email", "", "email address")
	cmd.Flags().StringVar(&info.Password, "password", "", "account password")
	cmd.Flags().StringVar(&info.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&info.StreetAddress, "street-address", "", "street address")
	cmd.Flags().StringVar(&info.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&info.City, "city", "", "city")
	cmd.Flags().StringVar(&info.Country, "country", "", "country")
	return cmd
}

func newSessionStatusCommand() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "session-status",
		Short: "Show the state of a checkout session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			status, err := a.client.GetSessionStatus(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\npayment: %s\nemail: %s\n",
				status.Status, status.PaymentStatus, status.CustomerEmail)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "checkout session identifier")
	_ = cmd.MarkFlagRequired("session-id")
	return cmd
}

func newReturnCommand() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "return",
		Short: "Finish a checkout after payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			w, err := a.workflow()
			if err != nil {
				return err
			}
			summary, err := w.CompleteReturn(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "order %d: %s\n", summary.OrderID, summary.PaymentStatus)
			for _, line := range summary.Lines {
				fmt.Fprintf(out, "  %d x %s (%s)\n", line.Quantity, line.Name, formatMoney(line.UnitPrice))
			}
			fmt.Fprintf(out, "total %s\n", formatMoney(summary.Total))
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "checkout session identifier")
	_ = cmd.MarkFlagRequired("session-id")
	return cmd
}

func newOrdersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "orders [order-id]",
		Short: "List orders with their line items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			var orders []api.Order
			if len(args) == 1 {
				orderID, err := parseID(args[0])
				if err != nil {
					return err
				}
				order, err := a.client.GetOrder(cmd.Context(), orderID)
				if err != nil {
					return err
				}
				orders = []api.Order{order}
			} else {
				var err error
				orders, err = a.client.ListOrdersWithItems(cmd.Context())
				if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, order := range orders {
				fmt.Fprintf(out, "order %d  %s  %s  %s\n",
					order.ID, order.OrderStatus, order.PaymentStatus, formatMoney(order.TotalPrice))
				for _, item := range order.OrderItems {
					fmt.Fprintf(out, "  %d x %s (%s)\n", item.Quantity, item.ProductName, formatMoney(item.UnitPrice))
				}
			}
			return nil
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func findProduct(ctx context.Context, client *api.Client, productID int64) (api.Product, error) {
	products, err := client.ListProducts(ctx)
	if err != nil {
		return api.Product{}, err
	}
	for _, p := range products {
		if p.ID == productID {
			return p, nil
		}
	}
	return api.Product{}, fmt.Errorf("product %d not found", productID)
}

// mergeSavedInfo fills blank fields from the info persisted by the last
// successful checkout.
func mergeSavedInfo(info *checkout.CustomerInfo, saved checkout.CustomerInfo) {
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&info.Firstname, saved.Firstname)
	fill(&info.Lastname, saved.Lastname)
	fill(&info.Email, saved.Email)
	fill(&info.Password, saved.Password)
	fill(&info.Phone, saved.Phone)
	fill(&info.StreetAddress, saved.StreetAddress)
	fill(&info.PostalCode, saved.PostalCode)
	fill(&info.City, saved.City)
	fill(&info.Country, saved.Country)
}

func formatMoney(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
