package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/middleware"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/storefront"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newCheckoutCmd(a *app) *cobra.Command {
	var (
		customer storefront.Customer
		payment  string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Invia l'ordine del carrello",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			customer.PaymentMethod = domain.PaymentMethod(payment)

			c, err := a.cart()
			if err != nil {
				return err
			}

			if c.Len() == 0 {
				return storefront.ErrEmptyCart
			}

			checkout := storefront.NewCheckout(c, a.client, a.logger)

			// Same rules the backends apply, checked before anything is sent
			sub := checkout.Submission(customer)
			if err := middleware.ValidateRequest(&sub); err != nil {
				if fieldErrs := middleware.FormatValidationErrors(err); len(fieldErrs) > 0 {
					printFieldErrors(cmd.ErrOrStderr(), fieldErrs)
					return errors.New("dati dell'ordine non validi")
				}
				return err
			}

			receipt, err := checkout.PlaceOrder(cmd.Context(), customer)
			if err != nil {
				return err
			}
			if err := a.saveCart(); err != nil {
				return err
			}

			printReceipt(cmd.OutOrStdout(), receipt)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&customer.Name, "name", "", "customer full name")
	flags.StringVar(&customer.Email, "email", "", "customer email")
	flags.StringVar(&customer.Phone, "phone", "", "customer phone")
	flags.StringVar(&customer.ShippingAddress.Street, "street", "", "street and number (via)")
	flags.StringVar(&customer.ShippingAddress.City, "city", "", "city (città)")
	flags.StringVar(&customer.ShippingAddress.PostalCode, "cap", "", "postal code (CAP)")
	flags.StringVar(&customer.ShippingAddress.Province, "province", "", "province (provincia)")
	flags.StringVar(&payment, "payment", string(domain.PaymentMethodBankTransfer), "payment method: bonifico or postepay")

	return cmd
}

func printFieldErrors(out io.Writer, fieldErrs []middleware.ValidationError) {
	for _, fe := range fieldErrs {
		fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
	}
}

func printReceipt(out io.Writer, receipt *storefront.Receipt) {
	fmt.Fprintf(out, "Ordine %s inviato.\n", receipt.Confirmation.OrderNumber)
	total := receipt.Confirmation.TotalAmount
	if amount, err := decimal.NewFromString(total); err == nil {
		total = notify.FormatEuro(amount)
	}
	fmt.Fprintf(out, "Totale da pagare: € %s\n", total)

	if info := receipt.Confirmation.PaymentInfo; info != nil {
		fmt.Fprintln(out, "\nCoordinate per il bonifico:")
		fmt.Fprintf(out, "  IBAN: %s\n  BIC: %s\n  Banca: %s\n  Intestatario: %s\n", info.IBAN, info.BIC, info.Bank, info.Beneficiary)
		fmt.Fprintf(out, "  Causale: Ordine %s\n", receipt.Confirmation.OrderNumber)
	}
	if receipt.Confirmation.Message != "" {
		fmt.Fprintf(out, "\n%s\n", receipt.Confirmation.Message)
	}
}

func newTrackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "track <order-number>",
		Short: "Segui lo stato di un ordine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := a.client.TrackOrder(cmd.Context(), strings.TrimSpace(args[0]))
			if errors.Is(err, storefront.ErrNotFound) {
				return fmt.Errorf("ordine %s non trovato", args[0])
			}
			if err != nil {
				return err
			}
			printOrder(cmd.OutOrStdout(), order)
			return nil
		},
	}
}

func printOrder(out io.Writer, order *domain.Order) {
	fmt.Fprintf(out, "Ordine %s del %s\n", order.OrderNumber, order.CreatedAt.Format("02/01/2006"))
	fmt.Fprintf(out, "Stato: %s, pagamento: %s (%s)\n", order.OrderStatus, order.PaymentStatus, order.PaymentMethod)
	fmt.Fprintf(out, "Spedizione: %s, %s %s (%s)\n",
		order.ShippingAddress.Street,
		order.ShippingAddress.PostalCode,
		order.ShippingAddress.City,
		order.ShippingAddress.Province,
	)
	for _, item := range order.Items {
		fmt.Fprintf(out, "  %d x %s  € %s\n", item.Quantity, item.ProductName, notify.FormatEuro(item.Subtotal))
	}
	fmt.Fprintf(out, "Totale: € %s\n", notify.FormatEuro(order.TotalAmount))
}
