package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"cicli-volante/internal/cart"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/pricing"

	"github.com/spf13/cobra"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Gestisci il carrello della sessione",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cart()
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), c)
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <slug|id> [quantity]",
			Short: "Aggiungi un prodotto al carrello",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				quantity := 1
				if len(args) == 2 {
					q, err := strconv.Atoi(args[1])
					if err != nil {
						return fmt.Errorf("invalid quantity %q", args[1])
					}
					quantity = q
				}

				product, err := a.client.GetProduct(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				c, err := a.cart()
				if err != nil {
					return err
				}
				c.AddItem(cart.SnapshotOf(product), quantity)
				if err := a.saveCart(); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), c)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Imposta la quantità di un prodotto (0 lo rimuove)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid product id %q", args[0])
				}
				quantity, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}

				return a.mutateCart(cmd.OutOrStdout(), func(c *cart.Cart) { c.UpdateQuantity(id, quantity) })
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Rimuovi un prodotto dal carrello",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid product id %q", args[0])
				}
				return a.mutateCart(cmd.OutOrStdout(), func(c *cart.Cart) { c.RemoveItem(id) })
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Svuota il carrello",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.mutateCart(cmd.OutOrStdout(), func(c *cart.Cart) { c.Clear() })
			},
		},
		&cobra.Command{
			Use:   "end",
			Short: "Chiudi la sessione e scarta il carrello",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.sessions.End(a.sessionID)
			},
		},
	)

	return cmd
}

func (a *app) mutateCart(out io.Writer, mutate func(*cart.Cart)) error {
	c, err := a.cart()
	if err != nil {
		return err
	}
	mutate(c)
	if err := a.saveCart(); err != nil {
		return err
	}
	printCart(out, c)
	return nil
}

func printCart(out io.Writer, c *cart.Cart) {
	lines := c.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(out, "Il carrello è vuoto.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODOTTO\tQTÀ\tPREZZO\tTOTALE")
	for _, line := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t€ %s\t€ %s\n",
			line.Product.ID,
			line.Product.Name,
			line.Quantity,
			notify.FormatEuro(line.Product.Price),
			notify.FormatEuro(line.Subtotal()),
		)
	}
	tw.Flush()

	printQuote(out, c.Quote())
}

func printQuote(out io.Writer, q pricing.Quote) {
	fmt.Fprintf(out, "\nSubtotale: € %s\n", notify.FormatEuro(q.Subtotal))
	if q.Shipping.IsZero() {
		fmt.Fprintln(out, "Spedizione: gratuita")
	} else {
		missing := pricing.FreeShippingThreshold.Sub(q.Subtotal)
		fmt.Fprintf(out, "Spedizione: € %s (gratuita sopra € %s, mancano € %s)\n",
			notify.FormatEuro(q.Shipping),
			notify.FormatEuro(pricing.FreeShippingThreshold),
			notify.FormatEuro(missing),
		)
	}
	fmt.Fprintf(out, "Totale: € %s\n", notify.FormatEuro(q.Total))
}
