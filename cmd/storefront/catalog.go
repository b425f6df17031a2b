package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/storefront"

	"github.com/spf13/cobra"
)

func newProductsCmd(a *app) *cobra.Command {
	var query storefront.ProductQuery

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Elenca i prodotti del catalogo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.client.ListProducts(cmd.Context(), query)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}

	cmd.Flags().StringVar(&query.Category, "category", "", "category name or alias (mtb, city, trekking, accessori)")
	cmd.Flags().BoolVar(&query.Featured, "featured", false, "only featured products")
	cmd.Flags().BoolVar(&query.Bestseller, "bestseller", false, "only bestsellers")
	cmd.Flags().StringVar(&query.Search, "search", "", "match product names")
	return cmd
}

func newProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "product <slug|id>",
		Short: "Mostra la scheda di un prodotto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func printProducts(out io.Writer, products []*domain.Product) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tCATEGORIA\tPREZZO\tSLUG")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t€ %s\t%s\n", p.ID, p.Name, p.Category, notify.FormatEuro(p.Price), p.Slug)
	}
	tw.Flush()
}

func printProduct(out io.Writer, p *domain.Product) {
	fmt.Fprintf(out, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(out, "Categoria: %s\n", p.Category)
	if p.OriginalPrice != nil {
		fmt.Fprintf(out, "Prezzo: € %s (invece di € %s)\n", notify.FormatEuro(p.Price), notify.FormatEuro(*p.OriginalPrice))
	} else {
		fmt.Fprintf(out, "Prezzo: € %s\n", notify.FormatEuro(p.Price))
	}
	if p.Motor != "" && p.BatteryWh > 0 {
		fmt.Fprintf(out, "Motore: %s, batteria %d Wh, autonomia %d km\n", p.Motor, p.BatteryWh, p.AutonomyKm)
	}
	fmt.Fprintf(out, "Disponibilità: %d pezzi (%s)\n", p.StockQuantity, p.Status)
	if p.ShortDescription != "" {
		fmt.Fprintf(out, "\n%s\n", p.ShortDescription)
	}
}
