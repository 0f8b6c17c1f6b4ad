package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "List the lines of a cart",
	RunE:  listCart,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty a cart",
	RunE:  clearCart,
}

func init() {
	rootCmd.AddCommand(cartCmd, clearCmd)
}

func listCart(cmd *cobra.Command, args []string) error {
	e, err := openCart(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	items := e.cart.Items()
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "🛒 El carrito está vacío")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tREF\tNAME\tQTY\tSIZE\tCOLOR\tNOTE")
	for _, line := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			line.LineID, line.Ref, line.Name, line.Qty, line.Size, line.Color, line.Note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: %d\n", e.cart.TotalItems())
	return nil
}

func clearCart(cmd *cobra.Command, args []string) error {
	e, err := openCart(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.cart.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Carrito vacío")
	return nil
}
