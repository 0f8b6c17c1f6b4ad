package main

import (
	"fmt"

	"origen-dotacion/models"
	"origen-dotacion/service"

	"github.com/spf13/cobra"
)

var (
	contactFlags models.QuoteContact
	copyFlag     bool
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Print the quote message and its WhatsApp and email links",
	RunE:  printMessage,
}

func init() {
	messageCmd.Flags().StringVar(&contactFlags.Company, "company", "", "company name")
	messageCmd.Flags().StringVar(&contactFlags.Contact, "contact", "", "contact person")
	messageCmd.Flags().StringVar(&contactFlags.Email, "email", "", "contact email")
	messageCmd.Flags().StringVar(&contactFlags.Phone, "phone", "", "contact phone")
	messageCmd.Flags().StringVar(&contactFlags.Notes, "notes", "", "extra notes")
	messageCmd.Flags().BoolVar(&copyFlag, "copy", false, "copy the message to the clipboard")
	rootCmd.AddCommand(messageCmd)
}

func printMessage(cmd *cobra.Command, args []string) error {
	e, err := openCart(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	quote := service.BuildQuote(contactFlags, e.cart.QuoteItems(), e.cfg.WhatsAppNumber, e.cfg.QuoteEmail)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, quote.Message)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "📦 %d productos, %d unidades\n", quote.ItemCount, quote.TotalItems)
	fmt.Fprintf(out, "WhatsApp: %s\n", quote.WhatsAppHref)
	fmt.Fprintf(out, "Email:    %s\n", quote.MailtoHref)

	if copyFlag {
		notice, _ := service.CopyToClipboard(quote.Message, e.logger)
		fmt.Fprintln(out, notice)
	}
	return nil
}
