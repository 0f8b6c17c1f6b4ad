package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"origen-dotacion/app"
	"origen-dotacion/config"
	"origen-dotacion/logging"
	"origen-dotacion/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sessionFlag string

var rootCmd = &cobra.Command{
	Use:   "quote",
	Short: "Origen quote cart tools",
	Long: `Reads a persisted quote cart and prints the quote request message
with its WhatsApp and email links, the same way the storefront builds them.

Storage and quote channels come from the same environment as the server
(CART_STORAGE, CART_SQLITE_PATH, DATABASE_URL, WHATSAPP_NUMBER, QUOTE_EMAIL).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "", "cart session id (the origen_cart_session cookie)")
	_ = rootCmd.MarkPersistentFlagRequired("session")
}

// env bundles what every subcommand needs
type env struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	cart   *service.CartStore
	close  func()
}

// openCart loads the configuration and hydrates the cart of --session
func openCart(ctx context.Context) (*env, error) {
	session, err := uuid.Parse(strings.TrimSpace(sessionFlag))
	if err != nil {
		return nil, fmt.Errorf("invalid --session %q: %w", sessionFlag, err)
	}

	_ = config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	storage, conn, err := app.OpenCartStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	cart := service.NewCartStore(storage, service.StorageKey(session.String()), logger)
	cart.Hydrate(ctx)

	return &env{
		cfg:    cfg,
		logger: logger,
		cart:   cart,
		close: func() {
			if conn != nil {
				conn.Close()
			}
			_ = logger.Sync()
		},
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
