package main

import (
	"os"
	"path/filepath"

	"cicli-volante/internal/cart"
	"cicli-volante/internal/logger"
	"cicli-volante/internal/storefront"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every command needs, built once flags are parsed
type app struct {
	baseURL   string
	backend   string
	sessionID string
	dataDir   string
	verbose   bool

	logger   *zap.Logger
	client   *storefront.Client
	sessions *cart.Sessions
}

func defaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cicli-volante")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Sfoglia il catalogo Cicli Volante, gestisci il carrello e invia ordini",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.baseURL, "url", envOr("STOREFRONT_URL", "http://localhost:8080"), "shop base URL")
	flags.StringVar(&a.backend, "backend", envOr("STOREFRONT_BACKEND", storefront.BackendAPI), "order backend: api or static")
	flags.StringVar(&a.sessionID, "session", envOr("STOREFRONT_SESSION", "default"), "browsing session owning the cart")
	flags.StringVar(&a.dataDir, "data-dir", defaultDataDir(), "directory holding session carts")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests")

	root.AddCommand(
		newProductsCmd(a),
		newProductCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newTrackCmd(a),
	)

	return root
}

func (a *app) init() error {
	a.logger = zap.NewNop()
	if a.verbose {
		a.logger = logger.NewWithDefaults()
	}

	client, err := storefront.NewClient(a.baseURL, a.backend, nil, a.logger)
	if err != nil {
		return err
	}
	a.client = client

	sessions, err := cart.NewPersistentSessions(a.dataDir)
	if err != nil {
		return err
	}
	a.sessions = sessions
	return nil
}

// cart opens the cart of the current session
func (a *app) cart() (*cart.Cart, error) {
	return a.sessions.Open(a.sessionID)
}

func (a *app) saveCart() error {
	return a.sessions.Save(a.sessionID)
}
