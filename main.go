package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexraskin/hovergallery/internal/assets"
	"github.com/alexraskin/hovergallery/internal/cache"
	"github.com/alexraskin/hovergallery/internal/config"
	"github.com/alexraskin/hovergallery/internal/database"
	"github.com/alexraskin/hovergallery/internal/gallery"
	"github.com/alexraskin/hovergallery/internal/render"
	"github.com/alexraskin/hovergallery/server"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
)

//go:embed templates/*.html
var templatesFiles embed.FS

//go:embed static
var staticFiles embed.FS

var envFile string

var rootCmd = &cobra.Command{
	Use:   "hovergallery",
	Short: "Cursor-follow image gallery with an admin editor",
	Long: `hovergallery serves an ordered list of image, title and link entries
as a hover gallery whose preview image follows the cursor, plus an admin
page for editing, reordering and styling the list.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	rootCmd.Version = version

	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd, migrateCmd, exportCmd, importCmd, setPasswordCmd)
}

// loadConfig reads configuration and installs the process logger. Every
// command starts here.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(cfg.Logger())
	return cfg, nil
}

// openStore opens the configured store, migrating Postgres first.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	if cfg.StoreDriver == database.DriverPostgres {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	store, err := database.Open(ctx, database.Options{
		Driver:      cfg.StoreDriver,
		DatabaseURL: cfg.DatabaseURL,
		BoltPath:    cfg.BoltPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tmpl, err := template.New("").ParseFS(templatesFiles, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := seedPassword(ctx, store, cfg.AdminPassword); err != nil {
		return err
	}

	opts := []server.Option{
		server.WithRateLimit(cfg.RateLimit),
		server.WithRenderOptions(render.Options{FollowDuration: cfg.FollowDuration, FollowEase: cfg.FollowEase}),
	}
	if cfg.S3Bucket != "" {
		picker, err := assets.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, cfg.S3PublicURL)
		if err != nil {
			return fmt.Errorf("failed to initialize asset uploads: %w", err)
		}
		opts = append(opts, server.WithPicker(picker))
		slog.Info("Asset uploads enabled", slog.String("bucket", cfg.S3Bucket))
	}

	svc := gallery.NewService(store, cache.NewCache(cfg.CacheTTL))
	srv := server.NewServer(version, cfg.Port, http.FS(staticFiles), tmpl.ExecuteTemplate, store, svc, opts...)

	go srv.Start()
	defer srv.Close()

	slog.Info("Started server",
		slog.String("listen_addr", ":"+cfg.Port),
		slog.String("store", cfg.StoreDriver),
		slog.String("version", version),
	)
	si := make(chan os.Signal, 1)
	signal.Notify(si, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-si
	slog.Info("Shutting down server")
	return nil
}

// seedPassword stores ADMIN_PASSWORD when no admin password exists yet. It
// never overwrites one changed from the admin page.
func seedPassword(ctx context.Context, store database.Store, password string) error {
	if password == "" {
		return nil
	}
	exists, err := database.HasPassword(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to check admin password: %w", err)
	}
	if exists {
		return nil
	}
	if err := database.SetPassword(ctx, store, password); err != nil {
		return fmt.Errorf("failed to seed admin password: %w", err)
	}
	slog.Info("Seeded admin password from environment")
	return nil
}
