package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexraskin/hovergallery/internal/database"
	"github.com/alexraskin/hovergallery/internal/gallery"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending Postgres schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver != database.DriverPostgres {
			slog.Info("Nothing to migrate", slog.String("store", cfg.StoreDriver))
			return nil
		}
		return database.Migrate(cfg.DatabaseURL)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the gallery entries and font settings as YAML",
	Long:  "Write the gallery entries and font settings as YAML to file, or to stdout when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *gallery.Service) error {
			g, err := svc.Gallery(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}
			return writeGallery(out, g)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the gallery with the contents of a YAML export",
	Long: `Replace the gallery with the contents of a YAML export. The file goes
through the same sanitizing as an admin save, and replaces the stored list
and settings entirely. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()
			in = f
		}

		raw, err := readGallery(in)
		if err != nil {
			return err
		}

		return withService(cmd.Context(), func(ctx context.Context, svc *gallery.Service) error {
			g, err := svc.Replace(ctx, raw["items"], raw["font_settings"])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d menu items\n", len(g.Items))
			return nil
		})
	},
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password <password>",
	Short: "Set the admin password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args[0]) < 6 {
			return errors.New("password must be at least 6 characters")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := database.SetPassword(ctx, store, args[0]); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Admin password updated")
		return nil
	},
}

// withService opens the configured store for the duration of fn. The
// cache is disabled so every read goes to the store.
func withService(ctx context.Context, fn func(context.Context, *gallery.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, gallery.NewService(store, nil))
}

func writeGallery(w io.Writer, g any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("failed to encode gallery: %w", err)
	}
	return enc.Close()
}

// readGallery decodes an export loosely so that malformed sections are
// sanitized on import instead of rejecting the whole file.
func readGallery(r io.Reader) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode gallery: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
