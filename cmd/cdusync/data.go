package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/cdusync/internal/config"
	"github.com/hyperengineering/cdusync/internal/engine"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/pkg/cduclient"
)

var (
	serverURL    string
	serverAPIKey string
	exportOut    string
	exportUpload bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole dataset as a backup document",
	Long: "Export the entity tree as a backup document. With --server the document is\n" +
		"downloaded from a running server; otherwise it is loaded from the configured store.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the whole dataset with a backup document",
	Long: "Import deletes every row of the dataset and inserts the document's contents\n" +
		"with fresh identifiers. A failed import is not rolled back.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask a running server to reload its tree from the remote store",
	Args:  cobra.NoArgs,
	RunE:  runReload,
}

func init() {
	for _, c := range []*cobra.Command{exportCmd, importCmd, reloadCmd} {
		c.Flags().StringVar(&serverURL, "server", "",
			"Base URL of a running cdusync server")
		c.Flags().StringVar(&serverAPIKey, "api-key", os.Getenv("CDU_API_KEY"),
			"API key for --server (default $CDU_API_KEY)")
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "",
		"Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false,
		"Also archive the document to the configured S3 bucket")
	reloadCmd.MarkFlagRequired("server")
}

func newClient() (*cduclient.Client, error) {
	return cduclient.New(cduclient.Config{BaseURL: serverURL, APIKey: serverAPIKey})
}

// openOffline loads the CLI config and builds an engine over the configured
// store without serving HTTP.
func openOffline() (*config.Config, *runtime, error) {
	cfg, err := config.LoadOffline()
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(newLogger(os.Stderr, cfg.Log))

	rt, err := openRuntime(cfg, engine.LogNotifier{})
	if err != nil {
		return nil, nil, err
	}
	return cfg, rt, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		doc []byte
		cfg *config.Config
		err error
	)
	if serverURL != "" {
		c, err := newClient()
		if err != nil {
			return err
		}
		if doc, err = c.Export(ctx); err != nil {
			return fmt.Errorf("export from server: %w", err)
		}
		if exportUpload {
			if cfg, err = config.LoadOffline(); err != nil {
				return err
			}
		}
	} else {
		var rt *runtime
		cfg, rt, err = openOffline()
		if err != nil {
			return err
		}
		defer rt.Close()

		res := rt.engine.Start(ctx)
		if res.RemoteErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote load failed, exporting %s data: %v\n", res.Source, res.RemoteErr)
		}
		if doc, err = rt.engine.ExportAllData(); err != nil {
			return fmt.Errorf("encode backup: %w", err)
		}
	}

	if exportOut == "" {
		if _, err := cmd.OutOrStdout().Write(doc); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(exportOut, doc, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d bytes to %s\n", len(doc), exportOut)
	}

	if !exportUpload {
		return nil
	}
	return uploadBackup(ctx, cmd, cfg.Backup, doc)
}

func uploadBackup(ctx context.Context, cmd *cobra.Command, cfg config.BackupConfig, doc []byte) error {
	up, err := snapshot.NewUploader(cfg)
	if err != nil {
		return err
	}
	key, err := up.Upload(ctx, doc)
	if errors.Is(err, snapshot.ErrNotConfigured) {
		return fmt.Errorf("--upload needs backup.bucket or CDU_BACKUP_BUCKET: %w", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Archived backup as %s\n", key)

	link, expires, err := up.PresignedURL(ctx, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Download link (expires %s): %s\n", expires.Format(time.RFC3339), link)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	if serverURL != "" {
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.Import(ctx, doc)
		if err != nil {
			return fmt.Errorf("import on server: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bytes in %dms\n", res.Bytes, res.TookMs)
		return nil
	}

	_, rt, err := openOffline()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.engine.ImportAllData(ctx, doc); err != nil {
		rt.engine.Wait()
		return fmt.Errorf("import: %w", err)
	}
	if rt.engine.Mode() == config.ModeLocal {
		if err := rt.engine.SaveToLocalStorage(ctx); err != nil {
			return err
		}
	}
	rt.engine.Wait()
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bytes\n", len(doc))
	return nil
}

func runReload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	res, err := c.Reload(ctx)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reloaded from %s", res.Source)
	if res.Degraded {
		fmt.Fprint(cmd.OutOrStdout(), " (degraded)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
