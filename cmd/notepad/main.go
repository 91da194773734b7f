package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/notepad/internal/auth"
	"github.com/dukerupert/notepad/internal/backup"
	"github.com/dukerupert/notepad/internal/config"
	"github.com/dukerupert/notepad/internal/database"
	"github.com/dukerupert/notepad/internal/logging"
	"github.com/dukerupert/notepad/internal/server"
)

const usage = `usage: notepad [command]

commands:
  serve                        run the HTTP API (default)
  backup [-retain DURATION]    upload an encrypted snapshot, optionally pruning old ones
  backups                      list stored backups
  restore -key KEY -out PATH   download and decrypt a backup into a new file
`

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "backup":
		err = runBackup(ctx, cfg, args, logger)
	case "backups":
		err = listBackups(ctx, cfg, logger)
	case "restore":
		err = runRestore(ctx, cfg, args, logger)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}

	srv := server.New(db, server.Options{
		Hasher:     hasher,
		Tokens:     tokens,
		CORSOrigin: cfg.AllowedOrigin(),
	}, logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("notepad listening", "addr", httpServer.Addr, "dialect", db.Dialect)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// backupManager builds a Manager. Only the backup command needs the
// database, so list and restore pass openDB=false and get a nil *DB.
func backupManager(ctx context.Context, cfg *config.Config, logger *slog.Logger, openDB bool) (*backup.Manager, func(), error) {
	if err := cfg.Backup.Validate(); err != nil {
		return nil, nil, err
	}
	var db *database.DB
	closeDB := func() {}
	if openDB {
		var err error
		db, err = database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closeDB = func() { db.Close() }
	}
	b := cfg.Backup
	mgr, err := backup.NewManager(ctx, backup.Config{
		S3: backup.S3Config{
			Endpoint:  b.Endpoint,
			Bucket:    b.Bucket,
			Region:    b.Region,
			AccessKey: b.AccessKey,
			SecretKey: b.SecretKey,
		},
		Passphrase: b.Passphrase,
	}, db, logger.With("component", "backup"))
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return mgr, closeDB, nil
}

func runBackup(ctx context.Context, cfg *config.Config, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	retain := fs.Duration("retain", 0, "delete backups older than this after uploading (0 keeps all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mgr, closeDB, err := backupManager(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer closeDB()

	key, err := mgr.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(key)

	if *retain > 0 {
		removed, err := mgr.Prune(ctx, *retain)
		if err != nil {
			return err
		}
		logger.Info("pruned old backups", "removed", removed, "retain", *retain)
	}
	return nil
}

func listBackups(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	mgr, closeDB, err := backupManager(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer closeDB()

	objects, err := mgr.List(ctx)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		fmt.Printf("%s\t%d\t%s\n", obj.Key, obj.Size, obj.LastModified.UTC().Format(time.RFC3339))
	}
	return nil
}

func runRestore(ctx context.Context, cfg *config.Config, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	key := fs.String("key", "", "object key of the backup to restore")
	out := fs.String("out", "", "path of the database file to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" || *out == "" {
		return errors.New("restore requires -key and -out")
	}

	mgr, closeDB, err := backupManager(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer closeDB()

	return mgr.Restore(ctx, *key, *out)
}
