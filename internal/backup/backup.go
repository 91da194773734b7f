package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/notepad/internal/database"
)

const keyPrefix = "backups/"

var ErrUnsupported = errors.New("backup is only supported for sqlite databases")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

type Config struct {
	S3         S3Config
	Passphrase string
}

// Object is one stored backup.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Manager snapshots the database, encrypts it and stores it in S3-compatible
// storage.
type Manager struct {
	cfg    Config
	db     *database.DB
	client s3Client
	logger *slog.Logger
	now    func() time.Time
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewManager builds a Manager backed by a real S3 client. db may be nil when
// only List, Prune or Restore will be called.
func NewManager(ctx context.Context, cfg Config, db *database.DB, logger *slog.Logger) (*Manager, error) {
	client, err := newS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	return newManager(cfg, db, client, logger), nil
}

func newManager(cfg Config, db *database.DB, client s3Client, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		db:     db,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// newS3Client uses static keys when both are set and the default AWS
// credential chain otherwise.
func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Run snapshots the database with VACUUM INTO, encrypts the snapshot and
// uploads it. It returns the object key.
func (m *Manager) Run(ctx context.Context) (string, error) {
	if m.db == nil {
		return "", errors.New("backup: no database configured")
	}
	if m.db.Dialect != database.DialectSQLite {
		return "", ErrUnsupported
	}

	tmpDir, err := os.MkdirTemp("", "notepad-backup-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "notepad.db")
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return "", fmt.Errorf("snapshot database: %w", err)
	}

	plaintext, err := os.ReadFile(snapshot)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	sealed, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	key := fmt.Sprintf("%snotepad-%s.db.enc", keyPrefix, m.now().UTC().Format("2006-01-02T150405Z"))
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return key, nil
}

// Restore downloads and decrypts the backup at key, checks its integrity and
// writes it to outPath. outPath must not exist yet.
func (m *Manager) Restore(ctx context.Context, key, outPath string) error {
	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("restore target %s already exists", outPath)
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	plaintext, err := Decrypt(sealed, m.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}

	tmpPath := outPath + ".partial"
	if err := os.WriteFile(tmpPath, plaintext, 0600); err != nil {
		return fmt.Errorf("write restored db: %w", err)
	}
	defer os.Remove(tmpPath)

	if err := checkIntegrity(ctx, tmpPath); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("move restored db: %w", err)
	}

	m.logger.Info("backup restored", "key", key, "path", outPath)
	return nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var integrity string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}
	return nil
}

// List returns stored backups, newest first.
func (m *Manager) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	var token *string
	for {
		out, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(m.cfg.S3.Bucket),
			Prefix:            aws.String(keyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".db.enc") {
				continue
			}
			objects = append(objects, Object{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

// Prune deletes backups older than retention and returns how many were
// removed. Failed deletes are logged and skipped.
func (m *Manager) Prune(ctx context.Context, retention time.Duration) (int, error) {
	objects, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-retention)
	removed := 0
	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(obj.Key),
		}); err != nil {
			m.logger.Warn("delete old backup", "key", obj.Key, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
