// Package store persists search runs and their accepted tap configurations.
package store

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lfsrcrack/internal/lfsr"
	"lfsrcrack/internal/models"
	"lfsrcrack/internal/search"
)

type Store struct {
	db *gorm.DB
}

// Open connects to dsn. postgres:// URLs and "host=" keyword strings use
// postgres; anything else is treated as a sqlite path or URI.
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	if isPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.Run{}, &models.Hit{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Fingerprint identifies a ciphertext across runs: hex BLAKE2b-256.
func Fingerprint(ciphertext []byte) string {
	sum := blake2b.Sum256(ciphertext)
	return hex.EncodeToString(sum[:])
}

type RunParams struct {
	Width      lfsr.Width
	Initial    uint64
	Ciphertext []byte
	Chunks     []search.Chunk
}

func (s *Store) CreateRun(ctx context.Context, p RunParams) (*models.Run, error) {
	chunks, err := models.NewJSONB(p.Chunks)
	if err != nil {
		return nil, err
	}
	run := &models.Run{
		Width:         int(p.Width),
		InitialHex:    fmt.Sprintf("0x%0*x", p.Width.HexDigits(), p.Initial),
		CiphertextHex: hex.EncodeToString(p.Ciphertext),
		Fingerprint:   Fingerprint(p.Ciphertext),
		Workers:       len(p.Chunks),
		Chunks:        chunks,
		Checked:       "0",
		Status:        models.RunRunning,
		StartedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func (s *Store) RecordHit(ctx context.Context, runID string, h search.Hit) error {
	row := models.Hit{
		RunID:        runID,
		TapsHex:      h.TapsHex(),
		PlaintextHex: models.EncodePlaintext(h.Plaintext),
		Worker:       h.Worker,
		CreatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record hit %s: %w", h.TapsHex(), err)
	}
	return nil
}

// FinishRun stores the summary. A non-nil runErr marks the run failed.
func (s *Store) FinishRun(ctx context.Context, runID string, sum search.Summary, runErr error) error {
	now := time.Now()
	updates := map[string]any{
		"checked":     strconv.FormatUint(sum.Checked, 10),
		"hits":        sum.Hits,
		"status":      models.RunDone,
		"finished_at": &now,
	}
	if runErr != nil {
		msg := runErr.Error()
		updates["status"] = models.RunFailed
		updates["error"] = &msg
	}
	res := s.db.WithContext(ctx).Model(&models.Run{}).Where("id = ?", runID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("finish run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("finish run: %s not found", runID)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	var run models.Run
	if err := s.db.WithContext(ctx).Preload("Found").First(&run, "id = ?", runID).Error; err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &run, nil
}

func (s *Store) ListHits(ctx context.Context, runID string) ([]models.Hit, error) {
	var hits []models.Hit
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&hits).Error
	return hits, err
}

// RunsFor lists earlier runs over the same ciphertext, newest first.
func (s *Store) RunsFor(ctx context.Context, ciphertext []byte) ([]models.Run, error) {
	var runs []models.Run
	err := s.db.WithContext(ctx).Where("fingerprint = ?", Fingerprint(ciphertext)).
		Order("started_at desc").Find(&runs).Error
	return runs, err
}

// Sink records every hit under runID. A failed write is logged together with
// the hit so that the result is never lost.
func (s *Store) Sink(runID string, lg *zap.SugaredLogger) search.Sink {
	return search.SinkFunc(func(h search.Hit) {
		if err := s.RecordHit(context.Background(), runID, h); err != nil {
			lg.Errorw("persist hit failed", "run", runID, "taps", h.TapsHex(), "plaintext", h.Plaintext, "error", err)
		}
	})
}
