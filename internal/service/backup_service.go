package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"pottytracker/internal/logging"
	"pottytracker/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the backup file layout: every storage key with its JSON document
type BackupData struct {
	Version      string                     `json:"version"`
	ExportedAt   time.Time                  `json:"exported_at"`
	DatabaseType string                     `json:"database_type"`
	Entries      map[string]json.RawMessage `json:"entries"`
}

// BackupService handles local store backup and restore
type BackupService struct {
	store        *repository.StorageRepository
	databaseType string
	logger       *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(store *repository.StorageRepository, databaseType string, logger *zap.Logger) *BackupService {
	return &BackupService{store: store, databaseType: databaseType, logger: logging.OrNop(logger)}
}

// ExportToWriter writes a backup of every application key to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	entries, err := s.store.Entries(ctx)
	if err != nil {
		return nil, err
	}

	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.databaseType,
		Entries:      make(map[string]json.RawMessage),
	}
	for _, key := range repository.StorageKeys {
		raw, ok := entries[key]
		if !ok {
			continue
		}
		if !json.Valid([]byte(raw)) {
			s.logger.Warn("skipping unreadable document in export", zap.String("key", key))
			continue
		}
		backup.Entries[key] = json.RawMessage(raw)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("store exported", zap.Int("keys", len(backup.Entries)))
	return backup, nil
}

// Export creates a backup file at outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return s.ExportToWriter(ctx, file)
}

// ImportFromReader restores the keys present in a backup. Keys missing from
// the backup keep their current value; unknown keys are ignored.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}

	known := make(map[string]bool, len(repository.StorageKeys))
	for _, key := range repository.StorageKeys {
		known[key] = true
	}

	entries := make(map[string]string, len(backup.Entries))
	for key, raw := range backup.Entries {
		if !known[key] {
			s.logger.Warn("ignoring unknown key in backup", zap.String("key", key))
			continue
		}
		entries[key] = string(raw)
	}

	if err := s.store.Replace(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}

	s.logger.Info("store imported",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.Int("keys", len(entries)),
	)
	return &backup, nil
}

// Import restores a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) (*BackupData, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// Clear removes every application key from the store
func (s *BackupService) Clear(ctx context.Context) error {
	for _, key := range repository.StorageKeys {
		if err := s.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	s.logger.Info("store cleared", zap.Int("keys", len(repository.StorageKeys)))
	return nil
}
