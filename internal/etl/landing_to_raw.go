package etl

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"streampro-lake/internal/config"
	"streampro-lake/internal/domain"
)

// Extensions recognized as tabular landing files.
var landingExtensions = map[string]bool{
	".csv":   true,
	".json":  true,
	".jsonl": true,
}

// CopyFailure records one failed landing→raw copy.
type CopyFailure struct {
	File  string
	Error string
}

// LandingToRaw copies dated files from the landing area into the raw area
// under an ingestion-date partition. Content is copied verbatim; only the key
// changes.
type LandingToRaw struct {
	Hooks

	storage       domain.StorageGateway
	landingPrefix string
	rawPrefix     string
	ingestionDate string
	logger        *slog.Logger
}

// NewLandingToRaw builds the landing→raw stage from configuration.
func NewLandingToRaw(storage domain.StorageGateway, cfg *config.Config, logger *slog.Logger) *LandingToRaw {
	return &LandingToRaw{
		storage:       storage,
		landingPrefix: cfg.LandingPrefix,
		rawPrefix:     cfg.RawPrefix,
		ingestionDate: cfg.IngestionDate,
		logger:        logger,
	}
}

// ID implements Stage.
func (p *LandingToRaw) ID() string { return "landing_to_raw_processor" }

// Description implements Stage.
func (p *LandingToRaw) Description() string {
	return "Copy landing data to raw layer with ingestion_date partitioning"
}

// Extract lists the landing area and derives one FileDescriptor per
// recognized object whose embedded date matches the target ingestion date.
// A total listing failure yields zero work, not a stage failure.
func (p *LandingToRaw) Extract(ctx context.Context) (map[string]domain.FileDescriptor, error) {
	p.logger.Info("listing landing area", "prefix", p.landingPrefix)

	keys, err := p.storage.List(ctx, p.landingPrefix)
	if err != nil {
		p.logger.Error("failed to list landing files", "error", err)
		return map[string]domain.FileDescriptor{}, nil
	}

	files := make(map[string]domain.FileDescriptor)
	for _, key := range keys {
		name := path.Base(key)
		ext := strings.ToLower(path.Ext(name))
		if !landingExtensions[ext] {
			continue
		}

		stem := strings.TrimSuffix(name, path.Ext(name))
		tableType, fileDate := splitStem(stem, p.ingestionDate)
		if fileDate != p.ingestionDate {
			p.logger.Debug("skipping file outside target date",
				"file", name, "file_date", fileDate, "target", p.ingestionDate)
			continue
		}

		// Last-listed wins when the listing holds several files for one
		// table type on the same date.
		files[tableType] = domain.FileDescriptor{
			LandingKey: key,
			Name:       name,
			TableType:  tableType,
			FileDate:   fileDate,
			RawKey:     fmt.Sprintf("%s/ingestion_date=%s/%s", p.rawPrefix, fileDate, name),
		}
		p.logger.Debug("found landing file", "file", name, "table_type", tableType, "date", fileDate)
	}

	p.logger.Info("landing discovery complete", "files", len(files))
	return files, nil
}

// splitStem parses a file stem into (table-type token, file date). A stem
// whose last underscore-delimited segment contains exactly two hyphens is
// treated as suffixed with a YYYY-MM-DD date; otherwise the whole stem is the
// token and the file assumes the target ingestion date.
func splitStem(stem, targetDate string) (tableType, fileDate string) {
	if idx := strings.LastIndex(stem, "_"); idx >= 0 {
		if tail := stem[idx+1:]; strings.Count(tail, "-") == 2 {
			return stem[:idx], tail
		}
	}
	return stem, targetDate
}

// Transform is the identity: descriptors already carry their partition paths.
func (p *LandingToRaw) Transform(_ context.Context, extracted map[string]domain.FileDescriptor) (map[string]domain.FileDescriptor, error) {
	return extracted, nil
}

// Load copies each file to its raw-area key. Per-file failures are collected
// and reported in metadata; the result is successful iff zero copies failed.
// The rows-processed metric counts files, since no data rows are inspected.
func (p *LandingToRaw) Load(ctx context.Context, transformed map[string]domain.FileDescriptor) (*domain.ProcessingResult, error) {
	successful := 0
	var failures []CopyFailure

	tokens := make([]string, 0, len(transformed))
	for token := range transformed {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	for _, token := range tokens {
		fd := transformed[token]
		if err := p.storage.Copy(ctx, fd.LandingKey, fd.RawKey); err != nil {
			failures = append(failures, CopyFailure{File: fd.Name, Error: err.Error()})
			p.logger.Error("failed to copy file", "file", fd.Name, "error", err)
			continue
		}
		successful++
		p.logger.Info("copied file", "file", fd.Name, "raw_key", fd.RawKey)
	}

	message := fmt.Sprintf("Copied %d files to raw layer with ingestion_date partitioning", successful)
	if len(failures) > 0 {
		message += fmt.Sprintf(", %d failed", len(failures))
	}

	result := domain.NewProcessingResult(len(failures) == 0, message)
	result.Metadata = map[string]any{
		"successful_copies": successful,
		"failed_copies":     failures,
		"files_processed":   tokens,
		"raw_prefix":        p.rawPrefix,
		"ingestion_date":    p.ingestionDate,
		"partitioned":       true,
	}
	result.RowsProcessed = len(transformed)
	result.TablesCreated = []string{}
	return result, nil
}

// PostProcess logs the copy summary. No data is mutated.
func (p *LandingToRaw) PostProcess(_ context.Context, result *domain.ProcessingResult) error {
	p.logger.Info("landing→raw copy complete",
		"files_copied", result.Metadata["successful_copies"],
		"partition", fmt.Sprintf("ingestion_date=%s", p.ingestionDate),
		"raw_path", fmt.Sprintf("%s/ingestion_date=%s/", p.rawPrefix, p.ingestionDate))

	if failures, ok := result.Metadata["failed_copies"].([]CopyFailure); ok && len(failures) > 0 {
		p.logger.Warn("some copies failed", "failed", len(failures))
	}
	return nil
}
