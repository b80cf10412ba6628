package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aduanatech/docextract/constants"
	"github.com/aduanatech/docextract/internal/entity"
	"github.com/aduanatech/docextract/internal/extract"
	"github.com/aduanatech/docextract/internal/fileinfo"
	"github.com/aduanatech/docextract/internal/pipeline"
	"github.com/aduanatech/docextract/internal/repository"
)

// FSIngestor reads scanned carnets from the local filesystem.
type FSIngestor struct {
	Pipeline *pipeline.Pipeline[extract.CarnetAduaneroData]
	Carnets  repository.CarnetRepository
	Logger   *slog.Logger
}

func NewFSIngestor(p *pipeline.Pipeline[extract.CarnetAduaneroData], carnets repository.CarnetRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Pipeline: p, Carnets: carnets, Logger: logger}
}

// IngestPath extracts one file and persists the record when it is valid
// and not already stored. Already-seen content (by hash) and already-seen
// carnet numbers are reported as deduplicated, not as errors.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (FileResult, error) {
	out := FileResult{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	format := constants.MapExtToFormat(ext)
	if format == constants.Unknown {
		return out, fmt.Errorf("unsupported or missing extension %q", ext)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return out, fmt.Errorf("read file: %w", err)
	}
	// A mislabeled file is an error here, before any dedup bookkeeping.
	if err := fileinfo.Validate(data, format); err != nil {
		return out, fmt.Errorf("content does not match extension %q: %w", ext, err)
	}

	out.SourceHash = fileinfo.HashSHA256(data)
	seen, err := i.Carnets.ExistsByHash(ctx, out.SourceHash)
	if err != nil {
		return out, err
	}
	if seen {
		out.Deduplicated = true
		out.IsValid = true
		i.Logger.Debug("ingest.dedup.hash", "path", abs)
		return out, nil
	}

	res, err := i.Pipeline.ExtractFromBytes(ctx, data)
	if err != nil {
		return out, err
	}
	out.IsValid = res.IsValid
	out.Warnings = res.Warnings
	out.NumeroCarnet = res.Record.NumeroCarnet
	if !res.IsValid {
		i.Logger.Warn("ingest.invalid", "path", abs, "warnings", len(res.Warnings))
		return out, nil
	}

	seen, err = i.Carnets.ExistsByNumero(ctx, res.Record.NumeroCarnet)
	if err != nil {
		return out, err
	}
	if seen {
		out.Deduplicated = true
		i.Logger.Debug("ingest.dedup.numero", "path", abs, "numero", res.Record.NumeroCarnet)
		return out, nil
	}

	created, err := i.Carnets.Create(ctx, toEntity(res.Record, abs, out.SourceHash))
	if err != nil {
		return out, err
	}
	out.CarnetID = created.ID
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested, and
// ingests each matching file. Per-file failures land in the results, not
// in the returned error; only the walk itself can fail the call.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}
		results = append(results, r)
		switch {
		case r.Deduplicated:
			stats.Deduplicated++
			stats.Succeeded++
		case !r.IsValid:
			stats.Invalid++
		default:
			stats.Succeeded++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.Logger.Info("ingest.dir.ok",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"invalid", stats.Invalid,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

// toEntity maps an extraction record onto the persisted shape.
func toEntity(rec extract.CarnetAduaneroData, sourcePath, sourceHash string) *entity.CarnetAduanero {
	c := &entity.CarnetAduanero{
		NumeroCarnet:    rec.NumeroCarnet,
		FechaEmision:    rec.FechaEmision,
		NombreTitular:   rec.NombreTitular,
		RutTitular:      rec.RutTitular,
		Aduana:          rec.Aduana,
		PatenteVehiculo: rec.PatenteVehiculo,
		ArchivoOrigen:   sourcePath,
		SourceHash:      sourceHash,
	}
	if !rec.FechaVencimiento.IsZero() {
		v := rec.FechaVencimiento
		c.FechaVencimiento = &v
	}
	return c
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
