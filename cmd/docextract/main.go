// docextract is the dev binary: run one extraction pipeline over a file,
// ingest a folder of carnets, or export stored carnets, printing results
// as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aduanatech/docextract/constants"
	"github.com/aduanatech/docextract/internal/common"
	"github.com/aduanatech/docextract/internal/export"
	"github.com/aduanatech/docextract/internal/ingest"
	"github.com/aduanatech/docextract/internal/ocr"
	"github.com/aduanatech/docextract/internal/pdfimages"
	"github.com/aduanatech/docextract/internal/pipeline"
	"github.com/aduanatech/docextract/internal/repository"
)

func main() {
	var (
		docType    = flag.String("type", "carnet_aduanero", "document type: carnet_aduanero, comprobante_transaccion, declaracion_ingreso, documento_recepcion, guia_despacho, seleccion_aforo")
		file       = flag.String("file", "", "extract a single PNG or PDF file")
		dir        = flag.String("dir", "", "ingest every carnet under a directory")
		persist    = flag.Bool("persist", false, "store the extracted carnet in the database")
		exportPath = flag.String("export", "", "write stored carnets to an XLSX file")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	common.LoadDotenv()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error("ocr backend", "backend", cfg.OCR.Backend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	images := pdfimages.NewExtractor(cfg.Extract.ImageOutputDir, logger)

	switch {
	case *dir != "":
		runIngest(ctx, cfg, engine, images, *dir, logger)
	case *exportPath != "":
		runExport(ctx, cfg, *exportPath, logger)
	case *file != "":
		runExtract(ctx, cfg, engine, images, *docType, *file, *persist, logger)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func buildEngine(ctx context.Context, cfg *common.Config, logger *slog.Logger) (ocr.Engine, func(), error) {
	switch cfg.OCR.Backend {
	case ocr.BackendVision:
		eng, err := ocr.NewVisionEngine(ctx, cfg.OCR.Credentials, logger)
		if err != nil {
			return nil, nil, err
		}
		return eng, func() { _ = eng.Close() }, nil
	case ocr.BackendTesseract:
		return ocr.NewTesseractEngine(cfg.OCR.Language, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ocr backend %q", cfg.OCR.Backend)
	}
}

func openRepo(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, repository.CarnetRepository) {
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := db.Health(ctx, 5*time.Second); err != nil {
		logger.Error("database unreachable", "error", err)
		db.Close()
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, db.SQL, cfg.Database.Driver); err != nil {
		logger.Error("ensure schema", "error", err)
		db.Close()
		os.Exit(1)
	}
	return db, repository.NewCarnetRepository(db.SQL, logger)
}

func runExtract(ctx context.Context, cfg *common.Config, engine ocr.Engine, images *pdfimages.Extractor, docType, file string, persist bool, logger *slog.Logger) {
	var (
		out any
		err error
	)
	switch parseDocType(docType) {
	case constants.CarnetAduanero:
		p := pipeline.NewCarnetAduanero(engine, images, logger)
		res, rerr := p.ExtractFromPath(ctx, file)
		out, err = res, rerr
		if rerr == nil && persist {
			if !res.IsValid {
				logger.Warn("record invalid; skipping persist", "warnings", len(res.Warnings))
			} else {
				db, carnets := openRepo(ctx, cfg, logger)
				defer db.Close()
				ing := ingest.NewFSIngestor(p, carnets, logger)
				fileRes, ferr := ing.IngestPath(ctx, file)
				out, err = fileRes, ferr
			}
		}
	case constants.ComprobanteTransaccion:
		out, err = pipeline.NewComprobanteTransaccion(engine, images, logger).ExtractFromPath(ctx, file)
	case constants.DeclaracionIngreso:
		out, err = pipeline.NewDeclaracionIngreso(engine, images, logger).ExtractFromPath(ctx, file)
	case constants.DocumentoRecepcion:
		out, err = pipeline.NewDocumentoRecepcion(engine, images, logger).ExtractFromPath(ctx, file)
	case constants.GuiaDespacho:
		out, err = pipeline.NewGuiaDespacho(engine, images, logger).ExtractFromPath(ctx, file)
	case constants.SeleccionAforo:
		out, err = pipeline.NewSeleccionAforo(engine, images, logger).ExtractFromPath(ctx, file)
	default:
		logger.Error("unknown document type", "type", docType)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("extraction failed", "file", file, "error", err)
		os.Exit(1)
	}
	printJSON(out)
}

func runIngest(ctx context.Context, cfg *common.Config, engine ocr.Engine, images *pdfimages.Extractor, dir string, logger *slog.Logger) {
	db, carnets := openRepo(ctx, cfg, logger)
	defer db.Close()

	ing := ingest.NewFSIngestor(pipeline.NewCarnetAduanero(engine, images, logger), carnets, logger)
	results, stats, err := ing.IngestDirectory(ctx, dir, true)
	if err != nil {
		logger.Error("ingest failed", "dir", dir, "error", err)
		os.Exit(1)
	}
	printJSON(map[string]any{"stats": stats, "results": results})
}

func runExport(ctx context.Context, cfg *common.Config, path string, logger *slog.Logger) {
	db, carnets := openRepo(ctx, cfg, logger)
	defer db.Close()

	data, err := export.NewService(carnets, logger).ExportCarnetsXLSX(ctx, repository.ListParams{Limit: 10000})
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("write export", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", path, "bytes", len(data))
}

// parseDocType accepts both the CLI spelling and the canonical constant.
func parseDocType(s string) constants.DocumentType {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, dt := range constants.DocumentTypes {
		if normalized == string(dt) {
			return dt
		}
	}
	return constants.DocumentType("")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
