// Package export produces XLSX workbooks from stored carnets for the
// compliance teams that still live in spreadsheets.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aduanatech/docextract/internal/repository"
)

// Service is a thin façade over the carnet repository that renders
// listings as XLSX bytes.
type Service struct {
	carnets repository.CarnetRepository
	logger  *slog.Logger
}

func NewService(carnets repository.CarnetRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{carnets: carnets, logger: logger}
}

var headers = []string{
	"N° Carnet",
	"Fecha Emisión",
	"Fecha Vencimiento",
	"Titular",
	"RUT",
	"Aduana",
	"Patente",
	"Archivo Origen",
}

// ExportCarnetsXLSX returns an XLSX workbook with one row per stored
// carnet matching the listing parameters. An empty result still yields a
// valid workbook with the header row.
func (s *Service) ExportCarnetsXLSX(ctx context.Context, params repository.ListParams) ([]byte, error) {
	start := time.Now()

	recs, err := s.carnets.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("query carnets: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Carnets"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, c := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, c.NumeroCarnet)
		write(2, c.FechaEmision.Format("2006-01-02"))
		if c.FechaVencimiento != nil {
			write(3, c.FechaVencimiento.Format("2006-01-02"))
		} else {
			write(3, "")
		}
		write(4, c.NombreTitular)
		write(5, c.RutTitular)
		write(6, c.Aduana)
		write(7, c.PatenteVehiculo)
		write(8, c.ArchivoOrigen)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 32)
	_ = f.SetColWidth(sheet, "E", "G", 16)
	_ = f.SetColWidth(sheet, "H", "H", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
