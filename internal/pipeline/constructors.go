package pipeline

import (
	"log/slog"

	"github.com/aduanatech/docextract/constants"
	"github.com/aduanatech/docextract/internal/extract"
	"github.com/aduanatech/docextract/internal/ocr"
	"github.com/aduanatech/docextract/internal/pdfimages"
)

// One constructor per supported document type. A nil images extractor
// falls back to one writing under the OS temp dir; a nil logger falls back
// to slog.Default.

func NewCarnetAduanero(engine ocr.Engine, images *pdfimages.Extractor, logger *slog.Logger) *Pipeline[extract.CarnetAduaneroData] {
	return newPipeline(constants.CarnetAduanero, engine, images, extract.ParseCarnetAduanero, logger)
}

func NewComprobanteTransaccion(engine ocr.Engine, images *pdfimages.Extractor, logger *slog.Logger) *Pipeline[extract.ComprobanteTransaccionData] {
	return newPipeline(constants.ComprobanteTransaccion, engine, images, extract.ParseComprobanteTransaccion, logger)
}

func NewDeclaracionIngreso(engine ocr.Engine, images *pdfimages.Extractor, logger *slog.Logger) *Pipeline[extract.DeclaracionIngresoData] {
	return newPipeline(constants.DeclaracionIngreso, engine, images, extract.ParseDeclaracionIngreso, logger)
}

func NewDocumentoRecepcion(engine ocr.Engine, images *pdfimages.Extractor, logger *slog.Logger) *Pipeline[extract.DocumentoRecepcionData] {
	return newPipeline(constants.DocumentoRecepcion, engine, images, extract.ParseDocumentoRecepcion, logger)
}

func NewGuiaDespacho(engine ocr.Engine, images *pdfimages.Extractor, logger *slog.Logger) *Pipeline[extract.GuiaDespachoData] {
	return newPipeline(constants.GuiaDespacho, engine, images, extract.ParseGuiaDespacho, logger)
}

func NewSeleccionAforo(engine ocr.Engine, images *pdfimages.Extractor, logger *slog.Logger) *Pipeline[extract.SeleccionAforoData] {
	return newPipeline(constants.SeleccionAforo, engine, images, extract.ParseSeleccionAforo, logger)
}
