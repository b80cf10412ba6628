package extract

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aduanatech/docextract/constants"
)

var reNumeroDeclaracion = regexp.MustCompile(`^\d{7,12}(-[0-9KA-Z])?$`)

// DeclaracionIngresoData is the structured output of the income-declaration
// pipeline.
type DeclaracionIngresoData struct {
	NumeroIdentificacion string          `json:"numero_identificacion"`
	FechaAceptacion      time.Time       `json:"fecha_aceptacion"`
	Aduana               string          `json:"aduana"`
	NombreImportador     string          `json:"nombre_importador,omitempty"`
	RutImportador        string          `json:"rut_importador,omitempty"`
	ValorFOB             decimal.Decimal `json:"valor_fob"`
	ValorCIF             decimal.Decimal `json:"valor_cif"`
	TotalGravamenes      decimal.Decimal `json:"total_gravamenes"`
}

var DeclaracionIngresoSchema = &Schema{
	DocType: constants.DeclaracionIngreso,
	Fields: []FieldSpec{
		{
			ID:       "numero_identificacion",
			Labels:   []string{"N° Identificación", "Número Identificación", "Nro. Identificación"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindIdentifier,
			Required: true,
			Pattern:  reNumeroDeclaracion,
		},
		{
			ID:       "fecha_aceptacion",
			Labels:   []string{"Fecha Aceptación", "Fecha de Aceptación"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindDate,
			Required: true,
		},
		{
			ID:       "aduana",
			Labels:   []string{"Aduana"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindText,
			Required: true,
		},
		{
			ID:      "nombre_importador",
			Labels:  []string{"Nombre Importador", "Importador"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindText,
		},
		{
			ID:      "rut_importador",
			Labels:  []string{"RUT Importador", "RUT"},
			Capture: CaptureSameLine,
			Kind:    KindIdentifier,
			Pattern: reRUT,
		},
		{
			ID:      "valor_fob",
			Labels:  []string{"Valor FOB", "Total FOB", "FOB"},
			Capture: CaptureSameLine,
			Kind:    KindAmount,
		},
		{
			ID:      "valor_cif",
			Labels:  []string{"Valor CIF", "Total CIF", "CIF"},
			Capture: CaptureSameLine,
			Kind:    KindAmount,
		},
		{
			ID:      "total_gravamenes",
			Labels:  []string{"Total Gravámenes", "Total a Pagar"},
			Capture: CaptureSameLine,
			Kind:    KindAmount,
		},
	},
	Checks: []Check{
		// CIF includes freight and insurance on top of FOB.
		AmountNotGreater("valor_fob", "valor_cif"),
	},
}

// ParseDeclaracionIngreso runs the engine over OCR text and maps the
// captured fields onto the typed record.
func ParseDeclaracionIngreso(text string) (DeclaracionIngresoData, *Document) {
	doc := Run(text, DeclaracionIngresoSchema)
	return DeclaracionIngresoData{
		NumeroIdentificacion: doc.Field("numero_identificacion").Text,
		FechaAceptacion:      doc.Field("fecha_aceptacion").Date,
		Aduana:               doc.Field("aduana").Text,
		NombreImportador:     doc.Field("nombre_importador").Text,
		RutImportador:        doc.Field("rut_importador").Text,
		ValorFOB:             doc.Field("valor_fob").Amount,
		ValorCIF:             doc.Field("valor_cif").Amount,
		TotalGravamenes:      doc.Field("total_gravamenes").Amount,
	}, doc
}
