package extract

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aduanatech/docextract/constants"
)

var reNumeroRecepcion = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{3,15}$`)

// DocumentoRecepcionData is the structured output of the receiving-document
// pipeline.
type DocumentoRecepcionData struct {
	NumeroRecepcion string          `json:"numero_recepcion"`
	FechaRecepcion  time.Time       `json:"fecha_recepcion"`
	Almacen         string          `json:"almacen,omitempty"`
	NumeroBultos    int             `json:"numero_bultos"`
	PesoBrutoKg     decimal.Decimal `json:"peso_bruto_kg"`
	Items           []LineItem      `json:"items,omitempty"`
}

var DocumentoRecepcionSchema = &Schema{
	DocType: constants.DocumentoRecepcion,
	Fields: []FieldSpec{
		{
			ID:       "numero_recepcion",
			Labels:   []string{"N° Recepción", "Nro. Recepción", "Número de Recepción"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindIdentifier,
			Required: true,
			Pattern:  reNumeroRecepcion,
		},
		{
			ID:       "fecha_recepcion",
			Labels:   []string{"Fecha Recepción", "Fecha de Recepción"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindDate,
			Required: true,
		},
		{
			ID:      "almacen",
			Labels:  []string{"Almacén", "Depósito", "Recinto"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindText,
		},
		{
			ID:      "numero_bultos",
			Labels:  []string{"Cantidad de Bultos", "N° Bultos", "Total Bultos"},
			Capture: CaptureSameLine,
			Kind:    KindInteger,
		},
		{
			ID:      "peso_bruto_kg",
			Labels:  []string{"Peso Bruto (Kg)", "Peso Bruto"},
			Capture: CaptureSameLine,
			Kind:    KindAmount,
		},
	},
	Items: &ItemSection{
		HeaderLabels: []string{"Detalle de Bultos", "Detalle de Mercancías"},
		FooterLabels: []string{"Total Bultos", "Observaciones", "Peso Bruto"},
	},
	Checks: []Check{
		QuantitySumMatchesCount("numero_bultos"),
	},
}

// ParseDocumentoRecepcion runs the engine over OCR text and maps the
// captured fields onto the typed record.
func ParseDocumentoRecepcion(text string) (DocumentoRecepcionData, *Document) {
	doc := Run(text, DocumentoRecepcionSchema)
	return DocumentoRecepcionData{
		NumeroRecepcion: doc.Field("numero_recepcion").Text,
		FechaRecepcion:  doc.Field("fecha_recepcion").Date,
		Almacen:         doc.Field("almacen").Text,
		NumeroBultos:    doc.Field("numero_bultos").Int,
		PesoBrutoKg:     doc.Field("peso_bruto_kg").Amount,
		Items:           doc.Items,
	}, doc
}
