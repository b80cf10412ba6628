package extract

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aduanatech/docextract/constants"
)

var reNumeroGuia = regexp.MustCompile(`^\d{1,12}$`)

// GuiaDespachoData is the structured output of the electronic
// dispatch-guide pipeline.
type GuiaDespachoData struct {
	NumeroGuia   string          `json:"numero_guia"`
	FechaEmision time.Time       `json:"fecha_emision"`
	RutEmisor    string          `json:"rut_emisor,omitempty"`
	Destinatario string          `json:"destinatario,omitempty"`
	Direccion    string          `json:"direccion,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Items        []LineItem      `json:"items,omitempty"`
}

var GuiaDespachoSchema = &Schema{
	DocType: constants.GuiaDespacho,
	Fields: []FieldSpec{
		{
			ID:       "numero_guia",
			Labels:   []string{"Guía de Despacho N°", "N° Guía", "Guía N°", "Folio"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindIdentifier,
			Required: true,
			Pattern:  reNumeroGuia,
		},
		{
			ID:       "fecha_emision",
			Labels:   []string{"Fecha Emisión", "Fecha de Emisión", "Fecha"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindDate,
			Required: true,
		},
		{
			ID:      "rut_emisor",
			Labels:  []string{"RUT Emisor", "R.U.T."},
			Capture: CaptureSameLine,
			Kind:    KindIdentifier,
			Pattern: reRUT,
		},
		{
			ID:      "destinatario",
			Labels:  []string{"Destinatario", "Señor(es)", "Señores"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindText,
		},
		{
			ID:      "direccion",
			Labels:  []string{"Dirección Destino", "Dirección"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindText,
		},
		{
			ID:       "total",
			Labels:   []string{"Monto Total", "Total"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindAmount,
			Required: true,
		},
	},
	Items: &ItemSection{
		HeaderLabels: []string{"Cantidad Descripción", "Detalle de Mercancías", "Detalle"},
		FooterLabels: []string{"Monto Total", "Subtotal", "Total"},
	},
	Checks: []Check{
		SumOfItemsMatches("total"),
	},
}

// ParseGuiaDespacho runs the engine over OCR text and maps the captured
// fields onto the typed record.
func ParseGuiaDespacho(text string) (GuiaDespachoData, *Document) {
	doc := Run(text, GuiaDespachoSchema)
	return GuiaDespachoData{
		NumeroGuia:   doc.Field("numero_guia").Text,
		FechaEmision: doc.Field("fecha_emision").Date,
		RutEmisor:    doc.Field("rut_emisor").Text,
		Destinatario: doc.Field("destinatario").Text,
		Direccion:    doc.Field("direccion").Text,
		Total:        doc.Field("total").Amount,
		Items:        doc.Items,
	}, doc
}
