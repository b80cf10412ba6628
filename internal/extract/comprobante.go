package extract

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aduanatech/docextract/constants"
)

var reNumeroOperacion = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-/]{2,19}$`)

// ComprobanteTransaccionData is the structured output of the
// transaction-receipt pipeline.
type ComprobanteTransaccionData struct {
	NumeroTransaccion string          `json:"numero_transaccion"`
	FechaTransaccion  time.Time       `json:"fecha_transaccion"`
	Monto             decimal.Decimal `json:"monto"`
	Moneda            string          `json:"moneda,omitempty"`
	MedioPago         string          `json:"medio_pago,omitempty"`
	Items             []LineItem      `json:"items,omitempty"`
}

var ComprobanteTransaccionSchema = &Schema{
	DocType: constants.ComprobanteTransaccion,
	Fields: []FieldSpec{
		{
			ID:       "numero_transaccion",
			Labels:   []string{"N° Transacción", "Nro. Transacción", "N° de Operación", "Folio"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindIdentifier,
			Required: true,
			Pattern:  reNumeroOperacion,
		},
		{
			ID:       "fecha_transaccion",
			Labels:   []string{"Fecha Transacción", "Fecha de Pago", "Fecha"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindDate,
			Required: true,
		},
		{
			ID:       "monto",
			Labels:   []string{"Monto Total", "Total Pagado", "Monto", "Total"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindAmount,
			Required: true,
		},
		{
			ID:      "moneda",
			Labels:  []string{"Moneda"},
			Capture: CaptureSameLine,
			Kind:    KindText,
		},
		{
			ID:      "medio_pago",
			Labels:  []string{"Medio de Pago", "Forma de Pago"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindText,
		},
	},
	Items: &ItemSection{
		HeaderLabels: []string{"Detalle de la Transacción", "Detalle"},
		FooterLabels: []string{"Monto Total", "Total Pagado", "Total"},
	},
	Checks: []Check{
		SumOfItemsMatches("monto"),
	},
}

// ParseComprobanteTransaccion runs the engine over OCR text and maps the
// captured fields onto the typed record.
func ParseComprobanteTransaccion(text string) (ComprobanteTransaccionData, *Document) {
	doc := Run(text, ComprobanteTransaccionSchema)
	return ComprobanteTransaccionData{
		NumeroTransaccion: doc.Field("numero_transaccion").Text,
		FechaTransaccion:  doc.Field("fecha_transaccion").Date,
		Monto:             doc.Field("monto").Amount,
		Moneda:            doc.Field("moneda").Text,
		MedioPago:         doc.Field("medio_pago").Text,
		Items:             doc.Items,
	}, doc
}
