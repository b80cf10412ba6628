package extract

import (
	"time"

	"github.com/aduanatech/docextract/constants"
)

// SeleccionAforoData is the structured output of the
// customs-inspection-selection pipeline.
type SeleccionAforoData struct {
	NumeroDeclaracion  string    `json:"numero_declaracion"`
	FechaSeleccion     time.Time `json:"fecha_seleccion"`
	TipoRevision       string    `json:"tipo_revision"`
	Aduana             string    `json:"aduana,omitempty"`
	NombreFiscalizador string    `json:"nombre_fiscalizador,omitempty"`
}

var SeleccionAforoSchema = &Schema{
	DocType: constants.SeleccionAforo,
	Fields: []FieldSpec{
		{
			ID:       "numero_declaracion",
			Labels:   []string{"N° Declaración", "Número Declaración", "Declaración N°"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindIdentifier,
			Required: true,
			Pattern:  reNumeroDeclaracion,
		},
		{
			ID:       "fecha_seleccion",
			Labels:   []string{"Fecha Selección", "Fecha de Selección", "Fecha"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindDate,
			Required: true,
		},
		{
			ID:       "tipo_revision",
			Labels:   []string{"Tipo de Revisión", "Tipo Selección", "Resultado Selección"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindText,
			Required: true,
		},
		{
			ID:      "aduana",
			Labels:  []string{"Aduana"},
			Capture: CaptureSameLine,
			Kind:    KindText,
		},
		{
			ID:      "nombre_fiscalizador",
			Labels:  []string{"Fiscalizador", "Funcionario"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindText,
		},
	},
	Checks: []Check{
		OneOf("tipo_revision", "Aforo Físico", "Revisión Documental", "Sin Inspección"),
	},
}

// ParseSeleccionAforo runs the engine over OCR text and maps the captured
// fields onto the typed record.
func ParseSeleccionAforo(text string) (SeleccionAforoData, *Document) {
	doc := Run(text, SeleccionAforoSchema)
	return SeleccionAforoData{
		NumeroDeclaracion:  doc.Field("numero_declaracion").Text,
		FechaSeleccion:     doc.Field("fecha_seleccion").Date,
		TipoRevision:       doc.Field("tipo_revision").Text,
		Aduana:             doc.Field("aduana").Text,
		NombreFiscalizador: doc.Field("nombre_fiscalizador").Text,
	}, doc
}
