package extract

import (
	"regexp"
	"time"

	"github.com/aduanatech/docextract/constants"
)

var (
	reNumeroCarnet = regexp.MustCompile(`^\d{3,10}(-[A-Z0-9]{1,6})?$`)
	reRUT          = regexp.MustCompile(`^\d{1,2}\.?\d{3}\.?\d{3}-[\dK]$`)
	rePatente      = regexp.MustCompile(`^[A-Z]{2,4}[.\- ]?\d{2,4}$`)
)

// CarnetAduaneroData is the structured output of the carnet-aduanero
// pipeline. It carries no persistence metadata; the stored entity with its
// id and audit timestamps belongs to the repository.
type CarnetAduaneroData struct {
	NumeroCarnet     string    `json:"numero_carnet"`
	FechaEmision     time.Time `json:"fecha_emision"`
	FechaVencimiento time.Time `json:"fecha_vencimiento"`
	NombreTitular    string    `json:"nombre_titular,omitempty"`
	RutTitular       string    `json:"rut_titular,omitempty"`
	Aduana           string    `json:"aduana,omitempty"`
	PatenteVehiculo  string    `json:"patente_vehiculo,omitempty"`
}

// CarnetAduaneroSchema mirrors the printed layout of a customs-clearance
// carnet. Label variants cover the spellings seen across scanning batches.
var CarnetAduaneroSchema = &Schema{
	DocType: constants.CarnetAduanero,
	Fields: []FieldSpec{
		{
			ID:       "numero_carnet",
			Labels:   []string{"N° de Carné", "Nro. Carnet", "Número de Carnet", "N° Carnet"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindIdentifier,
			Required: true,
			Pattern:  reNumeroCarnet,
		},
		{
			ID:       "fecha_emision",
			Labels:   []string{"Fecha Emisión", "Fecha de Emisión", "Emitido el"},
			Capture:  CaptureSameLineOrNext,
			Kind:     KindDate,
			Required: true,
		},
		{
			ID:      "fecha_vencimiento",
			Labels:  []string{"Fecha Vencimiento", "Fecha de Vencimiento", "Válido hasta"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindDate,
		},
		{
			ID:      "nombre_titular",
			Labels:  []string{"Nombre del Titular", "Titular", "Nombre"},
			Capture: CaptureSameLineOrNext,
			Kind:    KindText,
		},
		{
			ID:      "rut_titular",
			Labels:  []string{"RUT", "R.U.T."},
			Capture: CaptureSameLine,
			Kind:    KindIdentifier,
			Pattern: reRUT,
		},
		{
			ID:      "aduana",
			Labels:  []string{"Aduana"},
			Capture: CaptureSameLine,
			Kind:    KindText,
		},
		{
			ID:      "patente_vehiculo",
			Labels:  []string{"Placa Patente", "Patente"},
			Capture: CaptureSameLine,
			Kind:    KindIdentifier,
			Pattern: rePatente,
		},
	},
	Checks: []Check{
		DateNotAfter("fecha_emision", "fecha_vencimiento"),
	},
}

// ParseCarnetAduanero runs the engine over OCR text and maps the captured
// fields onto the typed record.
func ParseCarnetAduanero(text string) (CarnetAduaneroData, *Document) {
	doc := Run(text, CarnetAduaneroSchema)
	return CarnetAduaneroData{
		NumeroCarnet:     doc.Field("numero_carnet").Text,
		FechaEmision:     doc.Field("fecha_emision").Date,
		FechaVencimiento: doc.Field("fecha_vencimiento").Date,
		NombreTitular:    doc.Field("nombre_titular").Text,
		RutTitular:       doc.Field("rut_titular").Text,
		Aduana:           doc.Field("aduana").Text,
		PatenteVehiculo:  doc.Field("patente_vehiculo").Text,
	}, doc
}
