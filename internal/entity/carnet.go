// Package entity holds the persisted shapes exchanged with the repository
// layer. They are distinct from the extraction records: persistence adds
// identity, audit timestamps and source provenance.
package entity

import "time"

// CarnetAduanero is a stored customs carnet row.
type CarnetAduanero struct {
	ID               int64      `json:"id"`
	NumeroCarnet     string     `json:"numero_carnet"`
	FechaEmision     time.Time  `json:"fecha_emision"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento,omitempty"`
	NombreTitular    string     `json:"nombre_titular,omitempty"`
	RutTitular       string     `json:"rut_titular,omitempty"`
	Aduana           string     `json:"aduana,omitempty"`
	PatenteVehiculo  string     `json:"patente_vehiculo,omitempty"`
	ArchivoOrigen    string     `json:"archivo_origen,omitempty"`
	SourceHash       string     `json:"source_hash,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Vigente reports whether the carnet is still within its validity window
// at the given instant. A carnet without an expiry date never expires.
func (c *CarnetAduanero) Vigente(now time.Time) bool {
	return c.FechaVencimiento == nil || !now.After(*c.FechaVencimiento)
}

// CarnetStats is an aggregate summary over the stored carnets.
type CarnetStats struct {
	Total            int64      `json:"total"`
	Vigentes         int64      `json:"vigentes"`
	Vencidos         int64      `json:"vencidos"`
	AduanasDistintas int64      `json:"aduanas_distintas"`
	UltimaFechaCarga *time.Time `json:"ultima_fecha_carga,omitempty"`
}
