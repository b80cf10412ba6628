package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCarnetMinimalFixture(t *testing.T) {
	text := "N° de Carné: 12345-AB\nFecha Emisión\n15/03/2024\n"

	data, doc := ParseCarnetAduanero(text)
	assert.True(t, doc.Valid)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, "12345-AB", data.NumeroCarnet)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), data.FechaEmision)
}

func TestMissingAnchorInvalidatesRecord(t *testing.T) {
	// no line carries any "Fecha Emisión" label variant
	text := "N° de Carné: 12345-AB\nOtro contenido\n"

	_, doc := ParseCarnetAduanero(text)
	assert.False(t, doc.Valid)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "fecha_emision")
}

func TestCoercionFailureWarnsWithRawText(t *testing.T) {
	text := "N° de Carné: 12345-AB\nFecha Emisión: proximamente\n"

	_, doc := ParseCarnetAduanero(text)
	assert.False(t, doc.Valid)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "fecha_emision")
	assert.Contains(t, doc.Warnings[0], "proximamente")
}

func TestAnchorMatchingIsAccentAndCaseInsensitive(t *testing.T) {
	text := "NRO. CARNET: 777888\nFECHA EMISION: 01/02/2024\n"

	data, doc := ParseCarnetAduanero(text)
	assert.True(t, doc.Valid)
	assert.Equal(t, "777888", data.NumeroCarnet)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), data.FechaEmision)
}

func TestFirstAnchorOccurrenceWins(t *testing.T) {
	text := "N° de Carné: 100200\n" +
		"Fecha Emisión: 10/01/2024\n" +
		"Aduana: Valparaíso\n" +
		"Aduana: Los Andes\n"

	data, doc := ParseCarnetAduanero(text)
	assert.True(t, doc.Valid)
	assert.Equal(t, "Valparaíso", data.Aduana)
}

func TestRunIsDeterministic(t *testing.T) {
	text := "N° de Carné: 100200\nFecha Emisión: 10/01/2024\nTitular: ANA PÉREZ\n"

	first := Run(text, CarnetAduaneroSchema)
	second := Run(text, CarnetAduaneroSchema)
	assert.Equal(t, first, second)
}

func TestOptionalFieldsCaptured(t *testing.T) {
	text := "N° de Carné: 100200\n" +
		"Fecha Emisión: 10/01/2024\n" +
		"Fecha Vencimiento: 10/01/2025\n" +
		"Nombre del Titular\nMARÍA JOSÉ CONTRERAS\n" +
		"RUT: 12.345.678-5\n" +
		"Placa Patente: ABCD-12\n"

	data, doc := ParseCarnetAduanero(text)
	assert.True(t, doc.Valid)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, "MARÍA JOSÉ CONTRERAS", data.NombreTitular)
	assert.Equal(t, "12.345.678-5", data.RutTitular)
	assert.Equal(t, "ABCD-12", data.PatenteVehiculo)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), data.FechaVencimiento)
}

func TestEmissionAfterExpiryWarnsButStaysValid(t *testing.T) {
	text := "N° de Carné: 100200\n" +
		"Fecha Emisión: 10/01/2026\n" +
		"Fecha Vencimiento: 10/01/2024\n"

	_, doc := ParseCarnetAduanero(text)
	assert.True(t, doc.Valid, "consistency violations alone never invalidate")
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "fecha_emision")
}

func TestSegmentLinesDropsBlanksPreservesOrder(t *testing.T) {
	lines := SegmentLines("uno\r\n\n  dos  \n\n\ntres\n")
	assert.Equal(t, []string{"uno", "dos", "tres"}, lines)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "fecha emision", fold("Fecha Emisión"))
	assert.Equal(t, "numero de carne", fold("NÚMERO DE CARNÉ"))
	assert.Equal(t, "n° guia", fold("N° Guía"))
}
