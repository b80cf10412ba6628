package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGuiaDespachoWithItems(t *testing.T) {
	text := "Guía de Despacho N°: 123456\n" +
		"Fecha Emisión: 05/08/2024\n" +
		"Detalle de Mercancías\n" +
		"2 Neumáticos camión 90.000\n" +
		"1 Filtro aceite 15.500\n" +
		"Caja pernos 4.500\n" +
		"Monto Total: 110.000\n"

	data, doc := ParseGuiaDespacho(text)
	assert.True(t, doc.Valid)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, "123456", data.NumeroGuia)
	assert.Equal(t, time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), data.FechaEmision)
	assert.True(t, decimal.NewFromInt(110000).Equal(data.Total))

	require.Len(t, data.Items, 3)
	assert.Equal(t, "Neumáticos camión", data.Items[0].Description)
	assert.True(t, decimal.NewFromInt(2).Equal(data.Items[0].Quantity))
	assert.Equal(t, "Caja pernos", data.Items[2].Description)
	assert.True(t, decimal.NewFromInt(1).Equal(data.Items[2].Quantity))
}

func TestParseGuiaDespachoTotalMismatchWarnsButStaysValid(t *testing.T) {
	text := "Guía de Despacho N°: 123456\n" +
		"Fecha Emisión: 05/08/2024\n" +
		"Detalle de Mercancías\n" +
		"2 Neumáticos camión 90.000\n" +
		"1 Filtro aceite 15.500\n" +
		"Monto Total: 120.000\n"

	_, doc := ParseGuiaDespacho(text)
	assert.True(t, doc.Valid)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "total")
}

func TestParseGuiaDespachoUnparseableRowSkipped(t *testing.T) {
	text := "Guía de Despacho N°: 123456\n" +
		"Fecha Emisión: 05/08/2024\n" +
		"Detalle de Mercancías\n" +
		"2 Neumáticos camión 90.000\n" +
		"----\n" +
		"Monto Total: 90.000\n"

	data, doc := ParseGuiaDespacho(text)
	assert.True(t, doc.Valid)
	require.Len(t, data.Items, 1)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "item row")
}

func TestParseComprobanteTransaccion(t *testing.T) {
	text := "Comprobante de Pago\n" +
		"N° de Operación: OP-2024-001\n" +
		"Fecha de Pago: 12/06/2024\n" +
		"Medio de Pago: Transferencia\n" +
		"Detalle de la Transacción\n" +
		"Derechos aduana 45.000\n" +
		"IVA importación 12.350\n" +
		"Total Pagado: $ 57.350\n"

	data, doc := ParseComprobanteTransaccion(text)
	assert.True(t, doc.Valid)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, "OP-2024-001", data.NumeroTransaccion)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), data.FechaTransaccion)
	assert.True(t, decimal.NewFromInt(57350).Equal(data.Monto))
	assert.Equal(t, "Transferencia", data.MedioPago)
	assert.Len(t, data.Items, 2)
}

func TestParseDeclaracionIngreso(t *testing.T) {
	text := "N° Identificación: 4700123456-7\n" +
		"Fecha Aceptación: 20/05/2024\n" +
		"Aduana: Metropolitana\n" +
		"Valor FOB: 5.000,00\n" +
		"Valor CIF: 5.600,50\n"

	data, doc := ParseDeclaracionIngreso(text)
	assert.True(t, doc.Valid)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, "4700123456-7", data.NumeroIdentificacion)
	assert.Equal(t, "Metropolitana", data.Aduana)
	assert.True(t, decimal.RequireFromString("5000.00").Equal(data.ValorFOB))
	assert.True(t, decimal.RequireFromString("5600.50").Equal(data.ValorCIF))
}

func TestParseDeclaracionIngresoFOBAboveCIFWarns(t *testing.T) {
	text := "N° Identificación: 4700123456-7\n" +
		"Fecha Aceptación: 20/05/2024\n" +
		"Aduana: Metropolitana\n" +
		"Valor FOB: 5.600,50\n" +
		"Valor CIF: 5.000,00\n"

	_, doc := ParseDeclaracionIngreso(text)
	assert.True(t, doc.Valid)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "valor_fob")
}

func TestParseDocumentoRecepcion(t *testing.T) {
	text := "Documento de Recepción\n" +
		"N° Recepción: REC-2024-0815\n" +
		"Fecha Recepción: 15/08/2024\n" +
		"Almacén: Extraportuario B\n" +
		"Detalle de Bultos\n" +
		"3 Cajas repuestos 120.000\n" +
		"2 Pallets neumáticos 450.000\n" +
		"Total Bultos: 5\n"

	data, doc := ParseDocumentoRecepcion(text)
	assert.True(t, doc.Valid)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, "REC-2024-0815", data.NumeroRecepcion)
	assert.Equal(t, "Extraportuario B", data.Almacen)
	assert.Equal(t, 5, data.NumeroBultos)
	assert.Len(t, data.Items, 2)
}

func TestParseDocumentoRecepcionBultosMismatchWarns(t *testing.T) {
	text := "N° Recepción: REC-2024-0815\n" +
		"Fecha Recepción: 15/08/2024\n" +
		"Detalle de Bultos\n" +
		"3 Cajas repuestos 120.000\n" +
		"2 Pallets neumáticos 450.000\n" +
		"Total Bultos: 6\n"

	_, doc := ParseDocumentoRecepcion(text)
	assert.True(t, doc.Valid)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "numero_bultos")
}

func TestParseSeleccionAforo(t *testing.T) {
	text := "Selección de Aforo\n" +
		"Declaración N°: 4700123456\n" +
		"Fecha Selección: 02/07/2024\n" +
		"Tipo de Revisión: Aforo Físico\n" +
		"Aduana: San Antonio\n"

	data, doc := ParseSeleccionAforo(text)
	assert.True(t, doc.Valid)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, "4700123456", data.NumeroDeclaracion)
	assert.Equal(t, time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC), data.FechaSeleccion)
	assert.Equal(t, "Aforo Físico", data.TipoRevision)
	assert.Equal(t, "San Antonio", data.Aduana)
}

func TestParseSeleccionAforoUnknownModalityWarns(t *testing.T) {
	text := "Declaración N°: 4700123456\n" +
		"Fecha Selección: 02/07/2024\n" +
		"Tipo de Revisión: Revisión Aleatoria\n"

	_, doc := ParseSeleccionAforo(text)
	assert.True(t, doc.Valid)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "tipo_revision")
}
