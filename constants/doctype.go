package constants

// DocumentType identifies one of the supported customs document layouts.
type DocumentType string

const (
	CarnetAduanero         DocumentType = "CARNET_ADUANERO"
	ComprobanteTransaccion DocumentType = "COMPROBANTE_TRANSACCION"
	DeclaracionIngreso     DocumentType = "DECLARACION_INGRESO"
	DocumentoRecepcion     DocumentType = "DOCUMENTO_RECEPCION"
	GuiaDespacho           DocumentType = "GUIA_DESPACHO"
	SeleccionAforo         DocumentType = "SELECCION_AFORO"
)

// DocumentTypes lists every supported type in a stable order.
var DocumentTypes = []DocumentType{
	CarnetAduanero,
	ComprobanteTransaccion,
	DeclaracionIngreso,
	DocumentoRecepcion,
	GuiaDespacho,
	SeleccionAforo,
}

func (t DocumentType) String() string { return string(t) }
