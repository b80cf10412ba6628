package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aduanatech/docextract/constants"
)

// Record schemas are a JSON-Schema (draft 2020-12 subset) rendering of
// each typed record, validated after assembly as a second line of defense
// against coercion drift. Violations become warnings, never failures.

func strProp() map[string]any {
	return map[string]any{"type": "string"}
}

func idProp(pattern string) map[string]any {
	return map[string]any{"type": "string", "minLength": 1, "pattern": pattern}
}

func dateProp() map[string]any {
	// time.Time marshals as RFC 3339
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}T`}
}

func decimalProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^-?\d+(\.\d+)?$`}
}

func intProp() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}

func itemsProp() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"description": map[string]any{"type": "string", "minLength": 1},
				"quantity":    decimalProp(),
				"amount":      decimalProp(),
			},
			"required": []string{"description", "quantity", "amount"},
		},
	}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func buildRecordSchemas() map[constants.DocumentType]map[string]any {
	return map[constants.DocumentType]map[string]any{
		constants.CarnetAduanero: objectSchema(map[string]any{
			"numero_carnet":     idProp(`^\d{3,10}(-[A-Z0-9]{1,6})?$`),
			"fecha_emision":     dateProp(),
			"fecha_vencimiento": dateProp(),
			"nombre_titular":    strProp(),
			"rut_titular":       strProp(),
			"aduana":            strProp(),
			"patente_vehiculo":  strProp(),
		}, "numero_carnet", "fecha_emision"),

		constants.ComprobanteTransaccion: objectSchema(map[string]any{
			"numero_transaccion": idProp(`^[A-Z0-9][A-Z0-9\-/]{2,19}$`),
			"fecha_transaccion":  dateProp(),
			"monto":              decimalProp(),
			"moneda":             strProp(),
			"medio_pago":         strProp(),
			"items":              itemsProp(),
		}, "numero_transaccion", "fecha_transaccion", "monto"),

		constants.DeclaracionIngreso: objectSchema(map[string]any{
			"numero_identificacion": idProp(`^\d{7,12}(-[0-9KA-Z])?$`),
			"fecha_aceptacion":      dateProp(),
			"aduana":                strProp(),
			"nombre_importador":     strProp(),
			"rut_importador":        strProp(),
			"valor_fob":             decimalProp(),
			"valor_cif":             decimalProp(),
			"total_gravamenes":      decimalProp(),
		}, "numero_identificacion", "fecha_aceptacion", "aduana"),

		constants.DocumentoRecepcion: objectSchema(map[string]any{
			"numero_recepcion": idProp(`^[A-Z0-9][A-Z0-9\-]{3,15}$`),
			"fecha_recepcion":  dateProp(),
			"almacen":          strProp(),
			"numero_bultos":    intProp(),
			"peso_bruto_kg":    decimalProp(),
			"items":            itemsProp(),
		}, "numero_recepcion", "fecha_recepcion"),

		constants.GuiaDespacho: objectSchema(map[string]any{
			"numero_guia":   idProp(`^\d{1,12}$`),
			"fecha_emision": dateProp(),
			"rut_emisor":    strProp(),
			"destinatario":  strProp(),
			"direccion":     strProp(),
			"total":         decimalProp(),
			"items":         itemsProp(),
		}, "numero_guia", "fecha_emision", "total"),

		constants.SeleccionAforo: objectSchema(map[string]any{
			"numero_declaracion":  idProp(`^\d{7,12}(-[0-9KA-Z])?$`),
			"fecha_seleccion":     dateProp(),
			"tipo_revision":       strProp(),
			"aduana":              strProp(),
			"nombre_fiscalizador": strProp(),
		}, "numero_declaracion", "fecha_seleccion", "tipo_revision"),
	}
}

var (
	schemaOnce     sync.Once
	compiledByType map[constants.DocumentType]*jsonschema.Schema
)

func schemaFor(docType constants.DocumentType) *jsonschema.Schema {
	schemaOnce.Do(func() {
		compiledByType = make(map[constants.DocumentType]*jsonschema.Schema)
		for dt, def := range buildRecordSchemas() {
			raw, err := json.Marshal(def)
			if err != nil {
				panic(fmt.Sprintf("marshal %s record schema: %v", dt, err))
			}
			sch, err := jsonschema.CompileString(string(dt)+".json", string(raw))
			if err != nil {
				panic(fmt.Sprintf("compile %s record schema: %v", dt, err))
			}
			compiledByType[dt] = sch
		}
	})
	return compiledByType[docType]
}

// validateRecord checks the assembled record against its JSON schema and
// reports violations as warnings.
func validateRecord(docType constants.DocumentType, record any) []string {
	sch := schemaFor(docType)
	if sch == nil {
		return nil
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return []string{fmt.Sprintf("record schema: marshal: %v", err)}
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return []string{fmt.Sprintf("record schema: decode: %v", err)}
	}
	if err := sch.Validate(v); err != nil {
		return []string{fmt.Sprintf("record schema: %v", err)}
	}
	return nil
}
