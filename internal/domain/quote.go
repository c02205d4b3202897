package domain

import (
	"time"

	"github.com/Simplici0/cotizador3d/internal/money"
)

// CostBreakdown is the server-computed result of POST /costs/calculate. All
// *_usd fields are in USD; pointer fields may be omitted by older backends.
type CostBreakdown struct {
	CostoMaquinasUSD         float64  `json:"costo_maquinas_usd"`
	CostoTrabajadoresUSD     float64  `json:"costo_trabajadores_usd"`
	CostoMaterialesUSD       float64  `json:"costo_materiales_usd"`
	CostoDesperdicioUSD      float64  `json:"costo_desperdicio_usd"`
	CostoGastosFijosUSD      float64  `json:"costo_gastos_fijos_usd"`
	CostoElectricidadUSD     *float64 `json:"costo_electricidad_usd,omitempty"`
	CostoSeguroFallosUSD     *float64 `json:"costo_seguro_fallos_usd,omitempty"`
	CostoBaseUSD             *float64 `json:"costo_base_usd,omitempty"`
	CostoTotalUSD            float64  `json:"costo_total_usd"`
	CostoUnitarioUSD         float64  `json:"costo_unitario_usd"`
	CostoSugeridoTotalUSD    float64  `json:"costo_sugerido_total_usd"`
	CostoSugeridoUnitarioUSD float64  `json:"costo_sugerido_unitario_usd"`
	CostoSugeridoTotalLocal  float64  `json:"costo_sugerido_total_local"`
	CostoSugeridoUnitarioLoc float64  `json:"costo_sugerido_unitario_local"`
	ComisionPlataformaUSD    *float64 `json:"comision_plataforma_usd,omitempty"`
	CostoLaborUSD            *float64 `json:"costo_labor_usd,omitempty"`
	PrecioCalculadoARS       *float64 `json:"precio_calculado_ars,omitempty"`
	PrecioFinalARS           *float64 `json:"precio_final_ars,omitempty"`
	AdicionalesTotalARS      *float64 `json:"adicionales_total_ars,omitempty"`
	AdicionalesTotalUSD      *float64 `json:"adicionales_total_usd,omitempty"`
	ReferenciaTipo           *string  `json:"referencia_tipo,omitempty"`
	ReferenciaMultiplicador  *float64 `json:"referencia_multiplicador,omitempty"`
	PrecioFinalReferenciaARS *float64 `json:"precio_final_referencia_ars,omitempty"`
	PrecioFinalReferenciaUSD *float64 `json:"precio_final_referencia_usd,omitempty"`
	TotalCostosARS           *float64 `json:"total_costos_ars,omitempty"`
	TotalACobrarARS          *float64 `json:"total_a_cobrar_ars,omitempty"`
	PrecioConComisionARS     *float64 `json:"precio_con_comision_ars,omitempty"`
	MargenRealPct            *float64 `json:"margen_real_pct,omitempty"`
	MinimoAplicado           *bool    `json:"minimo_aplicado,omitempty"`
	TarifaManoObraUSDPorHora *float64 `json:"tarifa_mano_obra_usd_h,omitempty"`
	MinimoTrabajoARS         *float64 `json:"minimo_trabajo_ars,omitempty"`
}

// MaterialUsage is one material row of a calculation request.
type MaterialUsage struct {
	IDMaterial    int64   `json:"id_material"`
	CantidadUsada float64 `json:"cantidad_usada"`
	Desperdicio   float64 `json:"desperdicio"`
}

// Extra is an additive charge on a quote, once per job or per unit.
type Extra struct {
	Concepto  string         `json:"concepto"`
	Moneda    money.Currency `json:"moneda"`
	Monto     float64        `json:"monto"`
	PorUnidad bool           `json:"por_unidad"`
}

// CalculateRequest is the body of POST /costs/calculate.
type CalculateRequest struct {
	HorasImpresion           float64         `json:"horas_impresion"`
	MaquinasIDs              []int64         `json:"maquinas_ids"`
	TrabajadoresIDs          []int64         `json:"trabajadores_ids"`
	Materiales               []MaterialUsage `json:"materiales"`
	ValorDolar               *float64        `json:"valor_dolar,omitempty"`
	CantidadUnidades         int             `json:"cantidad_unidades"`
	Beneficio                *float64        `json:"beneficio,omitempty"`
	TiempoPreparacionMinutos *float64        `json:"tiempo_preparacion_minutos,omitempty"`
	TiempoPostProcesoMinutos *float64        `json:"tiempo_post_proceso_minutos,omitempty"`
	TiempoDisenioHoras       *float64        `json:"tiempo_disenio_horas,omitempty"`
	MinimoTrabajoARS         *float64        `json:"minimo_trabajo_ars,omitempty"`
	TarifaManoObraUSDPorHora *float64        `json:"tarifa_mano_obra_usd_h,omitempty"`
	ComisionPlataformaPct    float64         `json:"comision_plataforma_pct"`
	ReferenciaTipo           string          `json:"referencia_tipo,omitempty"`
	Adicionales              []Extra         `json:"adicionales"`
}

// PrintExtra is an extra as persisted with a saved print.
type PrintExtra struct {
	ID            int64          `json:"id"`
	Concepto      string         `json:"concepto"`
	Moneda        money.Currency `json:"moneda"`
	Monto         float64        `json:"monto"`
	PorUnidad     bool           `json:"por_unidad"`
	MontoTotalARS float64        `json:"monto_total_ars"`
	MontoTotalUSD float64        `json:"monto_total_usd"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Print is the canonical record of a saved quote.
type Print struct {
	ID                       int64        `json:"id"`
	Nombre                   string       `json:"nombre"`
	Descripcion              *string      `json:"descripcion,omitempty"`
	HorasImpresion           float64      `json:"horas_impresion"`
	CantidadUnidades         int          `json:"cantidad_unidades"`
	PorcentajeDesperdicio    float64      `json:"porcentaje_desperdicio"`
	MargenBeneficio          float64      `json:"margen_beneficio"`
	MachineID                int64        `json:"machine_id"`
	WorkerID                 *int64       `json:"worker_id"`
	MaterialID               int64        `json:"material_id"`
	CantidadMaterialGramos   float64      `json:"cantidad_material_gramos"`
	CostoMaquinasUSD         float64      `json:"costo_maquinas_usd"`
	CostoTrabajadoresUSD     float64      `json:"costo_trabajadores_usd"`
	CostoMaterialesUSD       float64      `json:"costo_materiales_usd"`
	CostoDesperdicioUSD      float64      `json:"costo_desperdicio_usd"`
	CostoTotalUSD            float64      `json:"costo_total_usd"`
	CostoUnitarioUSD         float64      `json:"costo_unitario_usd"`
	CostoSugeridoTotalUSD    float64      `json:"costo_sugerido_total_usd"`
	CostoSugeridoUnitarioUSD float64      `json:"costo_sugerido_unitario_usd"`
	CostoSugeridoTotalLocal  float64      `json:"costo_sugerido_total_local"`
	CostoSugeridoUnitarioLoc float64      `json:"costo_sugerido_unitario_local"`
	TarifaManoObraUSDPorHora float64      `json:"tarifa_mano_obra_usd_h"`
	CostoLaborUSD            float64      `json:"costo_labor_usd"`
	MinimoTrabajoARS         float64      `json:"minimo_trabajo_ars"`
	PrecioCalculadoARS       float64      `json:"precio_calculado_ars"`
	PrecioFinalARS           float64      `json:"precio_final_ars"`
	ReferenciaTipo           *string      `json:"referencia_tipo"`
	ReferenciaMultiplicador  float64      `json:"referencia_multiplicador"`
	PrecioFinalReferenciaARS float64      `json:"precio_final_referencia_ars"`
	PrecioFinalReferenciaUSD float64      `json:"precio_final_referencia_usd"`
	ValorDolar               float64      `json:"valor_dolar"`
	PrecioVentaARS           *float64     `json:"precio_venta_ars,omitempty"`
	GananciaARS              *float64     `json:"ganancia_ars,omitempty"`
	GananciaUSD              *float64     `json:"ganancia_usd,omitempty"`
	MargenGananciaPct        *float64     `json:"margen_ganancia_pct,omitempty"`
	CreatedAt                time.Time    `json:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at"`
	Machine                  *Machine     `json:"machine,omitempty"`
	Worker                   *Worker      `json:"worker,omitempty"`
	Material                 *Material    `json:"material,omitempty"`
	Extras                   []PrintExtra `json:"extras,omitempty"`
}

// PrintDraft holds the user-entered part of a print; the cost fields are
// copied from a CostBreakdown by NewPrintFromCalculation.
type PrintDraft struct {
	Nombre                 string
	Descripcion            *string
	HorasImpresion         float64
	CantidadUnidades       int
	PorcentajeDesperdicio  float64
	MargenBeneficio        float64
	MachineID              int64
	WorkerID               *int64
	MaterialID             int64
	CantidadMaterialGramos float64
	Extras                 []Extra
}

// CreatePrint is the body of POST /prints.
type CreatePrint struct {
	Nombre                   string   `json:"nombre"`
	Descripcion              *string  `json:"descripcion,omitempty"`
	HorasImpresion           float64  `json:"horas_impresion"`
	CantidadUnidades         int      `json:"cantidad_unidades"`
	PorcentajeDesperdicio    float64  `json:"porcentaje_desperdicio"`
	MargenBeneficio          float64  `json:"margen_beneficio"`
	MachineID                int64    `json:"machine_id"`
	WorkerID                 *int64   `json:"worker_id"`
	MaterialID               int64    `json:"material_id"`
	CantidadMaterialGramos   float64  `json:"cantidad_material_gramos"`
	CostoMaquinasUSD         float64  `json:"costo_maquinas_usd"`
	CostoTrabajadoresUSD     float64  `json:"costo_trabajadores_usd"`
	CostoMaterialesUSD       float64  `json:"costo_materiales_usd"`
	CostoDesperdicioUSD      float64  `json:"costo_desperdicio_usd"`
	CostoTotalUSD            float64  `json:"costo_total_usd"`
	CostoUnitarioUSD         float64  `json:"costo_unitario_usd"`
	CostoSugeridoTotalUSD    float64  `json:"costo_sugerido_total_usd"`
	CostoSugeridoUnitarioUSD float64  `json:"costo_sugerido_unitario_usd"`
	CostoSugeridoTotalLocal  float64  `json:"costo_sugerido_total_local"`
	CostoSugeridoUnitarioLoc float64  `json:"costo_sugerido_unitario_local"`
	TarifaManoObraUSDPorHora float64  `json:"tarifa_mano_obra_usd_h"`
	CostoLaborUSD            float64  `json:"costo_labor_usd"`
	MinimoTrabajoARS         float64  `json:"minimo_trabajo_ars"`
	PrecioCalculadoARS       float64  `json:"precio_calculado_ars"`
	PrecioFinalARS           float64  `json:"precio_final_ars"`
	ReferenciaTipo           *string  `json:"referencia_tipo,omitempty"`
	ReferenciaMultiplicador  *float64 `json:"referencia_multiplicador,omitempty"`
	ValorDolar               float64  `json:"valor_dolar"`
	Extras                   []Extra  `json:"extras,omitempty"`
}

// UpdatePrint is the body of PUT /prints/{id}: the editable user fields.
// A nil WorkerID clears the worker.
type UpdatePrint struct {
	Nombre                 string   `json:"nombre"`
	Descripcion            *string  `json:"descripcion"`
	HorasImpresion         float64  `json:"horas_impresion"`
	CantidadUnidades       int      `json:"cantidad_unidades"`
	PorcentajeDesperdicio  float64  `json:"porcentaje_desperdicio"`
	MargenBeneficio        float64  `json:"margen_beneficio"`
	MachineID              int64    `json:"machine_id"`
	WorkerID               *int64   `json:"worker_id"`
	MaterialID             int64    `json:"material_id"`
	CantidadMaterialGramos float64  `json:"cantidad_material_gramos"`
	PrecioVentaARS         *float64 `json:"precio_venta_ars,omitempty"`
}

// NewPrintFromCalculation merges a draft with the breakdown it was quoted
// with. Missing optional breakdown values fall back the same way the quote
// page does.
func NewPrintFromCalculation(d PrintDraft, b CostBreakdown, valorDolar float64) CreatePrint {
	precioCalculado := b.CostoSugeridoTotalLocal
	if b.PrecioCalculadoARS != nil {
		precioCalculado = *b.PrecioCalculadoARS
	}
	precioFinal := b.CostoSugeridoTotalLocal
	if b.PrecioFinalARS != nil {
		precioFinal = *b.PrecioFinalARS
	}
	return CreatePrint{
		Nombre:                   d.Nombre,
		Descripcion:              d.Descripcion,
		HorasImpresion:           d.HorasImpresion,
		CantidadUnidades:         d.CantidadUnidades,
		PorcentajeDesperdicio:    d.PorcentajeDesperdicio,
		MargenBeneficio:          d.MargenBeneficio,
		MachineID:                d.MachineID,
		WorkerID:                 d.WorkerID,
		MaterialID:               d.MaterialID,
		CantidadMaterialGramos:   d.CantidadMaterialGramos,
		CostoMaquinasUSD:         b.CostoMaquinasUSD,
		CostoTrabajadoresUSD:     b.CostoTrabajadoresUSD,
		CostoMaterialesUSD:       b.CostoMaterialesUSD,
		CostoDesperdicioUSD:      b.CostoDesperdicioUSD,
		CostoTotalUSD:            b.CostoTotalUSD,
		CostoUnitarioUSD:         b.CostoUnitarioUSD,
		CostoSugeridoTotalUSD:    b.CostoSugeridoTotalUSD,
		CostoSugeridoUnitarioUSD: b.CostoSugeridoUnitarioUSD,
		CostoSugeridoTotalLocal:  b.CostoSugeridoTotalLocal,
		CostoSugeridoUnitarioLoc: b.CostoSugeridoUnitarioLoc,
		TarifaManoObraUSDPorHora: valueOr(b.TarifaManoObraUSDPorHora, 0),
		CostoLaborUSD:            valueOr(b.CostoLaborUSD, 0),
		MinimoTrabajoARS:         valueOr(b.MinimoTrabajoARS, 0),
		PrecioCalculadoARS:       precioCalculado,
		PrecioFinalARS:           precioFinal,
		ReferenciaTipo:           b.ReferenciaTipo,
		ReferenciaMultiplicador:  b.ReferenciaMultiplicador,
		ValorDolar:               valorDolar,
		Extras:                   d.Extras,
	}
}

// PrintSummary aggregates saved prints over a date range.
type PrintSummary struct {
	PrintsCount         int     `json:"prints_count"`
	UnitsTotal          int     `json:"units_total"`
	HoursTotal          float64 `json:"hours_total"`
	VentasARSTotal      float64 `json:"ventas_ars_total"`
	VentasUSDTotal      float64 `json:"ventas_usd_total"`
	CostosUSDTotal      float64 `json:"costos_usd_total"`
	CostosARSTotal      float64 `json:"costos_ars_total"`
	EmpleadosUSDTotal   float64 `json:"empleados_usd_total"`
	EmpleadosARSTotal   float64 `json:"empleados_ars_total"`
	GastosUSDTotal      float64 `json:"gastos_usd_total"`
	GastosARSTotal      float64 `json:"gastos_ars_total"`
	GananciaUSDTotal    float64 `json:"ganancia_usd_total"`
	GananciaARSTotal    float64 `json:"ganancia_ars_total"`
	AdicionalesARSTotal float64 `json:"adicionales_ars_total"`
	AdicionalesUSDTotal float64 `json:"adicionales_usd_total"`
	CargoFijoARSTotal   float64 `json:"cargo_fijo_ars_total"`
}

// SummaryFilter narrows GET /prints/summary.
type SummaryFilter struct {
	StartDate    string
	EndDate      string
	IncludeLabor *bool
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
