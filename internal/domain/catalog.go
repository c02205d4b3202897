package domain

import (
	"encoding/json"
	"time"

	"github.com/Simplici0/cotizador3d/internal/money"
)

// Machine holds the amortization inputs of a printer.
type Machine struct {
	ID                 int64   `json:"id"`
	Nombre             string  `json:"nombre"`
	Costo              float64 `json:"costo"`
	VidaUtilAnios      float64 `json:"vida_util_anios"`
	CostoMantenimiento float64 `json:"costo_mantenimiento"`
}

// MachineInput is the create/update body for machines.
type MachineInput struct {
	Nombre             string  `json:"nombre"`
	Costo              float64 `json:"costo"`
	VidaUtilAnios      float64 `json:"vida_util_anios"`
	CostoMantenimiento float64 `json:"costo_mantenimiento"`
}

// Worker is a person whose time is billed. FactorTrabajo is the effective
// time fraction in (0, 1].
type Worker struct {
	ID            int64   `json:"id"`
	Nombre        string  `json:"nombre"`
	CostoPorHora  float64 `json:"costo_por_hora"`
	FactorTrabajo float64 `json:"factor_trabajo"`
	Rol           *string `json:"rol"`
}

// WorkerInput is the create/update body for workers. An ARS hourly cost is
// sent as costo_por_hora_local and converted by the backend.
type WorkerInput struct {
	Nombre        string
	CostoPorHora  money.Amount
	FactorTrabajo float64
	Rol           *string
}

func (in WorkerInput) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"nombre":         in.Nombre,
		"factor_trabajo": in.FactorTrabajo,
		"rol":            in.Rol,
	}
	in.CostoPorHora.Put(body, "costo_por_hora", "costo_por_hora_local")
	return json.Marshal(body)
}

// Material is a consumable. Quantities are always stored in grams.
type Material struct {
	ID                 int64   `json:"id"`
	Nombre             string  `json:"nombre"`
	UnidadDeMedida     string  `json:"unidad_de_medida"`
	CantidadDeMaterial float64 `json:"cantidad_de_material"`
	CostoPorUnidad     float64 `json:"costo_por_unidad"`
	CostoPorGramo      float64 `json:"costo_por_gramo"`
}

// MaterialInput is the create/update body for materials; the backend derives
// the USD costs from the *_local fields.
type MaterialInput struct {
	Nombre              string  `json:"nombre"`
	UnidadDeMedida      string  `json:"unidad_de_medida"`
	CantidadDeMaterial  float64 `json:"cantidad_de_material"`
	CostoPorUnidadLocal float64 `json:"costo_por_unidad_local"`
	CostoPorGramoLocal  float64 `json:"costo_por_gramo_local"`
}

const (
	UnitGrams     = "gramos"
	UnitKilograms = "kilogramos"
)

// NewMaterialInput normalizes the quantity to grams and derives the local
// cost per gram from the cost of the whole unit.
func NewMaterialInput(nombre, unidad string, cantidad, costoUnidadLocal float64) MaterialInput {
	grams := cantidad
	if unidad == UnitKilograms {
		grams = cantidad * 1000
	}
	var perGram float64
	if grams > 0 {
		perGram = costoUnidadLocal / grams
	}
	return MaterialInput{
		Nombre:              nombre,
		UnidadDeMedida:      UnitGrams,
		CantidadDeMaterial:  grams,
		CostoPorUnidadLocal: costoUnidadLocal,
		CostoPorGramoLocal:  perGram,
	}
}

// Setting is a generic numeric key/value entry.
type Setting struct {
	ID          int64   `json:"id"`
	Key         string  `json:"key"`
	Value       float64 `json:"value"`
	Description *string `json:"description,omitempty"`
}

// SettingInput is the create/update body for settings.
type SettingInput struct {
	Key         string  `json:"key"`
	Value       float64 `json:"value"`
	Description *string `json:"description,omitempty"`
}

// CurrencyRate is an ARS-per-USD quote fetched by the backend.
type CurrencyRate struct {
	ID        int64     `json:"id"`
	Currency  string    `json:"currency"`
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// FixedExpense is a monthly expense prorated into quotes.
type FixedExpense struct {
	ID        int64     `json:"id"`
	TipoGasto string    `json:"tipo_gasto"`
	MontoUSD  float64   `json:"monto_usd"`
	Categoria *string   `json:"categoria"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FixedExpenseInput sends either monto_usd or monto_ars depending on the
// currency of Monto.
type FixedExpenseInput struct {
	TipoGasto string
	Categoria *string
	Monto     money.Amount
}

func (in FixedExpenseInput) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"tipo_gasto": in.TipoGasto,
		"categoria":  in.Categoria,
	}
	in.Monto.Put(body, "monto_usd", "monto_ars")
	return json.Marshal(body)
}

// Salary is a monthly salary per worker type, stored in USD.
type Salary struct {
	ID             int64     `json:"id"`
	TipoTrabajador string    `json:"tipo_trabajador"`
	SalarioMensual float64   `json:"salario_mensual"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SalaryInput sends either salario_mensual or salario_mensual_ars.
type SalaryInput struct {
	TipoTrabajador string
	SalarioMensual money.Amount
}

func (in SalaryInput) MarshalJSON() ([]byte, error) {
	body := map[string]any{"tipo_trabajador": in.TipoTrabajador}
	in.SalarioMensual.Put(body, "salario_mensual", "salario_mensual_ars")
	return json.Marshal(body)
}

// Model3D is a catalog entry for a printable model.
type Model3D struct {
	ID             int64   `json:"id"`
	Nombre         string  `json:"nombre"`
	DimensionX     float64 `json:"dimension_x"`
	DimensionY     float64 `json:"dimension_y"`
	DimensionZ     float64 `json:"dimension_z"`
	HorasEstimadas float64 `json:"horas_estimadas"`
}

// Model3DInput is the create/update body for 3D models.
type Model3DInput struct {
	Nombre         string  `json:"nombre"`
	DimensionX     float64 `json:"dimension_x"`
	DimensionY     float64 `json:"dimension_y"`
	DimensionZ     float64 `json:"dimension_z"`
	HorasEstimadas float64 `json:"horas_estimadas"`
}
