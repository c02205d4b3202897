package pricing

import (
	"strings"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
)

// Reference selects the price-list multiplier applied to total costs.
type Reference string

const (
	ReferenceNone      Reference = ""
	ReferenceMayorista Reference = "mayorista"
	ReferenceMinorista Reference = "minorista"
	ReferenceLlaveros  Reference = "llaveros"
)

// References lists the selectable price lists in display order.
var References = []Reference{ReferenceNone, ReferenceMayorista, ReferenceMinorista, ReferenceLlaveros}

// ParseReference maps a form value to a Reference; unknown values select none.
func ParseReference(raw string) Reference {
	switch r := Reference(strings.ToLower(strings.TrimSpace(raw))); r {
	case ReferenceMayorista, ReferenceMinorista, ReferenceLlaveros:
		return r
	default:
		return ReferenceNone
	}
}

// Multiplier returns the factor applied to total costs for the reference.
func (r Reference) Multiplier() float64 {
	switch r {
	case ReferenceMayorista:
		return 3
	case ReferenceMinorista:
		return 4
	case ReferenceLlaveros:
		return 5
	default:
		return 1
	}
}

// Label is the human-readable name of the reference.
func (r Reference) Label() string {
	switch r {
	case ReferenceMayorista:
		return "Mayorista (x3)"
	case ReferenceMinorista:
		return "Minorista (x4)"
	case ReferenceLlaveros:
		return "Llaveros (x5)"
	default:
		return "Sin referencia (x1)"
	}
}

// Inputs are the locally edited values combined with a server breakdown.
type Inputs struct {
	Units         int
	FX            float64 // ARS per USD
	CommissionPct float64 // 0-100
	Reference     Reference
	Extras        []domain.Extra
}

// ExtraLine is an extra charge scaled by its unit factor.
type ExtraLine struct {
	Extra  domain.Extra
	Factor float64
	ARS    float64
	USD    *float64
}

// Totals contains the presentational values derived from a breakdown. Nil
// pointers mark values whose denominator was zero.
type Totals struct {
	MaterialARS          float64
	ElectricidadARS      float64
	DesgasteARS          float64
	MargenErrorARS       float64
	OtrosARS             float64
	CostoProduccionARS   float64
	TotalCostosARS       float64
	Multiplier           float64
	TotalACobrarARS      float64
	PrecioConComisionARS float64
	PrecioCalculadoARS   float64
	PrecioFinalARS       float64
	PrecioFinalUSD       *float64
	UnitARS              *float64
	UnitUSD              *float64
	ExtrasTotalARS       float64
	ExtrasTotalUSD       *float64
	ExtraLines           []ExtraLine
	PctMaterial          *float64
	PctMargenError       *float64
	PctGanancia          *float64
}

// Compute derives display totals from the server breakdown b. Optional server
// aggregates take precedence; when absent the local formula is used instead
// of treating the value as zero.
func Compute(b domain.CostBreakdown, in Inputs) Totals {
	fx := in.FX
	if fx <= 0 {
		fx = 1
	}

	var t Totals
	t.MaterialARS = (b.CostoMaterialesUSD + b.CostoDesperdicioUSD) * fx
	t.ElectricidadARS = deref(b.CostoElectricidadUSD) * fx
	t.DesgasteARS = b.CostoMaquinasUSD * fx
	t.MargenErrorARS = deref(b.CostoSeguroFallosUSD) * fx
	t.OtrosARS = (b.CostoGastosFijosUSD + deref(b.CostoLaborUSD) + b.CostoTrabajadoresUSD) * fx
	t.CostoProduccionARS = t.MaterialARS + t.ElectricidadARS + t.DesgasteARS + t.MargenErrorARS

	base := b.CostoTotalUSD
	if b.CostoBaseUSD != nil {
		base = *b.CostoBaseUSD
	}
	t.TotalCostosARS = orElse(b.TotalCostosARS, base*fx)

	t.Multiplier = in.Reference.Multiplier()
	if b.ReferenciaMultiplicador != nil {
		t.Multiplier = *b.ReferenciaMultiplicador
	}
	t.TotalACobrarARS = orElse(b.TotalACobrarARS, t.TotalCostosARS*t.Multiplier)
	t.PrecioConComisionARS = orElse(b.PrecioConComisionARS, t.TotalACobrarARS*(1+in.CommissionPct/100))
	t.PrecioCalculadoARS = orElse(b.PrecioCalculadoARS, b.CostoSugeridoTotalLocal)
	t.PrecioFinalARS = orElse(b.PrecioFinalARS, t.TotalACobrarARS)

	t.ExtraLines = ExtraLines(in.Extras, in.Units, in.FX)
	var localExtras float64
	for _, l := range t.ExtraLines {
		localExtras += l.ARS
	}
	t.ExtrasTotalARS = orElse(b.AdicionalesTotalARS, localExtras)
	switch {
	case b.AdicionalesTotalUSD != nil:
		t.ExtrasTotalUSD = ptr(*b.AdicionalesTotalUSD)
	case in.FX > 0:
		t.ExtrasTotalUSD = ptr(t.ExtrasTotalARS / in.FX)
	}

	if in.FX > 0 {
		t.PrecioFinalUSD = ptr(t.PrecioFinalARS / in.FX)
	}
	if in.Units > 0 {
		t.UnitARS = ptr(t.PrecioFinalARS / float64(in.Units))
		if in.FX > 0 {
			t.UnitUSD = ptr(*t.UnitARS / in.FX)
		}
	}

	if t.TotalACobrarARS > 0 {
		t.PctMaterial = ptr(t.MaterialARS / t.TotalACobrarARS * 100)
		t.PctMargenError = ptr(t.MargenErrorARS / t.TotalACobrarARS * 100)
		t.PctGanancia = ptr((t.TotalACobrarARS - t.TotalCostosARS) / t.TotalACobrarARS * 100)
	}
	return t
}

// ExtraLines scales every extra by units when it is per unit and converts it
// to ARS with fx. A non-positive fx converts USD extras at 1, the same
// fallback Compute applies to the breakdown, and leaves the USD amount of
// ARS extras nil.
func ExtraLines(extras []domain.Extra, units int, fx float64) []ExtraLine {
	rate := fx
	if rate <= 0 {
		rate = 1
	}
	lines := make([]ExtraLine, 0, len(extras))
	for _, e := range extras {
		factor := 1.0
		if e.PorUnidad {
			factor = float64(units)
		}
		amount := money.Amount{Currency: e.Moneda, Value: e.Monto * factor}
		line := ExtraLine{Extra: e, Factor: factor, ARS: amount.ToARS(rate)}
		switch {
		case amount.Currency == money.USD:
			line.USD = ptr(amount.Value)
		case fx > 0:
			line.USD = ptr(amount.ToUSD(fx))
		}
		lines = append(lines, line)
	}
	return lines
}

// PrepareExtras trims concepts and drops rows that have no concept or a
// non-positive amount. Rows without a currency default to ARS.
func PrepareExtras(extras []domain.Extra) []domain.Extra {
	out := make([]domain.Extra, 0, len(extras))
	for _, e := range extras {
		e.Concepto = strings.TrimSpace(e.Concepto)
		if e.Concepto == "" || e.Monto <= 0 {
			continue
		}
		if e.Moneda == "" {
			e.Moneda = money.ARS
		}
		out = append(out, e)
	}
	return out
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func orElse(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func ptr(v float64) *float64 { return &v }
