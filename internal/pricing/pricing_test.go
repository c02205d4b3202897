package pricing

import (
	"math"
	"testing"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func nearlyEqualPtr(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %v", name, want)
	}
	nearlyEqual(t, name, *got, want)
}

func f(v float64) *float64 { return &v }

func baseBreakdown() domain.CostBreakdown {
	return domain.CostBreakdown{
		CostoMaquinasUSD:        2,
		CostoTrabajadoresUSD:    1,
		CostoMaterialesUSD:      3,
		CostoDesperdicioUSD:     1,
		CostoGastosFijosUSD:     0.5,
		CostoElectricidadUSD:    f(0.5),
		CostoSeguroFallosUSD:    f(1),
		CostoBaseUSD:            f(10),
		CostoTotalUSD:           9,
		CostoSugeridoTotalLocal: 12000,
	}
}

func TestCompute_FallbackFormulas(t *testing.T) {
	totals := Compute(baseBreakdown(), Inputs{
		Units:         4,
		FX:            1000,
		CommissionPct: 18,
		Reference:     ReferenceMinorista,
	})

	nearlyEqual(t, "material", totals.MaterialARS, 4000)
	nearlyEqual(t, "electricidad", totals.ElectricidadARS, 500)
	nearlyEqual(t, "desgaste", totals.DesgasteARS, 2000)
	nearlyEqual(t, "margenError", totals.MargenErrorARS, 1000)
	nearlyEqual(t, "otros", totals.OtrosARS, 1500)
	nearlyEqual(t, "costoProduccion", totals.CostoProduccionARS, 7500)
	nearlyEqual(t, "totalCostos", totals.TotalCostosARS, 10000)
	nearlyEqual(t, "multiplier", totals.Multiplier, 4)
	nearlyEqual(t, "totalACobrar", totals.TotalACobrarARS, 40000)
	nearlyEqual(t, "precioConComision", totals.PrecioConComisionARS, 47200)
	nearlyEqual(t, "precioCalculado", totals.PrecioCalculadoARS, 12000)
	nearlyEqual(t, "precioFinal", totals.PrecioFinalARS, 40000)
	nearlyEqualPtr(t, "precioFinalUSD", totals.PrecioFinalUSD, 40)
	nearlyEqualPtr(t, "unitARS", totals.UnitARS, 10000)
	nearlyEqualPtr(t, "unitUSD", totals.UnitUSD, 10)
	nearlyEqualPtr(t, "pctMaterial", totals.PctMaterial, 10)
	nearlyEqualPtr(t, "pctMargenError", totals.PctMargenError, 2.5)
	nearlyEqualPtr(t, "pctGanancia", totals.PctGanancia, 75)
}

func TestCompute_ServerValuesWin(t *testing.T) {
	b := baseBreakdown()
	b.TotalCostosARS = f(11000)
	b.ReferenciaMultiplicador = f(3)
	b.TotalACobrarARS = f(30000)
	b.PrecioConComisionARS = f(35000)
	b.PrecioFinalARS = f(36000)
	b.PrecioCalculadoARS = f(33000)
	b.AdicionalesTotalARS = f(700)
	b.AdicionalesTotalUSD = f(0.7)

	totals := Compute(b, Inputs{Units: 2, FX: 1000, CommissionPct: 50, Reference: ReferenceLlaveros})

	nearlyEqual(t, "totalCostos", totals.TotalCostosARS, 11000)
	nearlyEqual(t, "multiplier", totals.Multiplier, 3)
	nearlyEqual(t, "totalACobrar", totals.TotalACobrarARS, 30000)
	nearlyEqual(t, "precioConComision", totals.PrecioConComisionARS, 35000)
	nearlyEqual(t, "precioFinal", totals.PrecioFinalARS, 36000)
	nearlyEqual(t, "precioCalculado", totals.PrecioCalculadoARS, 33000)
	nearlyEqual(t, "extrasARS", totals.ExtrasTotalARS, 700)
	nearlyEqualPtr(t, "extrasUSD", totals.ExtrasTotalUSD, 0.7)
	nearlyEqualPtr(t, "unitARS", totals.UnitARS, 18000)
}

func TestCompute_ZeroServerAggregateIsNotMissing(t *testing.T) {
	b := baseBreakdown()
	b.TotalACobrarARS = f(0)

	totals := Compute(b, Inputs{Units: 1, FX: 1000, Reference: ReferenceMayorista})

	nearlyEqual(t, "totalACobrar", totals.TotalACobrarARS, 0)
	if totals.PctMaterial != nil || totals.PctMargenError != nil || totals.PctGanancia != nil {
		t.Fatalf("percentages must be nil when total a cobrar is zero: %+v", totals)
	}
}

func TestCompute_ZeroUnitsYieldsNilUnitPrice(t *testing.T) {
	totals := Compute(baseBreakdown(), Inputs{Units: 0, FX: 1000})

	if totals.UnitARS != nil {
		t.Fatalf("unitARS = %v, want nil", *totals.UnitARS)
	}
	if totals.UnitUSD != nil {
		t.Fatalf("unitUSD = %v, want nil", *totals.UnitUSD)
	}
}

func TestCompute_NonPositiveFX(t *testing.T) {
	totals := Compute(baseBreakdown(), Inputs{Units: 2, FX: 0})

	nearlyEqual(t, "totalCostos", totals.TotalCostosARS, 10)
	nearlyEqualPtr(t, "unitARS", totals.UnitARS, 5)
	if totals.UnitUSD != nil || totals.PrecioFinalUSD != nil {
		t.Fatalf("USD values must be nil without an exchange rate")
	}
}

func TestCompute_BaseFallsBackToTotal(t *testing.T) {
	b := baseBreakdown()
	b.CostoBaseUSD = nil

	totals := Compute(b, Inputs{Units: 1, FX: 100})

	nearlyEqual(t, "totalCostos", totals.TotalCostosARS, 900)
	nearlyEqual(t, "totalACobrar", totals.TotalACobrarARS, 900)
}

func TestExtraLines_PerUnitUSD(t *testing.T) {
	lines := ExtraLines([]domain.Extra{
		{Concepto: "Pintura", Moneda: money.USD, Monto: 10, PorUnidad: true},
	}, 3, 1000)

	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1", len(lines))
	}
	nearlyEqual(t, "factor", lines[0].Factor, 3)
	nearlyEqual(t, "ars", lines[0].ARS, 30000)
	nearlyEqualPtr(t, "usd", lines[0].USD, 30)
}

func TestExtraLines_OnceARS(t *testing.T) {
	lines := ExtraLines([]domain.Extra{
		{Concepto: "Envío", Moneda: money.ARS, Monto: 5000},
	}, 3, 1000)

	nearlyEqual(t, "factor", lines[0].Factor, 1)
	nearlyEqual(t, "ars", lines[0].ARS, 5000)
	nearlyEqualPtr(t, "usd", lines[0].USD, 5)
}

func TestExtraLines_NonPositiveFXConvertsAtOne(t *testing.T) {
	lines := ExtraLines([]domain.Extra{
		{Concepto: "Pintura", Moneda: money.USD, Monto: 4, PorUnidad: true},
		{Concepto: "Envío", Moneda: money.ARS, Monto: 500},
	}, 2, 0)

	nearlyEqual(t, "usd extra ars", lines[0].ARS, 8)
	nearlyEqualPtr(t, "usd extra usd", lines[0].USD, 8)
	nearlyEqual(t, "ars extra ars", lines[1].ARS, 500)
	if lines[1].USD != nil {
		t.Fatalf("ARS extra must have no USD amount without an exchange rate, got %v", *lines[1].USD)
	}
}

func TestCompute_ExtrasFallbackSumsLines(t *testing.T) {
	totals := Compute(baseBreakdown(), Inputs{
		Units: 2,
		FX:    1000,
		Extras: []domain.Extra{
			{Concepto: "Pintura", Moneda: money.USD, Monto: 1, PorUnidad: true},
			{Concepto: "Envío", Moneda: money.ARS, Monto: 500},
		},
	})

	nearlyEqual(t, "extrasARS", totals.ExtrasTotalARS, 2500)
	nearlyEqualPtr(t, "extrasUSD", totals.ExtrasTotalUSD, 2.5)
}

func TestPrepareExtras(t *testing.T) {
	got := PrepareExtras([]domain.Extra{
		{Concepto: "  Caja  ", Monto: 100},
		{Concepto: "", Moneda: money.USD, Monto: 5},
		{Concepto: "Gratis", Moneda: money.USD, Monto: 0},
		{Concepto: "Negativo", Moneda: money.ARS, Monto: -1},
	})

	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Concepto != "Caja" || got[0].Moneda != money.ARS {
		t.Fatalf("got %+v", got[0])
	}
}

func TestParseReference(t *testing.T) {
	cases := map[string]Reference{
		"":          ReferenceNone,
		"Mayorista": ReferenceMayorista,
		"minorista": ReferenceMinorista,
		" llaveros": ReferenceLlaveros,
		"otro":      ReferenceNone,
	}
	for raw, want := range cases {
		if got := ParseReference(raw); got != want {
			t.Fatalf("ParseReference(%q) = %q, want %q", raw, got, want)
		}
	}
}
