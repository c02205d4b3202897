package main

import (
	"encoding/json"
	"errors"
	"net/url"
	"slices"
	"testing"

	"github.com/Simplici0/cotizador3d/internal/apiclient"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/pricing"
	"github.com/Simplici0/cotizador3d/internal/store"
)

var testDefaults = store.QuoteDefaults{CommissionPct: 18, DollarValue: 900}

func validQuoteValues() url.Values {
	return url.Values{
		"nombre":            {"Llavero logo"},
		"horas_impresion":   {"1,5"},
		"cantidad_unidades": {"10"},
		"maquinas_ids":      {"2", "2", "5"},
		"trabajadores_ids":  {"7"},
		"material_id":       {"3", "4", ""},
		"cantidad_usada":    {"40", "0", ""},
		"desperdicio":       {"10", "", ""},
		"referencia_tipo":   {"Minorista"},
		"extra_concepto":    {"Argolla", "", "Envío"},
		"extra_moneda":      {"", "", "USD"},
		"extra_monto":       {"150", "", "12"},
		"extra_aplica":      {"unidad", "trabajo", "trabajo"},
	}
}

func TestParseQuoteFormReadsRowsAndDefaults(t *testing.T) {
	q, err := parseQuoteForm(validQuoteValues(), testDefaults)
	if err != nil {
		t.Fatalf("parseQuoteForm returned error: %v", err)
	}

	if q.Action != quoteActionCalculate {
		t.Fatalf("expected default action, got %q", q.Action)
	}
	if q.HorasImpresion != 1.5 || q.Unidades != 10 {
		t.Fatalf("unexpected hours/units: %v / %d", q.HorasImpresion, q.Unidades)
	}
	if !slices.Equal(q.MaquinasIDs, []int64{2, 5}) {
		t.Fatalf("expected deduplicated machine ids, got %v", q.MaquinasIDs)
	}
	if q.ValorDolar != 900 || q.ComisionPct != 18 {
		t.Fatalf("expected console defaults, got fx=%v commission=%v", q.ValorDolar, q.ComisionPct)
	}
	if q.Referencia != pricing.ReferenceMinorista {
		t.Fatalf("expected minorista reference, got %q", q.Referencia)
	}
	if q.Beneficio != nil {
		t.Fatalf("blank beneficio should stay unset, got %v", *q.Beneficio)
	}

	if len(q.Materiales) != 1 || q.Materiales[0].IDMaterial != 3 || q.Materiales[0].Desperdicio != 10 {
		t.Fatalf("expected only the used material row, got %+v", q.Materiales)
	}

	if len(q.Extras) != 2 {
		t.Fatalf("expected blank extra row dropped, got %+v", q.Extras)
	}
	if q.Extras[0].Moneda != money.ARS || !q.Extras[0].PorUnidad {
		t.Fatalf("unexpected first extra: %+v", q.Extras[0])
	}
	if q.Extras[1].Moneda != money.USD || q.Extras[1].PorUnidad {
		t.Fatalf("unexpected second extra: %+v", q.Extras[1])
	}
}

func TestParseQuoteFormCollectsEveryProblem(t *testing.T) {
	values := url.Values{
		"horas_impresion":         {"abc"},
		"cantidad_unidades":       {"0"},
		"valor_dolar":             {"0"},
		"comision_plataforma_pct": {"120"},
	}

	_, err := parseQuoteForm(values, testDefaults)
	var vErr *apiclient.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	want := []string{
		"Horas de impresión debe ser numérico",
		"Nombre del proyecto es obligatorio",
		"Horas de impresión debe ser mayor a 0",
		"Cantidad de unidades debe ser al menos 1",
		"Selecciona al menos una máquina",
		"Añade al menos un material con cantidad usada > 0",
		"Valor del dólar debe ser mayor a 0",
		"Comisión debe estar entre 0 y 100",
	}
	if !slices.Equal(vErr.Details, want) {
		t.Fatalf("unexpected details:\n got %q\nwant %q", vErr.Details, want)
	}
}

func TestQuoteDraftUsesFirstSelections(t *testing.T) {
	values := validQuoteValues()
	values["cantidad_usada"] = []string{"40", "25", ""}
	values["desperdicio"] = []string{"10", "30", ""}
	values.Set("beneficio", "30")

	q, err := parseQuoteForm(values, testDefaults)
	if err != nil {
		t.Fatalf("parseQuoteForm returned error: %v", err)
	}

	d := q.draft()
	if d.MachineID != 2 || d.MaterialID != 3 {
		t.Fatalf("expected first machine and material, got %+v", d)
	}
	if d.WorkerID == nil || *d.WorkerID != 7 {
		t.Fatalf("expected worker 7, got %v", d.WorkerID)
	}
	if d.CantidadMaterialGramos != 65 {
		t.Fatalf("expected summed grams 65, got %v", d.CantidadMaterialGramos)
	}
	if d.MargenBeneficio != 30 || d.PorcentajeDesperdicio != 20 {
		t.Fatalf("unexpected margins: %+v", d)
	}

	req := q.calculateRequest()
	if req.ValorDolar == nil || *req.ValorDolar != 900 {
		t.Fatalf("expected dollar value in request, got %v", req.ValorDolar)
	}
	if req.ReferenciaTipo != "minorista" || len(req.Adicionales) != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestCalculateRequestSendsCommissionAsFraction(t *testing.T) {
	tests := []struct {
		pct  string
		want float64
	}{
		{pct: "", want: 0.18},
		{pct: "25", want: 0.25},
		{pct: "0", want: 0},
	}
	for _, tc := range tests {
		values := validQuoteValues()
		if tc.pct != "" {
			values.Set("comision_plataforma_pct", tc.pct)
		}
		q, err := parseQuoteForm(values, testDefaults)
		if err != nil {
			t.Fatalf("parseQuoteForm returned error: %v", err)
		}

		raw, err := json.Marshal(q.calculateRequest())
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}
		if got := body["comision_plataforma_pct"]; got != tc.want {
			t.Fatalf("pct %q: expected comision_plataforma_pct %v, got %v", tc.pct, tc.want, got)
		}
		if q.pricingInputs().CommissionPct != q.ComisionPct {
			t.Fatalf("local totals must keep the percentage, got %v", q.pricingInputs().CommissionPct)
		}
	}
}

func TestQuoteFormRowsArePadded(t *testing.T) {
	q := defaultQuoteForm(testDefaults)
	if got := len(q.MaterialRows()); got != blankQuoteRows {
		t.Fatalf("expected %d blank material rows, got %d", blankQuoteRows, got)
	}
	rows := q.ExtraRows()
	if len(rows) != blankQuoteRows || rows[0].Moneda != money.ARS {
		t.Fatalf("unexpected extra rows: %+v", rows)
	}
}

func TestFormReaderNumbers(t *testing.T) {
	f := newFormReader(url.Values{
		"a": {" 12,5 "},
		"b": {""},
		"c": {"x"},
		"d": {"3.7"},
		"e": {"on"},
		"m": {"ars"},
	})

	if got := f.number("a", "A"); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := f.optNumber("b", "B"); got != nil {
		t.Fatalf("expected nil for blank, got %v", *got)
	}
	if got := f.number("c", "C"); got != 0 {
		t.Fatalf("expected 0 for invalid number, got %v", got)
	}
	if got := f.integer("d", "D"); got != 0 {
		t.Fatalf("expected 0 for non-integer, got %v", got)
	}
	if !f.checkbox("e") || f.checkbox("missing") {
		t.Fatal("unexpected checkbox values")
	}
	if got := f.currency("m"); got != money.ARS {
		t.Fatalf("expected ARS, got %q", got)
	}
	if got := f.currency("missing"); got != money.USD {
		t.Fatalf("expected USD fallback, got %q", got)
	}

	want := []string{"C debe ser numérico", "D debe ser un número entero"}
	if !slices.Equal(f.errs, want) {
		t.Fatalf("unexpected errors %q", f.errs)
	}
	if err := f.check(nil); err == nil {
		t.Fatal("expected check to report parse errors")
	}
}
