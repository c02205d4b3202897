// Package quotepdf renders the two-page A4 quote: a client copy with the
// price summary and terms, and an internal copy with the cost breakdown.
package quotepdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/pricing"
)

// ErrNoRenderTarget is returned before any layout work when there is nowhere
// to write the document.
var ErrNoRenderTarget = errors.New("quotepdf: no render target")

// Job is the user-entered part of the quote.
type Job struct {
	Name        string
	Description string
	Hours       float64
	Units       int
	FX          float64
	Date        time.Time
}

// Customer is optional recipient data shown on the client copy.
type Customer struct {
	Name    string
	Company string
	Email   string
}

// Conditions are the commercial terms printed on the client copy. Zero
// values are replaced by DefaultConditions.
type Conditions struct {
	ValidityDays   int
	ProductionDays int
	Payment        string
	Guarantee      string
	Includes       []string
	Excludes       []string
}

// DefaultConditions are used when neither the caller nor the console
// settings provide a value.
func DefaultConditions() Conditions {
	return Conditions{
		ValidityDays:   7,
		ProductionDays: 5,
		Payment:        "A acordar",
		Guarantee:      "Sujeto a material, tolerancias y uso acordados.",
	}
}

func (c Conditions) withDefaults() Conditions {
	d := DefaultConditions()
	if c.ValidityDays <= 0 {
		c.ValidityDays = d.ValidityDays
	}
	if c.ProductionDays <= 0 {
		c.ProductionDays = d.ProductionDays
	}
	if strings.TrimSpace(c.Payment) == "" {
		c.Payment = d.Payment
	}
	if strings.TrimSpace(c.Guarantee) == "" {
		c.Guarantee = d.Guarantee
	}
	return c
}

// Internal holds data only printed on the internal copy.
type Internal struct {
	FailureMarginPct  *float64
	ProfitMarginPct   *float64
	CalculatorVersion string
	Owner             string
	Notes             string
}

// Input is everything needed to lay out a quote.
type Input struct {
	Job        Job
	Breakdown  domain.CostBreakdown
	Totals     pricing.Totals
	Extras     []domain.Extra
	Notes      string
	Customer   Customer
	Conditions Conditions
	Internal   Internal
}

// Result describes a written document.
type Result struct {
	FileName string
	Pages    int
	Bytes    int64
}

// Option tweaks document generation.
type Option func(*settings)

type settings struct {
	compress bool
}

// WithoutCompression leaves page streams uncompressed.
func WithoutCompression() Option {
	return func(s *settings) { s.compress = false }
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName is Presupuesto_<project>_<YYYY-MM-DD>.pdf where every
// non-alphanumeric character of the project name becomes "_".
func FileName(project string, date time.Time) string {
	return "Presupuesto_" + nonAlnum.ReplaceAllString(project, "_") + "_" + date.UTC().Format("2006-01-02") + ".pdf"
}

const (
	margin   = 14.0
	footerAt = -12.0
)

var (
	darkFill   = [3]int{20, 24, 32}
	stripeFill = [3]int{248, 249, 251}
)

type doc struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	pageW    float64
	pageH    float64
	contentW float64
	label    string
}

// Write lays out the quote and writes it to w. Nothing is written unless the
// whole document was generated.
func Write(w io.Writer, in Input, opts ...Option) (Result, error) {
	if w == nil {
		return Result{}, ErrNoRenderTarget
	}
	s := settings{compress: true}
	for _, opt := range opts {
		opt(&s)
	}
	if in.Job.Date.IsZero() {
		in.Job.Date = time.Now()
	}
	in.Conditions = in.Conditions.withDefaults()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(s.compress)
	pdf.SetMargins(margin, 30, margin)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")
	pageW, pageH := pdf.GetPageSize()

	d := &doc{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		pageW:    pageW,
		pageH:    pageH,
		contentW: pageW - 2*margin,
	}
	pdf.SetFooterFunc(d.footer)

	d.label = "Documento para el cliente"
	pdf.AddPage()
	d.clientCopy(in)

	pdf.AddPage()
	d.label = "Documento interno"
	d.internalCopy(in)

	pages := pdf.PageCount()
	if err := pdf.Error(); err != nil {
		return Result{}, fmt.Errorf("quotepdf: layout: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Result{}, fmt.Errorf("quotepdf: output: %w", err)
	}
	n, err := buf.WriteTo(w)
	if err != nil {
		return Result{}, fmt.Errorf("quotepdf: write: %w", err)
	}

	return Result{
		FileName: FileName(in.Job.Name, in.Job.Date),
		Pages:    pages,
		Bytes:    n,
	}, nil
}

func (d *doc) footer() {
	p := d.pdf
	p.SetY(footerAt)
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(120, 120, 120)
	half := d.contentW / 2
	p.CellFormat(half, 5, d.tr(d.label), "", 0, "L", false, 0, "")
	p.CellFormat(half, 5, d.tr(fmt.Sprintf("Página %d de {nb}", p.PageNo())), "", 0, "R", false, 0, "")
}

func (d *doc) clientCopy(in Input) {
	p := d.pdf
	d.header("Presupuesto 3D", "Impresión / Producción de piezas", "COPIA CLIENTE")

	d.section("Datos del trabajo")
	d.keyValues([][2]string{
		{"Proyecto", in.Job.Name},
		{"Fecha", spanishDate(in.Job.Date)},
		{"Unidades", strconv.Itoa(in.Job.Units)},
		{"Horas estimadas", formatNumber(in.Job.Hours)},
		{"Tipo de cambio", money.FormatARS(in.Job.FX) + " por USD"},
		{"Cliente", customerLabel(in.Customer)},
	})

	if desc := strings.TrimSpace(in.Job.Description); desc != "" {
		d.label8("Descripción")
		d.body(10)
		p.MultiCell(d.contentW, 5, d.tr(desc), "", "L", false)
		p.Ln(3)
	}

	d.section("Resumen de precio")
	d.totalsCard(in.Totals)

	if in.Totals.UnitARS != nil || in.Totals.UnitUSD != nil {
		y := p.GetY()
		p.SetDrawColor(230, 230, 230)
		p.Rect(margin, y, d.contentW, 16, "D")
		p.SetXY(margin+6, y+3)
		p.SetFont("Helvetica", "B", 10)
		p.SetTextColor(110, 110, 110)
		p.CellFormat(d.contentW-12, 5, "Precio unitario", "", 2, "L", false, 0, "")
		p.SetFont("Helvetica", "B", 12)
		p.SetTextColor(20, 20, 20)
		p.CellFormat(d.contentW-12, 6, optARS(in.Totals.UnitARS)+"  |  "+optUSD(in.Totals.UnitUSD), "", 1, "L", false, 0, "")
		p.SetY(y + 20)
	}

	lines := pricing.ExtraLines(in.Extras, in.Job.Units, in.Job.FX)
	if len(lines) > 0 {
		d.section("Adicionales")
		rows := make([][]string, 0, len(lines))
		for _, l := range lines {
			apply := "Por trabajo"
			if l.Extra.PorUnidad {
				apply = "Por unidad"
			}
			rows = append(rows, []string{l.Extra.Concepto, apply, money.FormatARS(l.ARS), optUSD(l.USD)})
		}
		d.table(
			[]string{"Concepto", "Aplicación", "Total ARS", "Total USD"},
			[]float64{0.40, 0.20, 0.20, 0.20},
			[]string{"L", "L", "R", "R"},
			rows, 9,
		)
	}

	c := in.Conditions
	d.section("Condiciones")
	bullets := []string{
		fmt.Sprintf("Validez del presupuesto: %d días.", c.ValidityDays),
		fmt.Sprintf("Plazo estimado de producción: %d días (desde aprobación y anticipo).", c.ProductionDays),
		"Forma de pago: " + c.Payment + ".",
		"Garantía/alcance: " + c.Guarantee,
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		bullets = append(bullets, "Notas: "+notes)
	}
	d.bullets(bullets, d.contentW, 10)
	p.Ln(4)

	if len(c.Includes) > 0 || len(c.Excludes) > 0 {
		d.includeBoxes(c.Includes, c.Excludes)
	}
}

func (d *doc) internalCopy(in Input) {
	p := d.pdf
	d.header("Presupuesto 3D", "Detalle interno de cálculo", "USO INTERNO")

	d.section("Datos base")
	d.keyValues([][2]string{
		{"Proyecto", in.Job.Name},
		{"Fecha", spanishDate(in.Job.Date)},
		{"Unidades", strconv.Itoa(in.Job.Units)},
		{"Horas impresión", formatNumber(in.Job.Hours)},
		{"Tipo de cambio", money.FormatARS(in.Job.FX) + " por USD"},
		{"Referencia", referenceLabel(in.Breakdown, in.Totals)},
		{"Versión", orDash(in.Internal.CalculatorVersion)},
		{"Responsable", orDash(in.Internal.Owner)},
	})

	b := in.Breakdown
	d.section("Desglose de costos (USD)")
	rows := [][]string{
		{"Máquinas", money.FormatUSD(b.CostoMaquinasUSD)},
		{"Trabajadores", money.FormatUSD(b.CostoTrabajadoresUSD)},
		{"Materiales", money.FormatUSD(b.CostoMaterialesUSD)},
		{"Desperdicio", money.FormatUSD(b.CostoDesperdicioUSD)},
		{"Gastos fijos (prorrateo)", money.FormatUSD(b.CostoGastosFijosUSD)},
	}
	if b.CostoElectricidadUSD != nil {
		rows = append(rows, []string{"Electricidad", money.FormatUSD(*b.CostoElectricidadUSD)})
	}
	if b.CostoSeguroFallosUSD != nil {
		rows = append(rows, []string{"Seguro de fallos", money.FormatUSD(*b.CostoSeguroFallosUSD)})
	}
	if b.CostoLaborUSD != nil {
		rows = append(rows, []string{"Mano de obra", money.FormatUSD(*b.CostoLaborUSD)})
	}
	rows = append(rows,
		[]string{"Subtotal costos", money.FormatUSD(b.CostoTotalUSD)},
		[]string{"Sugerido total (USD)", money.FormatUSD(b.CostoSugeridoTotalUSD)},
	)
	d.table([]string{"Concepto", "Monto"}, []float64{0.7, 0.3}, []string{"L", "R"}, rows, 9)

	t := in.Totals
	d.section("Totales finales (ARS / USD)")
	d.table([]string{"Ítem", "Valor"}, []float64{0.7, 0.3}, []string{"L", "R"}, [][]string{
		{"Total ARS (calculado)", money.FormatARS(t.PrecioCalculadoARS)},
		{"Adicionales ARS", money.FormatARS(t.ExtrasTotalARS)},
		{"Total ARS (final)", money.FormatARS(t.PrecioFinalARS)},
		{"Total USD (final)", optUSD(t.PrecioFinalUSD)},
		{"Unitario ARS", optARS(t.UnitARS)},
		{"Unitario USD", optUSD(t.UnitUSD)},
	}, 9)

	d.section("Parámetros / supuestos")
	d.bullets([]string{
		"Margen seguro fallos: " + optPct(in.Internal.FailureMarginPct),
		"Margen beneficio: " + optPct(in.Internal.ProfitMarginPct),
		"Nota: valores sujetos a tolerancias, orientación, material y calidad acordada.",
	}, d.contentW, 10)
	p.Ln(4)

	lines := pricing.ExtraLines(in.Extras, in.Job.Units, in.Job.FX)
	if len(lines) > 0 {
		d.section("Adicionales (detalle interno)")
		rows := make([][]string, 0, len(lines))
		for _, l := range lines {
			perUnit := "No"
			if l.Extra.PorUnidad {
				perUnit = "Sí"
			}
			rows = append(rows, []string{
				l.Extra.Concepto,
				string(l.Extra.Moneda),
				perUnit,
				formatNumber(l.Extra.Monto),
				formatNumber(l.Factor),
				formatNumber(l.Extra.Monto * l.Factor),
			})
		}
		d.table(
			[]string{"Concepto", "Moneda", "x Unidad", "Monto", "Factor", "Total"},
			[]float64{0.32, 0.12, 0.12, 0.15, 0.12, 0.17},
			[]string{"L", "C", "C", "R", "R", "R"},
			rows, 8.5,
		)
	}

	if notes := strings.TrimSpace(in.Internal.Notes); notes != "" {
		d.section("Notas internas")
		d.body(10)
		p.MultiCell(d.contentW, 5, d.tr(notes), "", "L", false)
	}
}
