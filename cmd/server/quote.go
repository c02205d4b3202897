package main

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/observability/metrics"
	"github.com/Simplici0/cotizador3d/internal/pricing"
	"github.com/Simplici0/cotizador3d/internal/quotepdf"
	"github.com/Simplici0/cotizador3d/internal/session"
	"github.com/Simplici0/cotizador3d/internal/store"
)

const (
	quoteActionCalculate = "calculate"
	quoteActionSave      = "save"
	quoteActionPDF       = "pdf"

	blankQuoteRows = 2
)

// quoteForm is the parsed quote page. Optional numeric inputs stay nil so
// the backend applies its own defaults.
type quoteForm struct {
	Action            string
	Nombre            string
	Descripcion       string
	HorasImpresion    float64
	Unidades          int
	MaquinasIDs       []int64
	TrabajadoresIDs   []int64
	Materiales        []domain.MaterialUsage
	ValorDolar        float64
	Beneficio         *float64
	TiempoPreparacion *float64
	TiempoPostProceso *float64
	TiempoDisenio     *float64
	MinimoTrabajoARS  *float64
	TarifaManoObra    *float64
	ComisionPct       float64
	Referencia        pricing.Reference
	Extras            []domain.Extra
	Customer          quotepdf.Customer
	Notes             string
	InternalNotes     string
}

func defaultQuoteForm(d store.QuoteDefaults) quoteForm {
	return quoteForm{
		Unidades:    1,
		ValorDolar:  d.DollarValue,
		ComisionPct: d.CommissionPct,
	}
}

// parseQuoteForm reads the posted quote. Blank material and extra rows are
// dropped; the returned form is usable for re-rendering even on error.
func parseQuoteForm(values url.Values, d store.QuoteDefaults) (quoteForm, error) {
	f := newFormReader(values)
	q := defaultQuoteForm(d)

	q.Action = f.text("action")
	if q.Action == "" {
		q.Action = quoteActionCalculate
	}
	q.Nombre = f.text("nombre")
	q.Descripcion = f.text("descripcion")
	q.HorasImpresion = f.number("horas_impresion", "Horas de impresión")
	if f.text("cantidad_unidades") != "" {
		q.Unidades = f.integer("cantidad_unidades", "Cantidad de unidades")
	}
	q.MaquinasIDs = f.ids("maquinas_ids")
	q.TrabajadoresIDs = f.ids("trabajadores_ids")
	if v := f.optNumber("valor_dolar", "Valor del dólar"); v != nil {
		q.ValorDolar = *v
	}
	q.Beneficio = f.optNumber("beneficio", "Beneficio")
	q.TiempoPreparacion = f.optNumber("tiempo_preparacion_minutos", "Tiempo de preparación")
	q.TiempoPostProceso = f.optNumber("tiempo_post_proceso_minutos", "Tiempo de post-proceso")
	q.TiempoDisenio = f.optNumber("tiempo_disenio_horas", "Tiempo de diseño")
	q.MinimoTrabajoARS = f.optNumber("minimo_trabajo_ars", "Mínimo por trabajo")
	q.TarifaManoObra = f.optNumber("tarifa_mano_obra_usd_h", "Tarifa de mano de obra")
	if v := f.optNumber("comision_plataforma_pct", "Comisión"); v != nil {
		q.ComisionPct = *v
	}
	q.Referencia = pricing.ParseReference(f.text("referencia_tipo"))
	q.Customer = quotepdf.Customer{
		Name:    f.text("cliente_nombre"),
		Company: f.text("cliente_empresa"),
		Email:   f.text("cliente_email"),
	}
	q.Notes = f.text("notas")
	q.InternalNotes = f.text("notas_internas")

	ids, used, waste := values["material_id"], values["cantidad_usada"], values["desperdicio"]
	for i := range ids {
		row := newFormReader(url.Values{
			"id":          {ids[i]},
			"cantidad":    {at(used, i)},
			"desperdicio": {at(waste, i)},
		})
		usage := domain.MaterialUsage{
			IDMaterial:    row.id("id"),
			CantidadUsada: row.number("cantidad", "Cantidad usada"),
			Desperdicio:   row.number("desperdicio", "Desperdicio"),
		}
		f.errs = append(f.errs, row.errs...)
		if usage.IDMaterial == 0 || usage.CantidadUsada <= 0 {
			continue
		}
		q.Materiales = append(q.Materiales, usage)
	}

	concepts, currencies, amounts, applies := values["extra_concepto"], values["extra_moneda"], values["extra_monto"], values["extra_aplica"]
	extras := make([]domain.Extra, 0, len(concepts))
	for i := range concepts {
		row := newFormReader(url.Values{
			"concepto": {concepts[i]},
			"monto":    {at(amounts, i)},
		})
		moneda, _ := money.ParseCurrency(at(currencies, i))
		extras = append(extras, domain.Extra{
			Concepto:  row.text("concepto"),
			Moneda:    moneda,
			Monto:     row.number("monto", "Monto del adicional"),
			PorUnidad: at(applies, i) == "unidad",
		})
		f.errs = append(f.errs, row.errs...)
	}
	q.Extras = pricing.PrepareExtras(extras)

	if q.Nombre == "" {
		f.fail("Nombre del proyecto es obligatorio")
	}
	if q.HorasImpresion <= 0 {
		f.fail("Horas de impresión debe ser mayor a 0")
	}
	if q.Unidades < 1 {
		f.fail("Cantidad de unidades debe ser al menos 1")
	}
	if len(q.MaquinasIDs) == 0 {
		f.fail("Selecciona al menos una máquina")
	}
	if len(q.Materiales) == 0 {
		f.fail("Añade al menos un material con cantidad usada > 0")
	}
	if q.ValorDolar <= 0 {
		f.fail("Valor del dólar debe ser mayor a 0")
	}
	if q.ComisionPct < 0 || q.ComisionPct > 100 {
		f.fail("Comisión debe estar entre 0 y 100")
	}
	return q, f.check(nil)
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// calculateRequest builds the backend request. The backend takes the
// commission as a fraction; the form and local totals keep a percentage.
func (q quoteForm) calculateRequest() domain.CalculateRequest {
	fx := q.ValorDolar
	var commission float64
	if q.ComisionPct > 0 {
		commission = q.ComisionPct / 100
	}
	return domain.CalculateRequest{
		HorasImpresion:           q.HorasImpresion,
		MaquinasIDs:              q.MaquinasIDs,
		TrabajadoresIDs:          q.TrabajadoresIDs,
		Materiales:               q.Materiales,
		ValorDolar:               &fx,
		CantidadUnidades:         q.Unidades,
		Beneficio:                q.Beneficio,
		TiempoPreparacionMinutos: q.TiempoPreparacion,
		TiempoPostProcesoMinutos: q.TiempoPostProceso,
		TiempoDisenioHoras:       q.TiempoDisenio,
		MinimoTrabajoARS:         q.MinimoTrabajoARS,
		TarifaManoObraUSDPorHora: q.TarifaManoObra,
		ComisionPlataformaPct:    commission,
		ReferenciaTipo:           string(q.Referencia),
		Adicionales:              q.Extras,
	}
}

func (q quoteForm) pricingInputs() pricing.Inputs {
	return pricing.Inputs{
		Units:         q.Unidades,
		FX:            q.ValorDolar,
		CommissionPct: q.ComisionPct,
		Reference:     q.Referencia,
		Extras:        q.Extras,
	}
}

// draft maps the form to a saved print. A print references one machine,
// worker and material; the first selected of each is used. Material grams
// are summed and waste is averaged over all rows.
func (q quoteForm) draft() domain.PrintDraft {
	d := domain.PrintDraft{
		Nombre:           q.Nombre,
		Descripcion:      optionalText(q.Descripcion),
		HorasImpresion:   q.HorasImpresion,
		CantidadUnidades: q.Unidades,
		Extras:           q.Extras,
	}
	if q.Beneficio != nil {
		d.MargenBeneficio = *q.Beneficio
	}
	if len(q.MaquinasIDs) > 0 {
		d.MachineID = q.MaquinasIDs[0]
	}
	if len(q.TrabajadoresIDs) > 0 {
		id := q.TrabajadoresIDs[0]
		d.WorkerID = &id
	}
	if len(q.Materiales) > 0 {
		d.MaterialID = q.Materiales[0].IDMaterial
	}
	var waste float64
	for _, m := range q.Materiales {
		d.CantidadMaterialGramos += m.CantidadUsada
		waste += m.Desperdicio
	}
	if n := len(q.Materiales); n > 0 {
		d.PorcentajeDesperdicio = waste / float64(n)
	}
	return d
}

// MaterialRows pads the parsed rows with blank ones for the form.
func (q quoteForm) MaterialRows() []domain.MaterialUsage {
	rows := append([]domain.MaterialUsage{}, q.Materiales...)
	for i := 0; i < blankQuoteRows; i++ {
		rows = append(rows, domain.MaterialUsage{})
	}
	return rows
}

func (q quoteForm) ExtraRows() []domain.Extra {
	rows := append([]domain.Extra{}, q.Extras...)
	for i := 0; i < blankQuoteRows; i++ {
		rows = append(rows, domain.Extra{Moneda: money.ARS})
	}
	return rows
}

func (q quoteForm) OptValue(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

type quoteResult struct {
	Breakdown domain.CostBreakdown
	Totals    pricing.Totals
}

type referenceOption struct {
	Value string
	Label string
}

type quoteViewData struct {
	baseViewData
	Form       quoteForm
	Machines   []domain.Machine
	Workers    []domain.Worker
	Materials  []domain.Material
	References []referenceOption
	Result     *quoteResult
}

func (s *server) quoteView(r *http.Request, p session.Principal, form quoteForm) (quoteViewData, error) {
	ctx := r.Context()
	data := quoteViewData{baseViewData: s.base(r), Form: form}
	for _, ref := range pricing.References {
		data.References = append(data.References, referenceOption{Value: string(ref), Label: ref.Label()})
	}

	var err error
	if data.Machines, err = s.api.ListMachines(ctx, p); err != nil {
		return data, err
	}
	if data.Workers, err = s.api.ListWorkers(ctx, p); err != nil {
		return data, err
	}
	if data.Materials, err = s.api.ListMaterials(ctx, p); err != nil {
		return data, err
	}
	return data, nil
}

func (s *server) handleQuoteForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principal(r)

	defaults, err := s.settings.QuoteDefaults(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load quote defaults")
	}
	form := defaultQuoteForm(defaults)
	if rate, err := s.api.LatestCurrencyRate(ctx, p, false); err == nil && rate.Value > 0 {
		form.ValorDolar = rate.Value
	}
	if benefit, err := s.api.Benefit(ctx, p); err == nil && benefit.Value >= 0 {
		v := benefit.Value
		form.Beneficio = &v
	}

	data, err := s.quoteView(r, p, form)
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
	}
	s.render(w, "quote_form.html", data)
}

func (s *server) handleQuoteSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	p := principal(r)

	defaults, err := s.settings.QuoteDefaults(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load quote defaults")
	}

	form, formErr := parseQuoteForm(r.PostForm, defaults)
	data, err := s.quoteView(r, p, form)
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
		s.renderTemplate(w, http.StatusBadGateway, "quote_form.html", data)
		return
	}
	if formErr != nil {
		data.setError(formErr)
		s.renderTemplate(w, http.StatusBadRequest, "quote_form.html", data)
		return
	}

	breakdown, err := s.api.Calculate(ctx, p, form.calculateRequest())
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
		s.renderTemplate(w, http.StatusBadGateway, "quote_form.html", data)
		return
	}
	totals := pricing.Compute(breakdown, form.pricingInputs())
	data.Result = &quoteResult{Breakdown: breakdown, Totals: totals}

	switch form.Action {
	case quoteActionSave:
		b := breakdown
		b.PrecioCalculadoARS = &totals.PrecioCalculadoARS
		b.PrecioFinalARS = &totals.PrecioFinalARS
		saved, err := s.api.CreatePrintFromCalculation(ctx, p, form.draft(), b, form.ValorDolar)
		if err != nil {
			if s.redirectOnAuthFailure(w, r, err) {
				return
			}
			data.setError(err)
			s.renderTemplate(w, http.StatusBadGateway, "quote_form.html", data)
			return
		}
		redirectWithSuccess(w, r, "/prints/"+strconv.FormatInt(saved.ID, 10), "Impresión guardada")
	case quoteActionPDF:
		s.writeQuotePDF(w, r, data, defaults)
	default:
		s.render(w, "quote_form.html", data)
	}
}

// writeQuotePDF renders the document fully before sending any header, so a
// layout failure still shows the form with an error.
func (s *server) writeQuotePDF(w http.ResponseWriter, r *http.Request, data quoteViewData, defaults store.QuoteDefaults) {
	form := data.Form
	st := session.FromContext(r.Context())

	in := quotepdf.Input{
		Job: quotepdf.Job{
			Name:        form.Nombre,
			Description: form.Descripcion,
			Hours:       form.HorasImpresion,
			Units:       form.Unidades,
			FX:          form.ValorDolar,
			Date:        s.now(),
		},
		Breakdown:  data.Result.Breakdown,
		Totals:     data.Result.Totals,
		Extras:     form.Extras,
		Notes:      form.Notes,
		Customer:   form.Customer,
		Conditions: defaults.Conditions,
		Internal: quotepdf.Internal{
			ProfitMarginPct:   form.Beneficio,
			CalculatorVersion: "cotizador3d",
			Owner:             st.CurrentTenant,
			Notes:             form.InternalNotes,
		},
	}

	var buf bytes.Buffer
	res, err := quotepdf.Write(&buf, in)
	if err != nil {
		metrics.ObserveQuotePDF("error")
		log.Error().Err(err).Str("project", form.Nombre).Msg("render quote pdf")
		data.setError(err)
		s.renderTemplate(w, http.StatusInternalServerError, "quote_form.html", data)
		return
	}
	metrics.ObserveQuotePDF("ok")

	if _, err := s.exports.Record(r.Context(), store.Export{
		Tenant:        st.CurrentTenant,
		ProjectName:   form.Nombre,
		FileName:      res.FileName,
		Units:         form.Unidades,
		FXRate:        form.ValorDolar,
		FinalPriceARS: data.Result.Totals.PrecioFinalARS,
		SizeBytes:     res.Bytes,
	}); err != nil {
		log.Warn().Err(err).Msg("record quote export")
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.FileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(res.Bytes, 10))
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Msg("send quote pdf")
	}
}
