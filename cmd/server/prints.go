package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/session"
	"github.com/Simplici0/cotizador3d/internal/store"
)

type homeViewData struct {
	baseViewData
	Rate    *domain.CurrencyRate
	Summary *domain.PrintSummary
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := homeViewData{baseViewData: s.base(r)}
	p := principal(r)

	summary, err := s.api.PrintsSummary(r.Context(), p, domain.SummaryFilter{})
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
	} else {
		data.Summary = &summary
	}
	if rate, err := s.api.LatestCurrencyRate(r.Context(), p, false); err == nil {
		data.Rate = &rate
	}
	s.render(w, "home.html", data)
}

type currencyViewData struct {
	baseViewData
	Rate *domain.CurrencyRate
}

func (s *server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	s.currencyPage(w, r, false)
}

func (s *server) handleCurrencyRefresh(w http.ResponseWriter, r *http.Request) {
	s.currencyPage(w, r, true)
}

func (s *server) currencyPage(w http.ResponseWriter, r *http.Request, refresh bool) {
	data := currencyViewData{baseViewData: s.base(r)}
	rate, err := s.api.LatestCurrencyRate(r.Context(), principal(r), refresh)
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
	} else {
		data.Rate = &rate
		if refresh {
			data.SuccessMessage = "Cotización actualizada"
		}
	}
	s.render(w, "currency.html", data)
}

type printsViewData struct {
	baseViewData
	Prints []domain.Print
}

func (s *server) handlePrintsList(w http.ResponseWriter, r *http.Request) {
	data := printsViewData{baseViewData: s.base(r)}
	prints, err := s.api.ListPrints(r.Context(), principal(r))
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
	}
	data.Prints = prints
	s.render(w, "prints.html", data)
}

type printDetailViewData struct {
	baseViewData
	Print domain.Print
}

func (s *server) handlePrintDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := printDetailViewData{baseViewData: s.base(r)}
	saved, err := s.api.GetPrint(r.Context(), principal(r), id)
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
		s.renderTemplate(w, http.StatusBadGateway, "print_detail.html", data)
		return
	}
	data.Print = saved
	s.render(w, "print_detail.html", data)
}

func (s *server) handlePrintDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.api.DeletePrint(r.Context(), principal(r), id); err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		log.Warn().Err(err).Int64("print_id", id).Msg("delete print failed")
		data := printsViewData{baseViewData: s.base(r)}
		data.setError(err)
		data.Prints, _ = s.api.ListPrints(r.Context(), principal(r))
		s.renderTemplate(w, http.StatusBadGateway, "prints.html", data)
		return
	}
	redirectWithSuccess(w, r, "/prints", "Impresión eliminada")
}

type printEditForm struct {
	Nombre                 string   `validate:"required" label:"Nombre"`
	Descripcion            string   `label:"Descripción"`
	HorasImpresion         float64  `validate:"gt=0" label:"Horas de impresión"`
	CantidadUnidades       int      `validate:"gt=0" label:"Cantidad de unidades"`
	PorcentajeDesperdicio  float64  `validate:"gte=0,lte=100" label:"Desperdicio"`
	MargenBeneficio        float64  `validate:"gte=0" label:"Margen de beneficio"`
	MachineID              int64    `validate:"gt=0" label:"Máquina"`
	WorkerID               int64    `label:"Trabajador"`
	MaterialID             int64    `validate:"gt=0" label:"Material"`
	CantidadMaterialGramos float64  `validate:"gt=0" label:"Cantidad de material"`
	PrecioVentaARS         *float64 `validate:"omitempty,gte=0" label:"Precio de venta"`
}

func printEditFormFrom(p domain.Print) printEditForm {
	f := printEditForm{
		Nombre:                 p.Nombre,
		HorasImpresion:         p.HorasImpresion,
		CantidadUnidades:       p.CantidadUnidades,
		PorcentajeDesperdicio:  p.PorcentajeDesperdicio,
		MargenBeneficio:        p.MargenBeneficio,
		MachineID:              p.MachineID,
		MaterialID:             p.MaterialID,
		CantidadMaterialGramos: p.CantidadMaterialGramos,
		PrecioVentaARS:         p.PrecioVentaARS,
	}
	if p.Descripcion != nil {
		f.Descripcion = *p.Descripcion
	}
	if p.WorkerID != nil {
		f.WorkerID = *p.WorkerID
	}
	return f
}

func readPrintEditForm(f *formReader) printEditForm {
	return printEditForm{
		Nombre:                 f.text("nombre"),
		Descripcion:            f.text("descripcion"),
		HorasImpresion:         f.number("horas_impresion", "Horas de impresión"),
		CantidadUnidades:       f.integer("cantidad_unidades", "Cantidad de unidades"),
		PorcentajeDesperdicio:  f.number("porcentaje_desperdicio", "Desperdicio"),
		MargenBeneficio:        f.number("margen_beneficio", "Margen de beneficio"),
		MachineID:              f.id("machine_id"),
		WorkerID:               f.id("worker_id"),
		MaterialID:             f.id("material_id"),
		CantidadMaterialGramos: f.number("cantidad_material_gramos", "Cantidad de material"),
		PrecioVentaARS:         f.optNumber("precio_venta_ars", "Precio de venta"),
	}
}

// payload maps the form to the update body; worker 0 means no worker.
func (f printEditForm) payload() domain.UpdatePrint {
	in := domain.UpdatePrint{
		Nombre:                 f.Nombre,
		Descripcion:            optionalText(f.Descripcion),
		HorasImpresion:         f.HorasImpresion,
		CantidadUnidades:       f.CantidadUnidades,
		PorcentajeDesperdicio:  f.PorcentajeDesperdicio,
		MargenBeneficio:        f.MargenBeneficio,
		MachineID:              f.MachineID,
		MaterialID:             f.MaterialID,
		CantidadMaterialGramos: f.CantidadMaterialGramos,
		PrecioVentaARS:         f.PrecioVentaARS,
	}
	if f.WorkerID > 0 {
		id := f.WorkerID
		in.WorkerID = &id
	}
	return in
}

type printEditViewData struct {
	baseViewData
	ID        int64
	Form      printEditForm
	Machines  []domain.Machine
	Workers   []domain.Worker
	Materials []domain.Material
}

func (s *server) printEditView(r *http.Request, id int64, form printEditForm) (printEditViewData, error) {
	ctx := r.Context()
	p := principal(r)
	data := printEditViewData{baseViewData: s.base(r), ID: id, Form: form}

	var err error
	if data.Machines, err = s.api.ListMachines(ctx, p); err != nil {
		return data, err
	}
	if data.Workers, err = s.api.ListWorkers(ctx, p); err != nil {
		return data, err
	}
	data.Materials, err = s.api.ListMaterials(ctx, p)
	return data, err
}

func (s *server) handlePrintEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	saved, err := s.api.GetPrint(r.Context(), principal(r), id)
	if err == nil {
		var data printEditViewData
		data, err = s.printEditView(r, id, printEditFormFrom(saved))
		if err == nil {
			s.render(w, "print_edit.html", data)
			return
		}
	}
	if s.redirectOnAuthFailure(w, r, err) {
		return
	}
	data := printEditViewData{baseViewData: s.base(r), ID: id}
	data.setError(err)
	s.renderTemplate(w, http.StatusBadGateway, "print_edit.html", data)
}

func (s *server) handlePrintUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	f := newFormReader(r.PostForm)
	form := readPrintEditForm(f)
	status := http.StatusBadRequest
	err := f.check(form)
	if err == nil {
		status = http.StatusBadGateway
		_, err = s.api.UpdatePrint(r.Context(), principal(r), id, form.payload())
	}
	if err == nil {
		redirectWithSuccess(w, r, "/prints/"+chiID(r), "Impresión actualizada")
		return
	}
	if s.redirectOnAuthFailure(w, r, err) {
		return
	}

	data, listErr := s.printEditView(r, id, form)
	if listErr != nil && s.redirectOnAuthFailure(w, r, listErr) {
		return
	}
	data.setError(err)
	s.renderTemplate(w, status, "print_edit.html", data)
}

type summaryViewData struct {
	baseViewData
	StartDate    string
	EndDate      string
	IncludeLabor bool
	Summary      *domain.PrintSummary
}

// handlePrintsSummary shows totals over a date range. Labor is included
// unless the form explicitly turns it off.
func (s *server) handlePrintsSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := summaryViewData{
		baseViewData: s.base(r),
		StartDate:    strings.TrimSpace(q.Get("start_date")),
		EndDate:      strings.TrimSpace(q.Get("end_date")),
		IncludeLabor: q.Get("include_labor") != "false",
	}

	labor := data.IncludeLabor
	summary, err := s.api.PrintsSummary(r.Context(), principal(r), domain.SummaryFilter{
		StartDate:    data.StartDate,
		EndDate:      data.EndDate,
		IncludeLabor: &labor,
	})
	if err != nil {
		if s.redirectOnAuthFailure(w, r, err) {
			return
		}
		data.setError(err)
	} else {
		data.Summary = &summary
	}
	s.render(w, "totals.html", data)
}

type exportsViewData struct {
	baseViewData
	Query   string
	Exports []store.Export
}

func (s *server) handleExportsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	tenant := session.FromContext(r.Context()).CurrentTenant

	exports, err := s.exports.List(r.Context(), tenant, query)
	if err != nil {
		log.Error().Err(err).Msg("list quote exports")
		http.Error(w, "failed to load exports", http.StatusInternalServerError)
		return
	}

	s.render(w, "exports.html", exportsViewData{
		baseViewData: s.base(r),
		Query:        query,
		Exports:      exports,
	})
}

type consoleSettingsViewData struct {
	baseViewData
	Settings []store.Setting
}

func (s *server) handleConsoleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list console settings")
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	s.render(w, "console_settings.html", consoleSettingsViewData{baseViewData: s.base(r), Settings: settings})
}

// handleConsoleSettingsSubmit saves every posted key that already exists.
func (s *server) handleConsoleSettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list console settings")
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	for _, item := range settings {
		values, ok := r.PostForm[item.Key]
		if !ok || len(values) == 0 {
			continue
		}
		if err := s.settings.Set(r.Context(), item.Key, values[0]); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("key", item.Key).Msg("save console setting")
			http.Error(w, "failed to save settings", http.StatusInternalServerError)
			return
		}
	}
	redirectWithSuccess(w, r, "/admin/console-settings", "Configuración guardada correctamente.")
}
