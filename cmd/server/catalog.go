package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/session"
)

type option struct {
	Value string
	Label string
}

type field struct {
	Name    string
	Label   string
	Type    string // text, number, select, textarea
	Step    string
	Help    string
	Options []option
	Value   string
}

type catalogRow struct {
	ID    int64
	Cells []string
}

// catalogResource describes one backend collection edited through the
// generic list and form pages.
type catalogResource struct {
	Slug     string
	Title    string
	Singular string
	Columns  []string
	Fields   []field

	list   func(ctx context.Context, p session.Principal) ([]catalogRow, error)
	load   func(ctx context.Context, p session.Principal, id int64) (url.Values, error)
	save   func(ctx context.Context, p session.Principal, id int64, f *formReader) error
	remove func(ctx context.Context, p session.Principal, id int64) error
}

type catalogListViewData struct {
	baseViewData
	Resource *catalogResource
	Rows     []catalogRow
}

type catalogFormViewData struct {
	baseViewData
	Resource *catalogResource
	Fields   []field
	Action   string
	Editing  bool
}

var currencyOptions = []option{{Value: string(money.USD), Label: "USD"}, {Value: string(money.ARS), Label: "ARS"}}

func (s *server) mountCatalog(r chi.Router, res *catalogResource) {
	base := "/" + res.Slug
	r.Get(base, s.handleCatalogList(res))
	r.Get(base+"/new", s.handleCatalogNew(res))
	r.Post(base, s.handleCatalogSave(res))
	r.Get(base+"/{id}/edit", s.handleCatalogEdit(res))
	r.Post(base+"/{id}", s.handleCatalogSave(res))
	r.Post(base+"/{id}/delete", s.handleCatalogDelete(res))
}

func (s *server) handleCatalogList(res *catalogResource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := catalogListViewData{baseViewData: s.base(r), Resource: res}
		rows, err := res.list(r.Context(), principal(r))
		if err != nil {
			if s.redirectOnAuthFailure(w, r, err) {
				return
			}
			data.setError(err)
		}
		data.Rows = rows
		s.render(w, "catalog_list.html", data)
	}
}

func (s *server) handleCatalogNew(res *catalogResource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, "catalog_form.html", catalogFormViewData{
			baseViewData: s.base(r),
			Resource:     res,
			Fields:       fillFields(res.Fields, nil),
			Action:       "/" + res.Slug,
		})
	}
}

func (s *server) handleCatalogEdit(res *catalogResource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		data := catalogFormViewData{
			baseViewData: s.base(r),
			Resource:     res,
			Action:       "/" + res.Slug + "/" + strconv.FormatInt(id, 10),
			Editing:      true,
		}
		values, err := res.load(r.Context(), principal(r), id)
		if err != nil {
			if s.redirectOnAuthFailure(w, r, err) {
				return
			}
			data.setError(err)
		}
		data.Fields = fillFields(res.Fields, values)
		s.render(w, "catalog_form.html", data)
	}
}

func (s *server) handleCatalogSave(res *catalogResource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		var id int64
		action := "/" + res.Slug
		if chiID(r) != "" {
			var ok bool
			if id, ok = urlID(r); !ok {
				http.NotFound(w, r)
				return
			}
			action += "/" + strconv.FormatInt(id, 10)
		}

		if err := res.save(r.Context(), principal(r), id, newFormReader(r.PostForm)); err != nil {
			if s.redirectOnAuthFailure(w, r, err) {
				return
			}
			data := catalogFormViewData{
				baseViewData: s.base(r),
				Resource:     res,
				Fields:       fillFields(res.Fields, r.PostForm),
				Action:       action,
				Editing:      id != 0,
			}
			data.setError(err)
			s.renderTemplate(w, http.StatusBadRequest, "catalog_form.html", data)
			return
		}

		msg := res.Singular + " creado correctamente"
		if id != 0 {
			msg = res.Singular + " actualizado correctamente"
		}
		redirectWithSuccess(w, r, "/"+res.Slug, msg)
	}
}

func (s *server) handleCatalogDelete(res *catalogResource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := res.remove(r.Context(), principal(r), id); err != nil {
			if s.redirectOnAuthFailure(w, r, err) {
				return
			}
			log.Warn().Err(err).Str("resource", res.Slug).Int64("id", id).Msg("delete failed")
			data := catalogListViewData{baseViewData: s.base(r), Resource: res}
			data.setError(err)
			data.Rows, _ = res.list(r.Context(), principal(r))
			s.renderTemplate(w, http.StatusBadRequest, "catalog_list.html", data)
			return
		}
		redirectWithSuccess(w, r, "/"+res.Slug, res.Singular+" eliminado")
	}
}

func fillFields(fields []field, values url.Values) []field {
	out := make([]field, len(fields))
	for i, f := range fields {
		if values != nil {
			if v, ok := values[f.Name]; ok && len(v) > 0 {
				f.Value = v[0]
			}
		}
		out[i] = f
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// catalog lists the editable backend collections in navigation order.
func (s *server) catalog() []*catalogResource {
	api := s.api
	return []*catalogResource{
		{
			Slug:     "machines",
			Title:    "Máquinas",
			Singular: "Máquina",
			Columns:  []string{"Nombre", "Costo (USD)", "Vida útil (años)", "Mantenimiento (USD)"},
			Fields: []field{
				{Name: "nombre", Label: "Nombre", Type: "text"},
				{Name: "costo", Label: "Costo (USD)", Type: "number", Step: "0.01"},
				{Name: "vida_util_anios", Label: "Vida útil (años)", Type: "number", Step: "0.1"},
				{Name: "costo_mantenimiento", Label: "Costo de mantenimiento anual (USD)", Type: "number", Step: "0.01", Value: "0"},
			},
			list: func(ctx context.Context, p session.Principal) ([]catalogRow, error) {
				items, err := api.ListMachines(ctx, p)
				rows := make([]catalogRow, 0, len(items))
				for _, m := range items {
					rows = append(rows, catalogRow{ID: m.ID, Cells: []string{m.Nombre, money.FormatUSD(m.Costo), num(m.VidaUtilAnios), money.FormatUSD(m.CostoMantenimiento)}})
				}
				return rows, err
			},
			load: func(ctx context.Context, p session.Principal, id int64) (url.Values, error) {
				m, err := api.GetMachine(ctx, p, id)
				return url.Values{
					"nombre":              {m.Nombre},
					"costo":               {num(m.Costo)},
					"vida_util_anios":     {num(m.VidaUtilAnios)},
					"costo_mantenimiento": {num(m.CostoMantenimiento)},
				}, err
			},
			save: func(ctx context.Context, p session.Principal, id int64, f *formReader) error {
				form := machineForm{
					Nombre:             f.text("nombre"),
					Costo:              f.number("costo", "Costo"),
					VidaUtilAnios:      f.number("vida_util_anios", "Vida útil"),
					CostoMantenimiento: f.number("costo_mantenimiento", "Costo de mantenimiento"),
				}
				if err := f.check(form); err != nil {
					return err
				}
				in := domain.MachineInput(form)
				var err error
				if id == 0 {
					_, err = api.CreateMachine(ctx, p, in)
				} else {
					_, err = api.UpdateMachine(ctx, p, id, in)
				}
				return err
			},
			remove: api.DeleteMachine,
		},
		{
			Slug:     "workers",
			Title:    "Trabajadores",
			Singular: "Trabajador",
			Columns:  []string{"Nombre", "Rol", "Costo por hora (USD)", "Factor de trabajo"},
			Fields: []field{
				{Name: "nombre", Label: "Nombre", Type: "text"},
				{Name: "rol", Label: "Rol", Type: "text"},
				{Name: "costo_por_hora", Label: "Costo por hora", Type: "number", Step: "0.01"},
				{Name: "moneda", Label: "Moneda", Type: "select", Options: currencyOptions, Value: string(money.USD)},
				{Name: "factor_trabajo", Label: "Factor de trabajo", Type: "number", Step: "0.01", Value: "1", Help: "Fracción efectiva del tiempo, entre 0 y 1"},
			},
			list: func(ctx context.Context, p session.Principal) ([]catalogRow, error) {
				items, err := api.ListWorkers(ctx, p)
				rows := make([]catalogRow, 0, len(items))
				for _, wk := range items {
					rol := "-"
					if wk.Rol != nil && *wk.Rol != "" {
						rol = *wk.Rol
					}
					rows = append(rows, catalogRow{ID: wk.ID, Cells: []string{wk.Nombre, rol, money.FormatUSD(wk.CostoPorHora), num(wk.FactorTrabajo)}})
				}
				return rows, err
			},
			load: func(ctx context.Context, p session.Principal, id int64) (url.Values, error) {
				wk, err := api.GetWorker(ctx, p, id)
				v := url.Values{
					"nombre":         {wk.Nombre},
					"costo_por_hora": {num(wk.CostoPorHora)},
					"moneda":         {string(money.USD)},
					"factor_trabajo": {num(wk.FactorTrabajo)},
				}
				if wk.Rol != nil {
					v.Set("rol", *wk.Rol)
				}
				return v, err
			},
			save: func(ctx context.Context, p session.Principal, id int64, f *formReader) error {
				form := workerForm{
					Nombre:        f.text("nombre"),
					CostoPorHora:  f.number("costo_por_hora", "Costo por hora"),
					FactorTrabajo: f.number("factor_trabajo", "Factor de trabajo"),
				}
				if err := f.check(form); err != nil {
					return err
				}
				in := domain.WorkerInput{
					Nombre:        form.Nombre,
					CostoPorHora:  money.Amount{Currency: f.currency("moneda"), Value: form.CostoPorHora},
					FactorTrabajo: form.FactorTrabajo,
					Rol:           optionalText(f.text("rol")),
				}
				var err error
				if id == 0 {
					_, err = api.CreateWorker(ctx, p, in)
				} else {
					_, err = api.UpdateWorker(ctx, p, id, in)
				}
				return err
			},
			remove: api.DeleteWorker,
		},
		{
			Slug:     "materials",
			Title:    "Materiales",
			Singular: "Material",
			Columns:  []string{"Nombre", "Cantidad (g)", "Costo por unidad (USD)", "Costo por gramo (USD)"},
			Fields: []field{
				{Name: "nombre", Label: "Nombre", Type: "text"},
				{Name: "unidad", Label: "Unidad", Type: "select", Value: domain.UnitKilograms, Options: []option{
					{Value: domain.UnitKilograms, Label: "Kilogramos"},
					{Value: domain.UnitGrams, Label: "Gramos"},
				}},
				{Name: "cantidad", Label: "Cantidad por unidad de compra", Type: "number", Step: "0.001"},
				{Name: "costo_local", Label: "Costo por unidad de compra (ARS)", Type: "number", Step: "0.01"},
			},
			list: func(ctx context.Context, p session.Principal) ([]catalogRow, error) {
				items, err := api.ListMaterials(ctx, p)
				rows := make([]catalogRow, 0, len(items))
				for _, m := range items {
					rows = append(rows, catalogRow{ID: m.ID, Cells: []string{m.Nombre, num(m.CantidadDeMaterial), money.FormatUSD(m.CostoPorUnidad), num(m.CostoPorGramo)}})
				}
				return rows, err
			},
			load: func(ctx context.Context, p session.Principal, id int64) (url.Values, error) {
				m, err := api.GetMaterial(ctx, p, id)
				return url.Values{
					"nombre":   {m.Nombre},
					"unidad":   {domain.UnitGrams},
					"cantidad": {num(m.CantidadDeMaterial)},
				}, err
			},
			save: func(ctx context.Context, p session.Principal, id int64, f *formReader) error {
				form := materialForm{
					Nombre:     f.text("nombre"),
					Unidad:     f.text("unidad"),
					Cantidad:   f.number("cantidad", "Cantidad"),
					CostoLocal: f.number("costo_local", "Costo"),
				}
				if err := f.check(form); err != nil {
					return err
				}
				in := domain.NewMaterialInput(form.Nombre, form.Unidad, form.Cantidad, form.CostoLocal)
				var err error
				if id == 0 {
					_, err = api.CreateMaterial(ctx, p, in)
				} else {
					_, err = api.UpdateMaterial(ctx, p, id, in)
				}
				return err
			},
			remove: api.DeleteMaterial,
		},
		{
			Slug:     "settings",
			Title:    "Configuración",
			Singular: "Parámetro",
			Columns:  []string{"Clave", "Valor", "Descripción"},
			Fields: []field{
				{Name: "key", Label: "Clave", Type: "text"},
				{Name: "value", Label: "Valor", Type: "number", Step: "any"},
				{Name: "description", Label: "Descripción", Type: "textarea"},
			},
			list: func(ctx context.Context, p session.Principal) ([]catalogRow, error) {
				items, err := api.ListSettings(ctx, p)
				rows := make([]catalogRow, 0, len(items))
				for _, st := range items {
					desc := "-"
					if st.Description != nil && *st.Description != "" {
						desc = *st.Description
					}
					rows = append(rows, catalogRow{ID: st.ID, Cells: []string{st.Key, num(st.Value), desc}})
				}
				return rows, err
			},
			load: func(ctx context.Context, p session.Principal, id int64) (url.Values, error) {
				st, err := api.GetSetting(ctx, p, id)
				v := url.Values{"key": {st.Key}, "value": {num(st.Value)}}
				if st.Description != nil {
					v.Set("description", *st.Description)
				}
				return v, err
			},
			save: func(ctx context.Context, p session.Principal, id int64, f *formReader) error {
				form := settingForm{Key: f.text("key"), Value: f.number("value", "Valor")}
				if err := f.check(form); err != nil {
					return err
				}
				in := domain.SettingInput{Key: form.Key, Value: form.Value, Description: optionalText(f.text("description"))}
				var err error
				if id == 0 {
					_, err = api.CreateSetting(ctx, p, in)
				} else {
					_, err = api.UpdateSetting(ctx, p, id, in)
				}
				return err
			},
			remove: api.DeleteSetting,
		},
		{
			Slug:     "fixed-expenses",
			Title:    "Gastos fijos",
			Singular: "Gasto fijo",
			Columns:  []string{"Tipo de gasto", "Categoría", "Monto mensual (USD)"},
			Fields: []field{
				{Name: "tipo_gasto", Label: "Tipo de gasto", Type: "text"},
				{Name: "categoria", Label: "Categoría", Type: "select", Options: []option{
					{Value: "", Label: "Sin categoría"},
					{Value: "luz", Label: "Luz"},
					{Value: "agua", Label: "Agua"},
					{Value: "alquiler", Label: "Alquiler"},
					{Value: "internet", Label: "Internet"},
					{Value: "otros", Label: "Otros"},
				}},
				{Name: "monto", Label: "Monto mensual", Type: "number", Step: "0.01"},
				{Name: "moneda", Label: "Moneda", Type: "select", Options: currencyOptions, Value: string(money.ARS)},
			},
			list: func(ctx context.Context, p session.Principal) ([]catalogRow, error) {
				items, err := api.ListFixedExpenses(ctx, p)
				rows := make([]catalogRow, 0, len(items))
				for _, e := range items {
					cat := "-"
					if e.Categoria != nil && *e.Categoria != "" {
						cat = *e.Categoria
					}
					rows = append(rows, catalogRow{ID: e.ID, Cells: []string{e.TipoGasto, cat, money.FormatUSD(e.MontoUSD)}})
				}
				return rows, err
			},
			load: func(ctx context.Context, p session.Principal, id int64) (url.Values, error) {
				e, err := api.GetFixedExpense(ctx, p, id)
				v := url.Values{"tipo_gasto": {e.TipoGasto}, "monto": {num(e.MontoUSD)}, "moneda": {string(money.USD)}}
				if e.Categoria != nil {
					v.Set("categoria", *e.Categoria)
				}
				return v, err
			},
			save: func(ctx context.Context, p session.Principal, id int64, f *formReader) error {
				form := fixedExpenseForm{TipoGasto: f.text("tipo_gasto"), Monto: f.number("monto", "Monto")}
				if err := f.check(form); err != nil {
					return err
				}
				in := domain.FixedExpenseInput{
					TipoGasto: form.TipoGasto,
					Categoria: optionalText(f.text("categoria")),
					Monto:     money.Amount{Currency: f.currency("moneda"), Value: form.Monto},
				}
				var err error
				if id == 0 {
					_, err = api.CreateFixedExpense(ctx, p, in)
				} else {
					_, err = api.UpdateFixedExpense(ctx, p, id, in)
				}
				return err
			},
			remove: api.DeleteFixedExpense,
		},
		{
			Slug:     "salaries",
			Title:    "Salarios",
			Singular: "Salario",
			Columns:  []string{"Tipo de trabajador", "Salario mensual (USD)"},
			Fields: []field{
				{Name: "tipo_trabajador", Label: "Tipo de trabajador", Type: "text", Help: "Usa \"diseñador\" para la tarifa de diseño"},
				{Name: "salario_mensual", Label: "Salario mensual", Type: "number", Step: "0.01"},
				{Name: "moneda", Label: "Moneda", Type: "select", Options: currencyOptions, Value: string(money.ARS)},
			},
			list: func(ctx context.Context, p session.Principal) ([]catalogRow, error) {
				items, err := api.ListSalaries(ctx, p)
				rows := make([]catalogRow, 0, len(items))
				for _, sal := range items {
					rows = append(rows, catalogRow{ID: sal.ID, Cells: []string{sal.TipoTrabajador, money.FormatUSD(sal.SalarioMensual)}})
				}
				return rows, err
			},
			load: func(ctx context.Context, p session.Principal, id int64) (url.Values, error) {
				sal, err := api.GetSalary(ctx, p, id)
				return url.Values{
					"tipo_trabajador": {sal.TipoTrabajador},
					"salario_mensual": {num(sal.SalarioMensual)},
					"moneda":          {string(money.USD)},
				}, err
			},
			save: func(ctx context.Context, p session.Principal, id int64, f *formReader) error {
				form := salaryForm{TipoTrabajador: f.text("tipo_trabajador"), SalarioMensual: f.number("salario_mensual", "Salario mensual")}
				if err := f.check(form); err != nil {
					return err
				}
				in := domain.SalaryInput{
					TipoTrabajador: form.TipoTrabajador,
					SalarioMensual: money.Amount{Currency: f.currency("moneda"), Value: form.SalarioMensual},
				}
				var err error
				if id == 0 {
					_, err = api.CreateSalary(ctx, p, in)
				} else {
					_, err = api.UpdateSalary(ctx, p, id, in)
				}
				return err
			},
			remove: api.DeleteSalary,
		},
		{
			Slug:     "models3d",
			Title:    "Modelos 3D",
			Singular: "Modelo",
			Columns:  []string{"Nombre", "Dimensiones (mm)", "Horas estimadas"},
			Fields: []field{
				{Name: "nombre", Label: "Nombre", Type: "text"},
				{Name: "dimension_x", Label: "Dimensión X (mm)", Type: "number", Step: "0.1"},
				{Name: "dimension_y", Label: "Dimensión Y (mm)", Type: "number", Step: "0.1"},
				{Name: "dimension_z", Label: "Dimensión Z (mm)", Type: "number", Step: "0.1"},
				{Name: "horas_estimadas", Label: "Horas estimadas", Type: "number", Step: "0.1"},
			},
			list: func(ctx context.Context, p session.Principal) ([]catalogRow, error) {
				items, err := api.ListModels3D(ctx, p)
				rows := make([]catalogRow, 0, len(items))
				for _, m := range items {
					dims := num(m.DimensionX) + " × " + num(m.DimensionY) + " × " + num(m.DimensionZ)
					rows = append(rows, catalogRow{ID: m.ID, Cells: []string{m.Nombre, dims, num(m.HorasEstimadas)}})
				}
				return rows, err
			},
			load: func(ctx context.Context, p session.Principal, id int64) (url.Values, error) {
				m, err := api.GetModel3D(ctx, p, id)
				return url.Values{
					"nombre":          {m.Nombre},
					"dimension_x":     {num(m.DimensionX)},
					"dimension_y":     {num(m.DimensionY)},
					"dimension_z":     {num(m.DimensionZ)},
					"horas_estimadas": {num(m.HorasEstimadas)},
				}, err
			},
			save: func(ctx context.Context, p session.Principal, id int64, f *formReader) error {
				form := model3DForm{
					Nombre:         f.text("nombre"),
					DimensionX:     f.number("dimension_x", "Dimensión X"),
					DimensionY:     f.number("dimension_y", "Dimensión Y"),
					DimensionZ:     f.number("dimension_z", "Dimensión Z"),
					HorasEstimadas: f.number("horas_estimadas", "Horas estimadas"),
				}
				if err := f.check(form); err != nil {
					return err
				}
				in := domain.Model3DInput(form)
				var err error
				if id == 0 {
					_, err = api.CreateModel3D(ctx, p, in)
				} else {
					_, err = api.UpdateModel3D(ctx, p, id, in)
				}
				return err
			},
			remove: api.DeleteModel3D,
		},
	}
}

type machineForm struct {
	Nombre             string  `validate:"required" label:"Nombre"`
	Costo              float64 `validate:"gt=0" label:"Costo"`
	VidaUtilAnios      float64 `validate:"gt=0" label:"Vida útil"`
	CostoMantenimiento float64 `validate:"gte=0" label:"Costo de mantenimiento"`
}

type workerForm struct {
	Nombre        string  `validate:"required" label:"Nombre"`
	CostoPorHora  float64 `validate:"gt=0" label:"Costo por hora"`
	FactorTrabajo float64 `validate:"gt=0,lte=1" label:"Factor de trabajo"`
}

type materialForm struct {
	Nombre     string  `validate:"required" label:"Nombre"`
	Unidad     string  `validate:"oneof=gramos kilogramos" label:"Unidad"`
	Cantidad   float64 `validate:"gt=0" label:"Cantidad"`
	CostoLocal float64 `validate:"gt=0" label:"Costo"`
}

type settingForm struct {
	Key   string  `validate:"required" label:"Clave"`
	Value float64 `label:"Valor"`
}

type fixedExpenseForm struct {
	TipoGasto string  `validate:"required" label:"Tipo de gasto"`
	Monto     float64 `validate:"gt=0" label:"Monto"`
}

type salaryForm struct {
	TipoTrabajador string  `validate:"required" label:"Tipo de trabajador"`
	SalarioMensual float64 `validate:"gt=0" label:"Salario mensual"`
}

type model3DForm struct {
	Nombre         string  `validate:"required" label:"Nombre"`
	DimensionX     float64 `validate:"gt=0" label:"Dimensión X"`
	DimensionY     float64 `validate:"gt=0" label:"Dimensión Y"`
	DimensionZ     float64 `validate:"gt=0" label:"Dimensión Z"`
	HorasEstimadas float64 `validate:"gte=0" label:"Horas estimadas"`
}
