package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/session"
)

// Tenants

func (c *Client) ListTenants(ctx context.Context, p session.Principal) ([]domain.Tenant, error) {
	return get[[]domain.Tenant](ctx, c, p, "/tenants", nil)
}

func (c *Client) GetTenant(ctx context.Context, p session.Principal, id int64) (domain.Tenant, error) {
	return get[domain.Tenant](ctx, c, p, idPath("/tenants", id), nil)
}

// CreateTenant returns the new tenant including its access key, which is
// shown to the user once.
func (c *Client) CreateTenant(ctx context.Context, p session.Principal, in domain.CreateTenant) (domain.Tenant, error) {
	return send[domain.Tenant](ctx, c, p, http.MethodPost, "/tenants", in)
}

// LoginTenant is sent anonymously; the credentials travel in the body.
func (c *Client) LoginTenant(ctx context.Context, in domain.TenantLogin) (domain.TenantLoginResponse, error) {
	return send[domain.TenantLoginResponse](ctx, c, session.Anonymous{}, http.MethodPost, "/tenants/login", in)
}

func (c *Client) RegenerateTenantKey(ctx context.Context, p session.Principal, id int64) (domain.Tenant, error) {
	return send[domain.Tenant](ctx, c, p, http.MethodPost, idPath("/tenants", id, "/regenerate-key"), struct{}{})
}

func (c *Client) CreateTenantDatabase(ctx context.Context, p session.Principal, id int64) error {
	return c.do(ctx, p, call{method: http.MethodPost, path: idPath("/tenants", id, "/database/create"), body: struct{}{}}, nil)
}

func (c *Client) DeleteTenantDatabase(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/tenants", id, "/database"))
}

// Admin

func (c *Client) AdminListTenants(ctx context.Context, p session.Principal) ([]domain.Tenant, error) {
	return get[[]domain.Tenant](ctx, c, p, "/admin/tenants", nil)
}

func (c *Client) AdminDeleteTenant(ctx context.Context, p session.Principal, id int64) (domain.MessageResponse, error) {
	return send[domain.MessageResponse](ctx, c, p, http.MethodDelete, idPath("/admin/tenants", id), nil)
}

func (c *Client) AdminMarkTenantForDeletion(ctx context.Context, p session.Principal, id int64) (domain.Tenant, error) {
	return send[domain.Tenant](ctx, c, p, http.MethodPut, idPath("/admin/tenants", id, "/mark-for-deletion"), struct{}{})
}

func (c *Client) AdminUnmarkTenantForDeletion(ctx context.Context, p session.Principal, id int64) (domain.Tenant, error) {
	return send[domain.Tenant](ctx, c, p, http.MethodPut, idPath("/admin/tenants", id, "/unmark-for-deletion"), struct{}{})
}

func (c *Client) AdminLogin(ctx context.Context, in domain.AdminLogin) (domain.AdminLoginResponse, error) {
	return send[domain.AdminLoginResponse](ctx, c, session.Anonymous{}, http.MethodPost, "/auth/admin/login", in)
}

func (c *Client) AdminMe(ctx context.Context, p session.Principal) (domain.AdminUser, error) {
	return get[domain.AdminUser](ctx, c, p, "/auth/admin/me", nil)
}

// Machines

func (c *Client) ListMachines(ctx context.Context, p session.Principal) ([]domain.Machine, error) {
	return get[[]domain.Machine](ctx, c, p, "/machines", nil)
}

func (c *Client) GetMachine(ctx context.Context, p session.Principal, id int64) (domain.Machine, error) {
	return get[domain.Machine](ctx, c, p, idPath("/machines", id), nil)
}

func (c *Client) CreateMachine(ctx context.Context, p session.Principal, in domain.MachineInput) (domain.Machine, error) {
	return send[domain.Machine](ctx, c, p, http.MethodPost, "/machines", in)
}

func (c *Client) UpdateMachine(ctx context.Context, p session.Principal, id int64, in domain.MachineInput) (domain.Machine, error) {
	return send[domain.Machine](ctx, c, p, http.MethodPut, idPath("/machines", id), in)
}

func (c *Client) DeleteMachine(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/machines", id))
}

// Workers

func (c *Client) ListWorkers(ctx context.Context, p session.Principal) ([]domain.Worker, error) {
	return get[[]domain.Worker](ctx, c, p, "/workers", nil)
}

func (c *Client) GetWorker(ctx context.Context, p session.Principal, id int64) (domain.Worker, error) {
	return get[domain.Worker](ctx, c, p, idPath("/workers", id), nil)
}

func (c *Client) CreateWorker(ctx context.Context, p session.Principal, in domain.WorkerInput) (domain.Worker, error) {
	return send[domain.Worker](ctx, c, p, http.MethodPost, "/workers", in)
}

func (c *Client) UpdateWorker(ctx context.Context, p session.Principal, id int64, in domain.WorkerInput) (domain.Worker, error) {
	return send[domain.Worker](ctx, c, p, http.MethodPut, idPath("/workers", id), in)
}

func (c *Client) DeleteWorker(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/workers", id))
}

// Materials

func (c *Client) ListMaterials(ctx context.Context, p session.Principal) ([]domain.Material, error) {
	return get[[]domain.Material](ctx, c, p, "/materials", nil)
}

func (c *Client) GetMaterial(ctx context.Context, p session.Principal, id int64) (domain.Material, error) {
	return get[domain.Material](ctx, c, p, idPath("/materials", id), nil)
}

func (c *Client) CreateMaterial(ctx context.Context, p session.Principal, in domain.MaterialInput) (domain.Material, error) {
	return send[domain.Material](ctx, c, p, http.MethodPost, "/materials", in)
}

func (c *Client) UpdateMaterial(ctx context.Context, p session.Principal, id int64, in domain.MaterialInput) (domain.Material, error) {
	return send[domain.Material](ctx, c, p, http.MethodPut, idPath("/materials", id), in)
}

func (c *Client) DeleteMaterial(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/materials", id))
}

// Settings

func (c *Client) ListSettings(ctx context.Context, p session.Principal) ([]domain.Setting, error) {
	return get[[]domain.Setting](ctx, c, p, "/settings", nil)
}

func (c *Client) GetSetting(ctx context.Context, p session.Principal, id int64) (domain.Setting, error) {
	return get[domain.Setting](ctx, c, p, idPath("/settings", id), nil)
}

func (c *Client) CreateSetting(ctx context.Context, p session.Principal, in domain.SettingInput) (domain.Setting, error) {
	return send[domain.Setting](ctx, c, p, http.MethodPost, "/settings", in)
}

func (c *Client) UpdateSetting(ctx context.Context, p session.Principal, id int64, in domain.SettingInput) (domain.Setting, error) {
	return send[domain.Setting](ctx, c, p, http.MethodPut, idPath("/settings", id), in)
}

func (c *Client) DeleteSetting(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/settings", id))
}

// Benefit returns the default profit margin setting.
func (c *Client) Benefit(ctx context.Context, p session.Principal) (domain.Setting, error) {
	return get[domain.Setting](ctx, c, p, "/settings/benefit", nil)
}

// Currency

// LatestCurrencyRate returns the stored ARS/USD quote; refresh asks the
// backend to fetch a new one first.
func (c *Client) LatestCurrencyRate(ctx context.Context, p session.Principal, refresh bool) (domain.CurrencyRate, error) {
	var query map[string][]string
	if refresh {
		query = map[string][]string{"refresh": {"true"}}
	}
	return get[domain.CurrencyRate](ctx, c, p, "/currency/latest", query)
}

// Fixed expenses

func (c *Client) ListFixedExpenses(ctx context.Context, p session.Principal) ([]domain.FixedExpense, error) {
	return get[[]domain.FixedExpense](ctx, c, p, "/fixed-expenses", nil)
}

func (c *Client) GetFixedExpense(ctx context.Context, p session.Principal, id int64) (domain.FixedExpense, error) {
	return get[domain.FixedExpense](ctx, c, p, idPath("/fixed-expenses", id), nil)
}

func (c *Client) CreateFixedExpense(ctx context.Context, p session.Principal, in domain.FixedExpenseInput) (domain.FixedExpense, error) {
	return send[domain.FixedExpense](ctx, c, p, http.MethodPost, "/fixed-expenses", in)
}

func (c *Client) UpdateFixedExpense(ctx context.Context, p session.Principal, id int64, in domain.FixedExpenseInput) (domain.FixedExpense, error) {
	return send[domain.FixedExpense](ctx, c, p, http.MethodPut, idPath("/fixed-expenses", id), in)
}

func (c *Client) DeleteFixedExpense(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/fixed-expenses", id))
}

// Salaries

func (c *Client) ListSalaries(ctx context.Context, p session.Principal) ([]domain.Salary, error) {
	return get[[]domain.Salary](ctx, c, p, "/salaries", nil)
}

func (c *Client) GetSalary(ctx context.Context, p session.Principal, id int64) (domain.Salary, error) {
	return get[domain.Salary](ctx, c, p, idPath("/salaries", id), nil)
}

func (c *Client) CreateSalary(ctx context.Context, p session.Principal, in domain.SalaryInput) (domain.Salary, error) {
	return send[domain.Salary](ctx, c, p, http.MethodPost, "/salaries", in)
}

func (c *Client) UpdateSalary(ctx context.Context, p session.Principal, id int64, in domain.SalaryInput) (domain.Salary, error) {
	return send[domain.Salary](ctx, c, p, http.MethodPut, idPath("/salaries", id), in)
}

func (c *Client) DeleteSalary(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/salaries", id))
}

// 3D models

func (c *Client) ListModels3D(ctx context.Context, p session.Principal) ([]domain.Model3D, error) {
	return get[[]domain.Model3D](ctx, c, p, "/models3d", nil)
}

func (c *Client) GetModel3D(ctx context.Context, p session.Principal, id int64) (domain.Model3D, error) {
	return get[domain.Model3D](ctx, c, p, idPath("/models3d", id), nil)
}

func (c *Client) CreateModel3D(ctx context.Context, p session.Principal, in domain.Model3DInput) (domain.Model3D, error) {
	return send[domain.Model3D](ctx, c, p, http.MethodPost, "/models3d", in)
}

func (c *Client) UpdateModel3D(ctx context.Context, p session.Principal, id int64, in domain.Model3DInput) (domain.Model3D, error) {
	return send[domain.Model3D](ctx, c, p, http.MethodPut, idPath("/models3d", id), in)
}

func (c *Client) DeleteModel3D(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/models3d", id))
}

// Costs and prints

func (c *Client) Calculate(ctx context.Context, p session.Principal, in domain.CalculateRequest) (domain.CostBreakdown, error) {
	return send[domain.CostBreakdown](ctx, c, p, http.MethodPost, "/costs/calculate", in)
}

func (c *Client) ListPrints(ctx context.Context, p session.Principal) ([]domain.Print, error) {
	return get[[]domain.Print](ctx, c, p, "/prints", nil)
}

func (c *Client) GetPrint(ctx context.Context, p session.Principal, id int64) (domain.Print, error) {
	return get[domain.Print](ctx, c, p, idPath("/prints", id), nil)
}

func (c *Client) CreatePrint(ctx context.Context, p session.Principal, in domain.CreatePrint) (domain.Print, error) {
	return send[domain.Print](ctx, c, p, http.MethodPost, "/prints", in)
}

// CreatePrintFromCalculation saves the draft with the cost fields of the
// breakdown it was quoted with.
func (c *Client) CreatePrintFromCalculation(ctx context.Context, p session.Principal, d domain.PrintDraft, b domain.CostBreakdown, valorDolar float64) (domain.Print, error) {
	return c.CreatePrint(ctx, p, domain.NewPrintFromCalculation(d, b, valorDolar))
}

func (c *Client) UpdatePrint(ctx context.Context, p session.Principal, id int64, in domain.UpdatePrint) (domain.Print, error) {
	return send[domain.Print](ctx, c, p, http.MethodPut, idPath("/prints", id), in)
}

func (c *Client) DeletePrint(ctx context.Context, p session.Principal, id int64) error {
	return del(ctx, c, p, idPath("/prints", id))
}

func (c *Client) PrintsSummary(ctx context.Context, p session.Principal, f domain.SummaryFilter) (domain.PrintSummary, error) {
	query := map[string][]string{}
	if f.StartDate != "" {
		query["start_date"] = []string{f.StartDate}
	}
	if f.EndDate != "" {
		query["end_date"] = []string{f.EndDate}
	}
	if f.IncludeLabor != nil {
		query["include_labor"] = []string{strconv.FormatBool(*f.IncludeLabor)}
	}
	return get[domain.PrintSummary](ctx, c, p, "/prints/summary", query)
}
