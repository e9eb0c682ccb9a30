package handlers

import (
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/karirconnect/backoffice/internal/company/auth"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/notify"
	"go.uber.org/zap"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Companies     *CompanyHandler
	Verifications *VerificationHandler
	Users         auth.UserLookup
	JWTSecret     string
	// Files serves stored uploads under /storage/; nil when files live
	// off-host.
	Files  http.Handler
	Logger *zap.Logger
}

type route struct {
	method  string
	pattern string
	public  bool
	policy  auth.Policy
	handler runtime.HandlerFunc
}

func (c RouterConfig) routes() []route {
	co, v := c.Companies, c.Verifications
	// The mux tries later registrations first, so a literal segment has to be
	// registered after the {id} pattern it would otherwise collide with.
	return []route{
		{method: http.MethodGet, pattern: "/companies", public: true, handler: co.PublicList},
		{method: http.MethodGet, pattern: "/companies/{slug}", public: true, handler: co.PublicShow},

		{method: http.MethodGet, pattern: "/dashboard", policy: auth.RegularUserOnly, handler: co.Dashboard},
		{method: http.MethodGet, pattern: "/admin/dashboard", policy: auth.AdminArea, handler: co.Dashboard},

		{method: http.MethodGet, pattern: "/admin/company/verify", policy: auth.CompanyAdminOnly, handler: v.Own},
		{method: http.MethodPost, pattern: "/admin/company/verify/submit", policy: auth.CompanyAdminOnly, handler: v.Submit},

		{method: http.MethodGet, pattern: "/admin/companies", policy: auth.SuperAdminOnly, handler: co.ListCompanies},
		{method: http.MethodPost, pattern: "/admin/companies", policy: auth.SuperAdminOnly, handler: co.CreateCompany},
		{method: http.MethodGet, pattern: "/admin/companies/{id}", policy: auth.SuperAdminOnly, handler: co.GetCompany},
		{method: http.MethodPost, pattern: "/admin/companies/{id}", policy: auth.SuperAdminOnly, handler: co.UpdateCompany},
		{method: http.MethodPut, pattern: "/admin/companies/{id}", policy: auth.SuperAdminOnly, handler: co.UpdateCompany},
		{method: http.MethodDelete, pattern: "/admin/companies/{id}", policy: auth.SuperAdminOnly, handler: co.DeleteCompany},
		{method: http.MethodPost, pattern: "/admin/companies/{id}/toggle-status", policy: auth.SuperAdminOnly, handler: co.ToggleStatus},
		{method: http.MethodPost, pattern: "/admin/companies/{id}/toggle-verification", policy: auth.SuperAdminOnly, handler: co.ToggleVerification},

		{method: http.MethodGet, pattern: "/admin/companies/verification", policy: auth.SuperAdminOnly, handler: v.List},
		{method: http.MethodGet, pattern: "/admin/companies/verification/{id}", policy: auth.SuperAdminOnly, handler: v.Show},
		{method: http.MethodPost, pattern: "/admin/companies/verification/{id}/update", policy: auth.SuperAdminOnly, handler: v.Update},
	}
}

// NewRouter builds the HTTP handler: routes behind their guards, wrapped in
// notification, authentication and request logging middleware.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	mux := runtime.NewServeMux()
	for _, rt := range cfg.routes() {
		h := rt.handler
		if !rt.public {
			h = auth.Guard(rt.policy, h)
		}
		if err := mux.HandlePath(rt.method, rt.pattern, h); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	root := http.NewServeMux()
	root.Handle("/", mux)
	if cfg.Files != nil {
		root.Handle(models.StoragePrefix, http.StripPrefix(models.StoragePrefix[:len(models.StoragePrefix)-1], cfg.Files))
	}

	var handler http.Handler = root
	handler = notify.Middleware(handler)
	handler = auth.HTTPMiddleware(handler, cfg.JWTSecret, cfg.Users, cfg.Logger)
	handler = requestLogger(handler, cfg.Logger)
	return handler, nil
}
