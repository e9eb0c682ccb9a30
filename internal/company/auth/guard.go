package auth

import (
	"encoding/json"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/karirconnect/backoffice/internal/company/models"
)

const (
	MsgNoCompany    = "Access denied. Please contact support to associate your account with a company."
	MsgAccessDenied = "Access denied."

	LoginPath          = "/login"
	AdminDashboardPath = "/admin/dashboard"
	HomePath           = "/"
)

// Policy names who may enter a route.
type Policy int

const (
	RegularUserOnly Policy = iota
	CompanyAdminOnly
	SuperAdminOnly
	// AdminArea admits super admins and company admins bound to a company.
	AdminArea
)

// Outcome is what the guard does with a request.
type Outcome int

const (
	Proceed Outcome = iota
	Redirect
	Forbid
)

// Decision is the result of Evaluate.
type Decision struct {
	Outcome  Outcome
	Location string
	Message  string
}

func proceed() Decision              { return Decision{Outcome: Proceed} }
func redirect(to string) Decision    { return Decision{Outcome: Redirect, Location: to} }
func forbid(message string) Decision { return Decision{Outcome: Forbid, Message: message} }

// Evaluate applies policy to the principal. It has no side effects.
func Evaluate(user *models.User, policy Policy) Decision {
	if user == nil {
		return redirect(LoginPath)
	}

	switch policy {
	case RegularUserOnly:
		switch user.Role {
		case models.RoleRegularUser:
			return proceed()
		case models.RoleSuperAdmin:
			return redirect(AdminDashboardPath)
		case models.RoleCompanyAdmin:
			if user.HasCompany() {
				return redirect(AdminDashboardPath)
			}
			return forbid(MsgNoCompany)
		default:
			return redirect(HomePath)
		}
	case CompanyAdminOnly:
		if user.Role == models.RoleCompanyAdmin && user.HasCompany() {
			return proceed()
		}
		return forbid(MsgNoCompany)
	case SuperAdminOnly:
		if user.Role == models.RoleSuperAdmin {
			return proceed()
		}
		return forbid(MsgAccessDenied)
	case AdminArea:
		switch user.Role {
		case models.RoleSuperAdmin:
			return proceed()
		case models.RoleCompanyAdmin:
			if user.HasCompany() {
				return proceed()
			}
			return forbid(MsgNoCompany)
		default:
			return forbid(MsgAccessDenied)
		}
	default:
		return forbid(MsgAccessDenied)
	}
}

// Guard wraps a route handler with the policy check.
func Guard(policy Policy, next runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		d := Evaluate(PrincipalFromContext(r.Context()), policy)
		switch d.Outcome {
		case Proceed:
			next(w, r, params)
		case Redirect:
			http.Redirect(w, r, d.Location, http.StatusFound)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": d.Message})
		}
	}
}
