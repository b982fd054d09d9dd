package main

import (
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/internal/gateway"
	"github.com/careerpilot/backend/internal/handler"
)

type handlers struct {
	goals           *handler.GoalHandler
	applications    *handler.ApplicationHandler
	work            *handler.WorkExperienceHandler
	contacts        *handler.ContactHandler
	profile         *handler.ProfileHandler
	recommendations *handler.RecommendationHandler
	billing         *handler.BillingHandler
	webhooks        *handler.WebhookHandler
	universities    *handler.UniversityHandler
	admin           *handler.AdminHandler
}

// buildRules is the single ordered route table for /api. The first rule
// whose method and pattern match wins, so specific patterns come before
// parameterized ones.
func buildRules(h handlers) []gateway.Rule {
	adminRoles := []string{domain.RoleAdmin, domain.RoleSuperAdmin}
	universityRoles := []string{domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleUniversityAdmin}

	return []gateway.Rule{
		// Public surface. Webhooks authenticate via provider signatures.
		{Method: http.MethodGet, Pattern: "/api/plans", Public: true, Handler: handler.Plans},
		{Method: http.MethodPost, Pattern: "/api/webhooks/*", Public: true, Handler: h.webhooks.Receive},

		// Profile.
		{Method: http.MethodGet, Pattern: "/api/users/me", Handler: h.profile.Me},
		{Method: http.MethodPut, Pattern: "/api/users/me", Handler: h.profile.Update},
		{Method: http.MethodPut, Pattern: "/api/users/me/onboarding", Handler: h.profile.CompleteOnboarding},

		// Goals.
		{Method: http.MethodGet, Pattern: "/api/goals", Handler: h.goals.List},
		{Method: http.MethodPost, Pattern: "/api/goals", Handler: h.goals.Create},
		{Method: http.MethodGet, Pattern: "/api/goals/{id}", Handler: h.goals.Get},
		{Method: http.MethodPut, Pattern: "/api/goals/{id}", Handler: h.goals.Update},
		{Method: http.MethodDelete, Pattern: "/api/goals/{id}", Handler: h.goals.Delete},

		// Applications.
		{Method: http.MethodGet, Pattern: "/api/applications", Handler: h.applications.List},
		{Method: http.MethodPost, Pattern: "/api/applications", Handler: h.applications.Create},
		{Method: http.MethodGet, Pattern: "/api/applications/{id}", Handler: h.applications.Get},
		{Method: http.MethodPut, Pattern: "/api/applications/{id}", Handler: h.applications.Update},
		{Method: http.MethodDelete, Pattern: "/api/applications/{id}", Handler: h.applications.Delete},

		// Work experience.
		{Method: http.MethodGet, Pattern: "/api/work-experiences", Handler: h.work.List},
		{Method: http.MethodPost, Pattern: "/api/work-experiences", Handler: h.work.Create},
		{Method: http.MethodGet, Pattern: "/api/work-experiences/{id}", Handler: h.work.Get},
		{Method: http.MethodPut, Pattern: "/api/work-experiences/{id}", Handler: h.work.Update},
		{Method: http.MethodDelete, Pattern: "/api/work-experiences/{id}", Handler: h.work.Delete},

		// Contacts.
		{Method: http.MethodGet, Pattern: "/api/contacts", Handler: h.contacts.List},
		{Method: http.MethodPost, Pattern: "/api/contacts", Handler: h.contacts.Create},
		{Method: http.MethodGet, Pattern: "/api/contacts/{id}", Handler: h.contacts.Get},
		{Method: http.MethodPut, Pattern: "/api/contacts/{id}", Handler: h.contacts.Update},
		{Method: http.MethodDelete, Pattern: "/api/contacts/{id}", Handler: h.contacts.Delete},

		// Recommendations.
		{Method: http.MethodGet, Pattern: "/api/recommendations", Handler: h.recommendations.List},
		{Method: http.MethodPut, Pattern: "/api/recommendations/{id}/complete", Handler: h.recommendations.Complete},

		// Billing.
		{Method: http.MethodPost, Pattern: "/api/billing/checkout", Handler: h.billing.Checkout},
		{Method: http.MethodPost, Pattern: "/api/billing/portal", Handler: h.billing.Portal},
		{Method: http.MethodGet, Pattern: "/api/billing/subscription", Handler: h.billing.Get},
		{Method: http.MethodDelete, Pattern: "/api/billing/subscription", Handler: h.billing.Cancel},

		// Universities. Creation is locked to exactly super_admin.
		{Method: http.MethodGet, Pattern: "/api/universities", Roles: adminRoles, Handler: h.universities.List},
		{Method: http.MethodPost, Pattern: "/api/universities", StrictRole: domain.RoleSuperAdmin, Handler: h.universities.Create},
		{Method: http.MethodGet, Pattern: "/api/universities/{id:int}/students/export", Roles: universityRoles, Handler: h.universities.ExportStudents},
		{Method: http.MethodGet, Pattern: "/api/universities/{id:int}/students", Roles: universityRoles, Handler: h.universities.ListStudents},
		{Method: http.MethodGet, Pattern: "/api/universities/{id:int}/admins", Roles: adminRoles, Handler: h.universities.ListAdmins},
		{Method: http.MethodPost, Pattern: "/api/universities/{id:int}/admins", Roles: adminRoles, Handler: h.universities.AddAdmin},
		{Method: http.MethodGet, Pattern: "/api/universities/{id:int}", Roles: adminRoles, Handler: h.universities.Get},
		{Method: http.MethodPut, Pattern: "/api/universities/{id:int}", Roles: adminRoles, Handler: h.universities.Update},
		{Method: http.MethodDelete, Pattern: "/api/universities/{id:int}", Roles: adminRoles, Handler: h.universities.Delete},

		// Admin.
		{Method: http.MethodGet, Pattern: "/api/admin/users", Roles: adminRoles, Handler: h.admin.ListUsers},
		{Method: http.MethodGet, Pattern: "/api/admin/stats", Roles: adminRoles, Handler: h.admin.Stats},
		{Method: http.MethodGet, Pattern: "/api/admin/settings", Roles: adminRoles, Handler: h.admin.GetSettings},
		{Method: http.MethodPut, Pattern: "/api/admin/settings", StrictRole: domain.RoleSuperAdmin, Handler: h.admin.UpdateSettings},
	}
}
