package variables

import (
	"time"

	"branded-email-workers/internal/models"
)

// Resolver flattens the variable layers for one render.
type Resolver struct {
	baseURL string
	now     func() time.Time
}

type Option func(*Resolver)

// WithClock fixes the time used for date variables.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithBaseURL sets the public URL used for login, dashboard and unsubscribe links.
func WithBaseURL(u string) Option {
	return func(r *Resolver) { r.baseURL = u }
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve builds the map without stored globals.
func (r *Resolver) Resolve(branding *models.AppBranding, userVariables, systemData map[string]interface{}) map[string]string {
	return r.ResolveWithGlobals(nil, branding, userVariables, systemData)
}

// ResolveWithGlobals layers, lowest first: registry defaults, stored globals,
// branding inline globals, legacy aliases, then caller values. Caller values
// never replace a system-generated global.
func (r *Resolver) ResolveWithGlobals(globals []models.GlobalVariable, branding *models.AppBranding, userVariables, systemData map[string]interface{}) map[string]string {
	if branding == nil {
		branding = &models.AppBranding{}
	}
	now := r.now()

	merged := make(map[string]interface{}, len(systemData)+len(userVariables))
	for k, v := range systemData {
		merged[k] = v
	}
	for k, v := range userVariables {
		merged[k] = v
	}
	out := Populate(branding, r.baseURL, merged, now)

	protected := make(map[string]bool)

	for _, g := range globals {
		if !g.IsActive {
			continue
		}
		if g.IsSystemGenerated {
			protected[g.Name] = true
			out[g.Name] = systemValue(g.Name, g.Value, systemData, now)
			continue
		}
		out[g.Name] = g.Value
	}

	for _, bv := range branding.GlobalVariables {
		if bv.IsSystemGenerated {
			protected[bv.Name] = true
			out[bv.Name] = systemValue(bv.Name, bv.Value, systemData, now)
			continue
		}
		out[bv.Name] = bv.Value
	}

	out["app_name"] = firstNonEmpty(branding.AppName, "Your App")
	out["site_name"] = firstNonEmpty(branding.AppName, "Your App")
	out["support_email"] = branding.Contact.SupportEmail
	out["website_url"] = branding.Contact.Website

	for k, v := range userVariables {
		if protected[k] {
			continue
		}
		out[k] = Stringify(v)
	}

	return out
}

func systemValue(name, stored string, systemData map[string]interface{}, now time.Time) string {
	switch name {
	case "current_year", "current_date", "current_month":
		return DateValues(now)[name]
	case "user_name", "user_email", "user_first_name", "user_last_name":
		if v := Stringify(systemData[name]); v != "" {
			return v
		}
	}
	return stored
}
