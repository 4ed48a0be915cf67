package providers

import (
	"github.com/samber/do/v2"

	"github.com/arcanaoficial/arcana-server/internal/checkout"
	"github.com/arcanaoficial/arcana-server/internal/config"
	"github.com/arcanaoficial/arcana-server/internal/leads"
	"github.com/arcanaoficial/arcana-server/internal/logger"
	"github.com/arcanaoficial/arcana-server/internal/service"
	"github.com/arcanaoficial/arcana-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideContentService provides the content service, indexing writes.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewContentService(storeHandle.Store, searchHandle.Service, log.Logger), nil
}

// ProvideDashboardService provides the subscriber dashboard.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewDashboardService(storeHandle.Store, log.Logger), nil
}

// ProvideLeadService provides lead capture.
func ProvideLeadService(i do.Injector) (*leads.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	validator := do.MustInvoke[*validation.Validator](i)

	client := leads.New(leads.Config{
		ScriptURL:           cfg.Leads.ScriptURL,
		AssumeOpaqueSuccess: cfg.Leads.AssumeOpaqueSuccess,
		Timeout:             cfg.Leads.Timeout,
	}, log.Logger)
	if !client.Enabled() {
		log.Warn("LEADS_SCRIPT_URL is not set; lead forms are disabled")
	}
	return leads.NewService(client, validator, log.Logger), nil
}

// ProvideCheckoutClient provides the hosted checkout client.
func ProvideCheckoutClient(i do.Injector) (*checkout.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := checkout.New(checkout.Config{
		SupabaseURL:          cfg.Checkout.SupabaseURL,
		AnonKey:              cfg.Checkout.AnonKey,
		SiteURL:              cfg.Checkout.SiteURL,
		SuccessPath:          cfg.Checkout.SuccessPath,
		CancelPath:           cfg.Checkout.CancelPath,
		ProductBasic:         cfg.Checkout.ProductBasic,
		ProductPremium:       cfg.Checkout.ProductPremium,
		ProductPremiumAnnual: cfg.Checkout.ProductPremiumAnnual,
		Timeout:              cfg.Checkout.Timeout,
	}, log.Logger)
	if !client.Enabled() {
		log.Warn("SUPABASE_URL is not set; checkout is disabled")
	}
	return client, nil
}
