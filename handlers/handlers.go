package handlers

import (
	"net/http"

	"github.com/dchest/captcha"

	"chantierbook/ledger"
)

// svc is the operation service behind every endpoint, set once at startup.
var svc *ledger.Service

func RegisterHandlers(mux *http.ServeMux, service *ledger.Service) {
	svc = service

	// Auth
	mux.HandleFunc("/api/v1/signup", SignupHandler)
	mux.HandleFunc("/api/v1/login", LoginHandler)
	mux.HandleFunc("/api/v1/logout", LogoutHandler)
	mux.HandleFunc("/api/v1/captcha", NewCaptchaHandler)
	mux.Handle("/captcha/", captcha.Server(captcha.StdWidth, captcha.StdHeight))

	// Account settings
	mux.HandleFunc("/api/v1/account", AccountHandler)
	mux.HandleFunc("/api/v1/account/theme", ToggleThemeHandler)
	mux.HandleFunc("/api/v1/account/avatar", AvatarHandler)
	mux.HandleFunc("/api/v1/activation", ActivationHandler)

	// Site lifecycle
	mux.HandleFunc("/api/v1/sites", ListSitesHandler)
	mux.HandleFunc("/api/v1/sites/select", SelectSiteHandler)
	mux.HandleFunc("/api/v1/sites/rename", RenameSiteHandler)
	mux.HandleFunc("/api/v1/sites/duplicate", DuplicateSiteHandler)
	mux.HandleFunc("/api/v1/sites/archive", ArchiveSiteHandler)
	mux.HandleFunc("/api/v1/sites/restore", RestoreSitesHandler)
	mux.HandleFunc("/api/v1/sites/lock", ToggleLockHandler)
	mux.HandleFunc("/api/v1/sites/delete", DeleteSiteHandler)

	// Ledgers
	mux.HandleFunc("/api/v1/budget", BudgetHandler)
	mux.HandleFunc("/api/v1/budget/rate", SARRateHandler)
	mux.HandleFunc("/api/v1/materials", MaterialsHandler)
	mux.HandleFunc("/api/v1/workers", WorkersHandler)
	mux.HandleFunc("/api/v1/locations", LocationsHandler)
	mux.HandleFunc("/api/v1/transactions", TransactionsHandler)
	mux.HandleFunc("/api/v1/transactions/unforeseen", UnforeseenHandler)
	mux.HandleFunc("/api/v1/donor/budget", DonorBudgetHandler)
	mux.HandleFunc("/api/v1/donor/slices", DonorSlicesHandler)
	mux.HandleFunc("/api/v1/donor/summary", DonorSummaryHandler)
	mux.HandleFunc("/api/v1/suggestions", SuggestionsHandler)
	mux.HandleFunc("/api/v1/journal", JournalHandler)
	mux.HandleFunc("/api/v1/history", HistoryHandler)

	// Aggregates
	mux.HandleFunc("/api/v1/indicators", IndicatorsHandler)
	mux.HandleFunc("/api/v1/inventory", InventoryHandler)

	// Whole-document transfer
	mux.HandleFunc("/api/v1/export", ExportHandler)
	mux.HandleFunc("/api/v1/import", ImportHandler)

	// The original UI only simulates these exports; the endpoints answer
	// with the same message.
	for _, path := range []string{
		"/api/v1/export/pdf",
		"/api/v1/export/excel",
		"/api/v1/export/zip",
		"/api/v1/inventory/pdf",
		"/api/v1/inventory/excel",
		"/api/v1/donor/export/csv",
		"/api/v1/donor/export/pdf",
	} {
		mux.HandleFunc(path, SimulatedExportHandler)
	}
}
