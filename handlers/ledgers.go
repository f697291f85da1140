package handlers

import (
	"net/http"
	"strings"

	"chantierbook/ledger"
	"chantierbook/models"
)

func BudgetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, site.Budget)
	case http.MethodPost:
		var input ledger.BudgetInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.SetBudget(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

// SARRateHandler is the step-up protected exchange-rate override: the
// admin password travels with the request and is rechecked on the spot.
func SARRateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Rate     float64 `json:"rate"`
		Password string  `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := svc.SetSARRate(sess, input.Rate, input.Password); err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func MaterialsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, site.Materials)
	case http.MethodPost:
		var input ledger.MaterialInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.AddMaterial(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func WorkersHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		// Optional trade filter, matched case-insensitively.
		filter := strings.ToLower(r.URL.Query().Get("trade"))
		workers := site.Workers
		if filter != "" {
			filtered := []models.Worker{}
			for _, wk := range workers {
				if strings.Contains(strings.ToLower(wk.Trade), filter) {
					filtered = append(filtered, wk)
				}
			}
			workers = filtered
		}
		sendData(w, workers)
	case http.MethodPost:
		var input ledger.WorkerInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.AddWorker(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func LocationsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, site.Locations)
	case http.MethodPost:
		var input ledger.LocationInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.AddLocation(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, site.Transactions)
	case http.MethodPost:
		var input ledger.TransactionInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.AddTransaction(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func UnforeseenHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	site, err := svc.SiteView(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, ledger.ComputeUnforeseen(site))
}

func DonorBudgetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, site.Donor.Budget)
	case http.MethodPost:
		var input ledger.DonorBudgetInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.SetDonorBudget(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func DonorSlicesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, site.Donor.Slices)
	case http.MethodPost:
		var input ledger.DonorSliceInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.AddDonorSlice(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func DonorSummaryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	site, err := svc.SiteView(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, ledger.ComputeDonorSummary(site))
}

func SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, site.Suggestions)
	case http.MethodPost:
		var input ledger.SuggestionsInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.SaveSuggestions(sess, input); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendMessage(w, r, http.StatusOK, "SuggestionsSaved")
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func JournalHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		site, err := svc.SiteView(sess)
		if err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendData(w, map[string]string{"journal": site.Journal})
	case http.MethodPost:
		var input struct {
			Journal string `json:"journal"`
		}
		if !decodeBody(w, r, &input) {
			return
		}
		if err := svc.UpdateJournal(sess, input.Journal); err != nil {
			sendOperationError(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
	default:
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

// HistoryHandler serves the audit trail, optionally filtered by entry type,
// detail substring and date range.
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	site, err := svc.SiteView(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	q := r.URL.Query()
	entries := ledger.FilterHistory(site.History, q.Get("type"), q.Get("name"), q.Get("from"), q.Get("to"))
	sendData(w, entries)
}
