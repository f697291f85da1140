package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chantierbook/auth"
	"chantierbook/i18n"
	"chantierbook/ledger"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func sendJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func sendData(w http.ResponseWriter, data any) {
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: data})
}

func sendMessage(w http.ResponseWriter, r *http.Request, status int, key string) {
	lang := i18n.DetectLanguage(r)
	sendJSONResponse(w, status, APIResponse{Status: "success", Message: i18n.T(lang, key)})
}

// sendOperationError maps the ledger error taxonomy onto HTTP statuses with
// localized messages. Unrecognized errors become a 500 without leaking the
// underlying message.
func sendOperationError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.DetectLanguage(r)

	var vErr *ledger.ValidationError
	if errors.As(err, &vErr) {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: i18n.T(lang, vErr.Key)})
		return
	}
	var pErr *ledger.PermissionError
	if errors.As(err, &pErr) {
		sendJSONResponse(w, http.StatusForbidden, APIResponse{Status: "error", Message: i18n.T(lang, pErr.Key)})
		return
	}
	var lErr *ledger.LockedError
	if errors.As(err, &lErr) {
		sendJSONResponse(w, http.StatusLocked, APIResponse{Status: "error", Message: i18n.T(lang, lErr.Key)})
		return
	}
	sendJSONResponse(w, http.StatusInternalServerError, APIResponse{Status: "error", Message: i18n.T(lang, "InternalServerError")})
}

func sendErrorKey(w http.ResponseWriter, r *http.Request, status int, key string) {
	lang := i18n.DetectLanguage(r)
	sendJSONResponse(w, status, APIResponse{Status: "error", Message: i18n.T(lang, key)})
}

// getSession rebuilds the operation session from the request cookie.
func getSession(r *http.Request) (ledger.Session, bool) {
	id := auth.GetAccountID(r)
	if id == "" {
		return ledger.Session{}, false
	}
	return ledger.Session{
		AccountID: id,
		Role:      auth.GetRole(r),
		SiteID:    auth.GetSiteID(r),
	}, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendErrorKey(w, r, http.StatusBadRequest, "InvalidRequestBody")
		return false
	}
	return true
}

func requireSession(w http.ResponseWriter, r *http.Request) (ledger.Session, bool) {
	sess, ok := getSession(r)
	if !ok {
		sendErrorKey(w, r, http.StatusUnauthorized, "Unauthorized")
	}
	return sess, ok
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		sendErrorKey(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return false
	}
	return true
}
