package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"chantierbook/auth"
	"chantierbook/config"
	"chantierbook/ledger"
	"chantierbook/store"
)

var testMux *http.ServeMux

func TestMain(m *testing.M) {
	// Setup
	config.AppConfig.SessionKey = "test-secret-key-for-api-handlers-test"
	config.AppConfig.AppName = "ChantierBookTest"
	config.AppConfig.Captcha = false
	auth.InitStore()

	dir, err := os.MkdirTemp("", "chantierbook-api-test")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	backend, err := store.NewFileBackend(filepath.Join(dir, "doc.json"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	st, err := store.Open(backend, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	testMux = http.NewServeMux()
	RegisterHandlers(testMux, ledger.NewService(st, log))

	// Run tests
	code := m.Run()

	// Teardown
	os.RemoveAll(dir)

	os.Exit(code)
}

// The signup and login limiters key on the client IP; each test scenario
// gets its own address so the per-IP counters stay independent.
var nextAddr int

func freshAddr() string {
	nextAddr++
	return fmt.Sprintf("10.0.0.%d:4000", nextAddr)
}

func doJSON(t *testing.T, method, path string, payload any, cookies []*http.Cookie, addr string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Marshal payload failed: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if addr != "" {
		req.RemoteAddr = addr
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	testMux.ServeHTTP(w, req)
	return w
}

func signupAndLogin(t *testing.T, id, role string) []*http.Cookie {
	t.Helper()
	addr := freshAddr()

	w := doJSON(t, "POST", "/api/v1/signup", map[string]string{
		"id": id, "password": "motdepasse", "confirm": "motdepasse", "role": role,
	}, nil, addr)
	if w.Code != http.StatusCreated {
		t.Fatalf("Signup failed, expected 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, "POST", "/api/v1/login", map[string]string{
		"id": id, "password": "motdepasse",
	}, nil, addr)
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed, expected 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Response is not JSON: %v", err)
	}
	return resp
}

func TestSignupLoginSiteFlow(t *testing.T) {
	cookies := signupAndLogin(t, "flow_admin", "admin")

	w := doJSON(t, "GET", "/api/v1/sites", nil, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("List sites failed, expected 200, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	sites, ok := resp.Data.([]interface{})
	if !ok || len(sites) != 1 {
		t.Fatalf("Expected one site, got %v", resp.Data)
	}
	site := sites[0].(map[string]interface{})
	if site["name"] != "Chantier principal" {
		t.Errorf("Default site name = %v", site["name"])
	}
	if site["current"] != true {
		t.Error("Login should select the default site")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	signupAndLogin(t, "wrongpwd_user", "member")
	w := doJSON(t, "POST", "/api/v1/login", map[string]string{
		"id": "wrongpwd_user", "password": "mauvais-mdp",
	}, nil, freshAddr())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	addr := freshAddr()
	for i := 0; i < 5; i++ {
		doJSON(t, "POST", "/api/v1/login", map[string]string{
			"id": "inconnu", "password": "mauvais",
		}, nil, addr)
	}
	w := doJSON(t, "POST", "/api/v1/login", map[string]string{
		"id": "inconnu", "password": "mauvais",
	}, nil, addr)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Sixth attempt should be blocked, got %d", w.Code)
	}
}

func TestUnauthorizedWithoutSession(t *testing.T) {
	for _, path := range []string{"/api/v1/indicators", "/api/v1/sites", "/api/v1/account"} {
		w := doJSON(t, "GET", path, nil, nil, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without a session: expected 401, got %d", path, w.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	w := doJSON(t, "GET", "/api/v1/signup", nil, nil, freshAddr())
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET signup: expected 405, got %d", w.Code)
	}
}

func TestLedgerAndIndicatorsFlow(t *testing.T) {
	cookies := signupAndLogin(t, "ledger_admin", "admin")

	w := doJSON(t, "POST", "/api/v1/budget", map[string]any{
		"initial_budget": 1_000_000.0, "sar_rate": 2.0,
	}, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Set budget failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, "POST", "/api/v1/materials", map[string]any{
		"name": "Ciment", "amount": 200_000.0, "payment": "credit", "date": "2024-01-10",
	}, cookies, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Add material failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, "POST", "/api/v1/transactions", map[string]any{
		"target_type": "diverse", "target": "Imprévu", "amount": 100_000.0, "date": "2024-01-13",
	}, cookies, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Add transaction failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, "GET", "/api/v1/indicators", nil, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Indicators failed: %d", w.Code)
	}
	resp := decodeResponse(t, w)
	ind := resp.Data.(map[string]interface{})
	checks := map[string]float64{
		"expenses_total":     100_000,
		"debts":              200_000,
		"balance":            700_000,
		"paid_total":         -100_000,
		"initial_budget_sar": 500_000,
	}
	for key, want := range checks {
		if got := ind[key].(float64); got != want {
			t.Errorf("indicators.%s = %v, want %v", key, got, want)
		}
	}

	// History filtering by entry type.
	w = doJSON(t, "GET", "/api/v1/history?type=material", nil, cookies, "")
	resp = decodeResponse(t, w)
	entries, _ := resp.Data.([]interface{})
	if len(entries) != 1 {
		t.Errorf("history?type=material returned %d entries, want 1", len(entries))
	}
}

func TestMemberCannotSetBudget(t *testing.T) {
	cookies := signupAndLogin(t, "budget_member", "member")
	w := doJSON(t, "POST", "/api/v1/budget", map[string]any{"initial_budget": 100.0}, cookies, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("Member setting the budget: expected 403, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestLockedSiteReturns423(t *testing.T) {
	cookies := signupAndLogin(t, "lock_admin", "admin")

	w := doJSON(t, "POST", "/api/v1/sites/lock", nil, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Lock failed: %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if locked := resp.Data.(map[string]interface{})["locked"]; locked != true {
		t.Fatalf("Expected locked=true, got %v", locked)
	}

	w = doJSON(t, "POST", "/api/v1/materials", map[string]any{
		"name": "Ciment", "amount": 10.0, "payment": "cash", "date": "2024-01-01",
	}, cookies, "")
	if w.Code != http.StatusLocked {
		t.Errorf("Write on a locked site: expected 423, got %d", w.Code)
	}

	// Unlock is always allowed.
	w = doJSON(t, "POST", "/api/v1/sites/lock", nil, cookies, "")
	if w.Code != http.StatusOK {
		t.Errorf("Unlock failed: %d", w.Code)
	}
}

func TestSiteSelectSwitchesCookie(t *testing.T) {
	cookies := signupAndLogin(t, "select_admin", "admin")

	w := doJSON(t, "POST", "/api/v1/sites/duplicate", nil, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Duplicate failed: %d %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	newID := resp.Data.(map[string]interface{})["site_id"].(string)

	w = doJSON(t, "POST", "/api/v1/sites/select", map[string]string{"site_id": newID}, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Select failed: %d %s", w.Code, w.Body.String())
	}
	// The refreshed cookie carries the new current site.
	w = doJSON(t, "GET", "/api/v1/sites", nil, w.Result().Cookies(), "")
	resp = decodeResponse(t, w)
	for _, raw := range resp.Data.([]interface{}) {
		site := raw.(map[string]interface{})
		if site["id"] == newID && site["current"] != true {
			t.Error("Selected site should be marked current")
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	cookies := signupAndLogin(t, "export_admin", "admin")

	w := doJSON(t, "GET", "/api/v1/export", nil, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Export failed: %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "sauvegarde-chantier.json") {
		t.Errorf("Export Content-Disposition = %q", cd)
	}
	snapshot := w.Body.Bytes()

	req := httptest.NewRequest("POST", "/api/v1/import", bytes.NewReader(snapshot))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	testMux.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("Import failed: %d %s", w2.Code, w2.Body.String())
	}

	// Malformed documents are rejected.
	req = httptest.NewRequest("POST", "/api/v1/import", strings.NewReader("{pas du json"))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w3 := httptest.NewRecorder()
	testMux.ServeHTTP(w3, req)
	if w3.Code != http.StatusBadRequest {
		t.Errorf("Malformed import: expected 400, got %d", w3.Code)
	}
}

func TestSimulatedExports(t *testing.T) {
	cookies := signupAndLogin(t, "sim_admin", "admin")
	for _, path := range []string{"/api/v1/export/pdf", "/api/v1/inventory/excel", "/api/v1/donor/export/csv"} {
		w := doJSON(t, "POST", path, nil, cookies, "")
		if w.Code != http.StatusOK {
			t.Errorf("POST %s: expected 200, got %d", path, w.Code)
		}
		resp := decodeResponse(t, w)
		if resp.Message == "" {
			t.Errorf("POST %s: expected the simulated-export message", path)
		}
	}
}

func TestAccountThemeToggle(t *testing.T) {
	cookies := signupAndLogin(t, "theme_user", "member")
	w := doJSON(t, "POST", "/api/v1/account/theme", nil, cookies, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Theme toggle failed: %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if theme := resp.Data.(map[string]interface{})["theme"]; theme != "sombre" {
		t.Errorf("First toggle should yield sombre, got %v", theme)
	}
}
