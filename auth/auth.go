package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"

	"chantierbook/config"
)

var Store *sessions.CookieStore

func InitStore() {
	// Derive two 32-byte keys from the session key to ensure secure encryption
	// Auth key for signing (HMAC)
	authKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "auth"))
	// Encryption key for content encryption (AES)
	encKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "encryption"))

	Store = sessions.NewCookieStore(authKey[:], encKey[:])

	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   config.AppConfig.ListenPort != 8080, // Default to true unless dev port
		SameSite: http.SameSiteLaxMode,
	}
}

const SessionName = "chantierbook-session"

func GetAccountID(r *http.Request) string {
	session, _ := Store.Get(r, SessionName)
	if id, ok := session.Values["accountID"].(string); ok {
		return id
	}
	return ""
}

func GetRole(r *http.Request) string {
	session, _ := Store.Get(r, SessionName)
	if role, ok := session.Values["role"].(string); ok {
		return role
	}
	return ""
}

func IsAdmin(r *http.Request) bool {
	return GetRole(r) == "admin"
}

// GetSiteID returns the current site of the session, or "" when signed out.
func GetSiteID(r *http.Request) string {
	session, _ := Store.Get(r, SessionName)
	if id, ok := session.Values["siteID"].(string); ok {
		return id
	}
	return ""
}

func SetSession(w http.ResponseWriter, r *http.Request, accountID, role, siteID string) {
	session, _ := Store.Get(r, SessionName)
	session.Values["accountID"] = accountID
	session.Values["role"] = role
	session.Values["siteID"] = siteID
	session.Save(r, w)
}

// SetCurrentSite changes only the current site of an existing session.
func SetCurrentSite(w http.ResponseWriter, r *http.Request, siteID string) {
	session, _ := Store.Get(r, SessionName)
	session.Values["siteID"] = siteID
	session.Save(r, w)
}

func ClearSession(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, SessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
}
