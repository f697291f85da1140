package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"

	"chantierbook/auth"
	"chantierbook/config"
	"chantierbook/handlers"
	"chantierbook/ledger"
	"chantierbook/store"
)

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The presentation layer runs in the browser; allow its origin.
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func openBackend() (store.Backend, error) {
	if config.AppConfig.Storage == "sqlite" {
		return store.NewSQLiteBackend(config.AppConfig.DataFile)
	}
	return store.NewFileBackend(config.AppConfig.DataFile)
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("CHANTIERBOOK_LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	if err := config.LoadConfig("config.json"); err != nil {
		log.WithError(err).Fatal("error loading config")
	}

	auth.InitStore()

	backend, err := openBackend()
	if err != nil {
		log.WithError(err).Fatal("error opening storage backend")
	}

	st, err := store.Open(backend, log)
	if err != nil {
		log.WithError(err).Fatal("error loading document")
	}
	defer st.Close()

	svc := ledger.NewService(st, log)

	mux := http.NewServeMux()
	handlers.RegisterHandlers(mux, svc)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.ListenIP, config.AppConfig.ListenPort)
	log.WithFields(logrus.Fields{
		"addr":    addr,
		"app":     config.AppConfig.AppName,
		"storage": config.AppConfig.Storage,
	}).Info("server starting")

	// CSRF Protection
	// We need a 32-byte key. Using session key for now, assuming it's suitable.
	// In production, this should be a separate key.
	csrfMiddleware := csrf.Protect(
		[]byte(config.AppConfig.SessionKey),
		csrf.Secure(false), // Set to true in production with HTTPS
		csrf.Path("/"),
	)

	if err := http.ListenAndServe(addr, CORSMiddleware(csrfMiddleware(mux))); err != nil {
		log.Fatal(err)
	}
}
