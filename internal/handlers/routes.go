package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Router registers the page and API routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/analyze", h.AnalyzePage).Methods(http.MethodPost)
	r.HandleFunc("/describe", h.DescribePage).Methods(http.MethodPost)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet, http.MethodOptions)

	// API routes stay on the root router: method mismatches on sibling
	// subrouter routes surface as 404 instead of 405 in mux.
	r.HandleFunc("/api/analyze", h.AnalyzeAPI).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/describe", h.DescribeAPI).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/status", h.Status).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/pests", h.Pests).Methods(http.MethodGet, http.MethodOptions)

	return r
}
