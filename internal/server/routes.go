package server

import (
	"net/http"

	"cadpilot/internal/middleware"
)

func NewMux(sessionHandler *SessionHandler, exportHandler *ExportHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws/session", sessionHandler.HandleSessionWS)
	mux.HandleFunc("/exports/", exportHandler.HandleGet)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(mux)
}
