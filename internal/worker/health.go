// Package worker exposes the liveness/readiness endpoints for the
// receipt worker process.
package worker

import "net/http"

func HealthHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))

		if err != nil {
			return
		}
	})

	return mux
}
