package httpserver

import (
	"net/http"
	"time"
)

// New wraps the router in an http.Server tuned for the registry API. The
// write timeout leaves headroom for bulk uploads and zip generation, which
// take longer than a single issuance round trip.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
