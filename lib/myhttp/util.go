package myhttp

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

func HostnameWithScheme(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// Origin returns the browser origin of the request, or fallback when the request carries none.
func Origin(r *http.Request, fallback string) string {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" || origin == "null" {
		return fallback
	}
	return strings.TrimSuffix(origin, "/")
}

// AllowAnyOrigin sets permissive CORS headers; allowedHeaders lists the request headers browsers may send.
func AllowAnyOrigin(w http.ResponseWriter, allowedHeaders ...string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", strings.Join(allowedHeaders, ", "))
}

// GuessHostnameWithScheme returns the public base url of this service, for callbacks from outside.
func GuessHostnameWithScheme() string {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID != "" {
		return fmt.Sprintf("https://%s.appspot.com", projectID)
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s", port)
}
