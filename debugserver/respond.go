package debugserver

import (
	"net/http"
	"time"

	"github.com/hazyhaar/timetravel/codec"
)

// APIError is the error payload of every non-2xx response.
type APIError struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// TimeNow abstracts time for tests.
var TimeNow = func() time.Time { return time.Now() }

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := codec.ToJSON(v)
	if err != nil {
		GetLogger(r.Context()).Error("debugserver: encode response", "error", err)
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	GetLogger(r.Context()).Warn("debugserver: request failed", "status", status, "error", err)
	writeJSON(w, r, status, APIError{
		Error:     err.Error(),
		Timestamp: TimeNow().UTC().Format(time.RFC3339),
	})
}
