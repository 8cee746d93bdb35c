package api

import (
	"encoding/json"
	"net/http"

	"github.com/amarvote/evoting/log"
)

// httpWriteJSON writes data as a 200 JSON response.
func httpWriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	jdata, err := json.Marshal(data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(jdata); err != nil {
		log.Warnw("api: failed to write http response", "error", err)
	}
}

// httpWriteOK writes a bare 200 response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// decodeJSON unmarshals the request body into dst, writing a standard
// error response and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, `{"error":"malformed request body"}`, http.StatusBadRequest)
		return false
	}
	return true
}
