package api

import (
	"net/http"

	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/log"
)

// writeError renders err as this engine's standard error envelope, using
// its Kind to pick the HTTP status (electionerr.Error.Write does the
// marshaling and status mapping). Anything that isn't an electionerr.Error
// is a programmer error and answers 500 without echoing its message to the
// client.
func writeError(w http.ResponseWriter, err error) {
	eerr, ok := err.(electionerr.Error)
	if !ok {
		log.Errorw(err, "api: unclassified error")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	eerr.Write(w)
}
