package uploadhttp

import (
	"encoding/json"
	"net/http"

	"github.com/upsrv/upserver/pkg/httperrors"
	"github.com/upsrv/upserver/pkg/uploadproto"
)

// putChunk принимает PUT-запросы с телом куска.
func (a *Server) putChunk(w http.ResponseWriter, r *http.Request) {
	req, ok := a.requireChunkRequest(w, r)
	if !ok {
		return
	}

	wantSha := r.Header.Get(uploadproto.HeaderChecksum)

	ack, err := a.Engine.ReceiveChunk(r.Context(), req.uploadID, req.idx, r.Body, wantSha)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ack)
}
