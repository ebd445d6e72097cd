package pipeline

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HTTPEntry provides the mountpoint for this service into the shared
// webserver routing tree.
func (p *Pipeline) HTTPEntry() chi.Router {
	r := chi.NewRouter()

	r.Get("/status", p.httpStatus)
	r.Get("/status/{triple}", p.httpStatusOne)
	return r
}

func (p *Pipeline) httpStatus(w http.ResponseWriter, r *http.Request) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()

	enc := json.NewEncoder(w)
	w.Header().Set("Content-Type", "application/json")
	enc.Encode(p.status)
}

func (p *Pipeline) httpStatusOne(w http.ResponseWriter, r *http.Request) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()

	s, ok := p.status[chi.URLParam(r, "triple")]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	enc := json.NewEncoder(w)
	w.Header().Set("Content-Type", "application/json")
	enc.Encode(s)
}
