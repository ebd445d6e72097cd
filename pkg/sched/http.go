package sched

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HTTPEntry provides the mountpoint for this service into the shared
// webserver routing tree.
func (s *Scheduler) HTTPEntry() chi.Router {
	r := chi.NewRouter()

	r.Get("/queue", s.httpQueue)
	return r
}

func (s *Scheduler) httpQueue(w http.ResponseWriter, r *http.Request) {
	s.queueMutex.Lock()
	defer s.queueMutex.Unlock()

	enc := json.NewEncoder(w)
	w.Header().Set("Content-Type", "application/json")
	enc.Encode(s.queue)
}
