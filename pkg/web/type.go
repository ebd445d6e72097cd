package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"
)

// Server wraps up all the request routers and associated components
// that serve various parts of the xstatic stack.
type Server struct {
	l hclog.Logger
	r chi.Router

	n *http.Server
}
