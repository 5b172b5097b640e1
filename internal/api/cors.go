package api

import (
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

const (
	corsAllowHeaders = "Content-Type, Authorization, Accept, Last-Event-ID"
	corsMaxAge       = "86400"
)

// corsMethods lists every method registered on the API plus OPTIONS, sorted.
// Call it after all routes are registered.
func corsMethods(api huma.API) string {
	methods := []string{http.MethodOptions}
	for _, item := range api.OpenAPI().Paths {
		for _, op := range []*huma.Operation{item.Get, item.Put, item.Post, item.Delete, item.Patch} {
			if op != nil && !slices.Contains(methods, op.Method) {
				methods = append(methods, op.Method)
			}
		}
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

func (s *Server) setCORSHeaders(set func(key, value string)) {
	set("Access-Control-Allow-Origin", "*")
	set("Access-Control-Allow-Methods", s.allowMethods)
	set("Access-Control-Allow-Headers", corsAllowHeaders)
	set("Access-Control-Max-Age", corsMaxAge)
}

// cors adds CORS headers to API responses.
func (s *Server) cors(ctx huma.Context, next func(huma.Context)) {
	s.setCORSHeaders(ctx.SetHeader)
	next(ctx)
}

// preflight answers OPTIONS for any path. Huma routes by method, so
// preflights never reach the middleware chain.
func (s *Server) preflight(w http.ResponseWriter, _ *http.Request) {
	s.setCORSHeaders(w.Header().Set)
	w.WriteHeader(http.StatusNoContent)
}
