package middleware

import "net/http"

// maxRequestBody caps request bodies, uploads included. Individual assets
// have a much lower ceiling enforced by the asset store.
const maxRequestBody = 50 << 20

// BodyLimit rejects request bodies over the global ceiling
func BodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		}
		next.ServeHTTP(w, r)
	})
}
