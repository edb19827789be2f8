package shield

import "net/http"

// MaxBody returns middleware that caps the request body at maxBytes for
// every request that carries one. Reads past the cap fail and the JSON
// decoder in the handler reports the oversize as a normal decode error.
func MaxBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength != 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
