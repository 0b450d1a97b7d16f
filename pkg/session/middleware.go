package session

import "net/http"

// Middleware resolves the request's session and attaches it to the
// context. Requests without a valid session continue anonymously; every
// downstream handler sees the current principal and login flag either way.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.Current(r.Context(), r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}
