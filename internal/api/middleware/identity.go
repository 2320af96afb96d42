package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/api/shared"
)

// UserIDHeader carries the requester identity. There is no token
// verification behind it; ownership checks treat it as a best-effort claim
// unless the server is configured to require it.
const UserIDHeader = "X-User-ID"

// IdentityMiddleware extracts the requester identity from the X-User-ID
// header into the request context. A malformed header is rejected. When
// required is true, requests without the header are rejected outright;
// otherwise they proceed anonymously and ownership checks are skipped
// downstream.
func IdentityMiddleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(UserIDHeader)
			if header == "" {
				if required {
					shared.RespondWithError(w, r, http.StatusUnauthorized,
						"Missing "+UserIDHeader+" header")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(header)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest,
					"Invalid "+UserIDHeader+" header")
				return
			}

			ctx := shared.SetUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
