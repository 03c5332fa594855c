package web

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/vbonduro/stowaway/internal/service"
)

// The API sits behind an authenticating proxy that forwards the caller's
// identity in these headers.
const (
	headerUserID    = "X-User-ID"
	headerUserEmail = "X-User-Email"
	headerUserName  = "X-User-Name"
)

type actorKey struct{}

// requireUser rejects requests without a user id and stores the caller's
// service.Actor in the request context.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(headerUserID))
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing "+headerUserID+" header")
			return
		}
		actor := service.Actor{
			UserID: userID,
			Email:  r.Header.Get(headerUserEmail),
			Name:   r.Header.Get(headerUserName),
			IP:     clientIP(r),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

func actorFrom(r *http.Request) service.Actor {
	actor, _ := r.Context().Value(actorKey{}).(service.Actor)
	return actor
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
