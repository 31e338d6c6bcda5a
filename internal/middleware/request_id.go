package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Siddarth2230/domain-keys/internal/logging"
	"github.com/Siddarth2230/domain-keys/pkg/idgen"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxRequestIDLen = 128
)

func normalizeRequestID(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	if len(v) > maxRequestIDLen {
		v = v[:maxRequestIDLen]
	}
	return v
}

// RequestID propagates X-Request-ID, generating one with gen when the client
// sent none. The ID is echoed in the response and stored in the context.
func RequestID(gen idgen.Generator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := normalizeRequestID(r.Header.Get(HeaderRequestID))
			if id == "" && gen != nil {
				var err error
				if id, err = gen.Generate(r.Context()); err != nil {
					slog.WarnContext(r.Context(), "generate request id failed", "error", err)
				}
			}

			if id != "" {
				w.Header().Set(HeaderRequestID, id)
				r = r.WithContext(logging.WithRequestID(r.Context(), id))
			}

			next.ServeHTTP(w, r)
		})
	}
}
