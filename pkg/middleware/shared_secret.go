package middleware

import (
	"crypto/subtle"
	"net/http"

	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const (
	AdminSecretHeader = "X-Admin-Secret"
	CronSecretHeader  = "X-Cron-Secret"
)

// SecretGuard protects httprouter handles with a static shared secret sent
// in a header. An empty configured secret rejects every request.
type SecretGuard struct {
	header string
	secret []byte
	log    *logger.Logger
}

func NewSecretGuard(header, secret string, log *logger.Logger) *SecretGuard {
	return &SecretGuard{header: header, secret: []byte(secret), log: log}
}

func (g *SecretGuard) Authorized(r *http.Request) bool {
	if len(g.secret) == 0 {
		return false
	}
	got := []byte(r.Header.Get(g.header))
	return subtle.ConstantTimeCompare(got, g.secret) == 1
}

func (g *SecretGuard) Wrap(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !g.Authorized(r) {
			g.log.Warn("Rejected request with missing or invalid secret",
				"request_id", RequestIDFromContext(r.Context()),
				"header", g.header,
				"path", r.URL.Path,
			)
			if err := httputil.WriteError(w, apperrors.Unauthorized("missing or invalid "+g.header)); err != nil {
				g.log.Error("failed to write unauthorized response", "error", err)
			}
			return
		}
		next(w, r, ps)
	}
}
