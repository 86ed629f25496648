// Package auth implements the shared secret gate in front of decision
// requests.
package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
	"github.com/ChardPeter/chaddybot-bridge/internal/logging"
	"github.com/ChardPeter/chaddybot-bridge/internal/security"
)

// Header carries the shared secret on every decision request.
const Header = "X-Bridge-Key"

// Gate checks the shared secret before any completion work happens.
type Gate struct {
	secret []byte
	logger zerolog.Logger
}

// NewGate creates a gate for the given secret.
func NewGate(secret string, logger zerolog.Logger) *Gate {
	return &Gate{
		secret: []byte(secret),
		logger: logging.WithComponent(logger, "auth"),
	}
}

// Configured reports whether a shared secret is set.
func (g *Gate) Configured() bool {
	return len(g.secret) > 0
}

// Check verifies the key presented on the request. An unconfigured gate
// rejects everything: two empty strings compare equal, and that must
// never count as authorized.
func (g *Gate) Check(r *http.Request) error {
	presented := r.Header.Get(Header)

	if len(g.secret) == 0 || subtle.ConstantTimeCompare([]byte(presented), g.secret) != 1 {
		logging.LogAuthReject(g.logger, origin(r), security.MaskCredential(presented))
		return apperrors.ErrUnauthorized
	}

	return nil
}

// origin identifies where a request came from for reject logging.
func origin(r *http.Request) string {
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
