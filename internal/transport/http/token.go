package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/4-in-a-row/engine/internal/transport/http/middleware"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
	"github.com/iamasit07/4-in-a-row/engine/pkg/httputil"
)

type TokenHandler struct {
	Issuer  *auth.TokenIssuer
	Clients auth.Clients
	// OpenRegistration issues tokens to any client id when no clients are configured.
	OpenRegistration bool
	SecureCookies    bool
}

func NewTokenHandler(issuer *auth.TokenIssuer, clients auth.Clients, open, secure bool) *TokenHandler {
	return &TokenHandler{Issuer: issuer, Clients: clients, OpenRegistration: open, SecureCookies: secure}
}

type tokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// Issue handles POST /api/token.
func (h *TokenHandler) Issue(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.ClientID == "" {
		middleware.Abort(c, http.StatusBadRequest, "INVALID_REQUEST", "clientId is required")
		return
	}

	open := h.OpenRegistration && len(h.Clients) == 0
	if !open && !h.Clients.Authenticate(req.ClientID, req.ClientSecret) {
		middleware.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid client credentials")
		return
	}

	token, err := h.Issuer.Issue(req.ClientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.SetAuthCookie(c.Writer, token, h.Issuer.TTL(), h.SecureCookies)
	c.JSON(http.StatusOK, tokenResponse{Token: token, ExpiresIn: int(h.Issuer.TTL().Seconds())})
}
