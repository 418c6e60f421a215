package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"copilot-accounts/internal/domain"
	"copilot-accounts/internal/service"
)

// sessionState clasifica la sesión de un request en un resultado tipado en
// vez de repetir la verificación ad hoc por ruta.
type sessionState int

const (
	sessionAnonymous sessionState = iota
	sessionAuthenticated
	sessionExpired
)

type sessionResolution struct {
	state   sessionState
	account domain.Account
}

// SessionGuard resuelve la cookie de sesión contra el store: un JWT válido
// cuya cuenta ya no existe cuenta como sesión expirada.
type SessionGuard struct {
	logger      *zap.Logger
	sessionServ *service.SessionService
	accountServ *service.AccountService
}

func NewSessionGuard(logger *zap.Logger, sessionServ *service.SessionService, accountServ *service.AccountService) *SessionGuard {
	return &SessionGuard{
		logger:      logger,
		sessionServ: sessionServ,
		accountServ: accountServ,
	}
}

func (g *SessionGuard) resolve(c *gin.Context) (sessionResolution, error) {
	token := readSessionCookie(c)
	if token == "" {
		return sessionResolution{state: sessionAnonymous}, nil
	}

	claims, err := g.sessionServ.Parse(token)
	if err != nil {
		// Cookie rota o vencida: se trata como anónimo, no como error.
		return sessionResolution{state: sessionAnonymous}, nil
	}

	account, err := g.accountServ.ResolveAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return sessionResolution{state: sessionExpired}, nil
		}
		return sessionResolution{}, err
	}
	return sessionResolution{state: sessionAuthenticated, account: account}, nil
}

// CheckLogged deja pasar requests anónimos y corta con 208 cuando ya hay
// sesión viva. Una cookie válida de cuenta borrada se limpia y el request
// sigue como anónimo.
func (g *SessionGuard) CheckLogged() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := g.resolve(c)
		if err != nil {
			if g.logger != nil {
				g.logger.Error("session resolve failed", zap.Error(err))
			}
			respondAbort(c, http.StatusInternalServerError, "Internal Server Error", nil)
			return
		}

		switch res.state {
		case sessionAuthenticated:
			respondAbort(c, http.StatusAlreadyReported, "Already Logged", res.account)
		case sessionExpired:
			clearSessionCookie(c)
			c.Next()
		default:
			c.Next()
		}
	}
}
