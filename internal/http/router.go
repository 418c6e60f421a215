package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas de cuentas.
func NewRouter(logger *zap.Logger, accountH *AccountHandler, guard *SessionGuard) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	users := r.Group("/api/user")

	// Rutas gateadas por CheckLogged: con sesión viva responden 208 antes
	// de llegar al handler.
	gated := users.Group("", guard.CheckLogged())
	gated.GET("/checkLogged", accountH.NotLogged)
	gated.GET("/checkUserLogged", accountH.NotLoggedUser)
	gated.POST("/signup", accountH.Signup)
	gated.GET("/checkPending", accountH.CheckPending)
	gated.PUT("/signup-finish", accountH.SignupFinish)
	gated.GET("/login", accountH.Login)
	gated.POST("/forgot-request", accountH.ForgotRequest)
	gated.GET("/forgot-check", accountH.ForgotCheck)
	gated.PUT("/forgot-finish", accountH.ForgotFinish)

	users.POST("/update_profile", accountH.UpdateProfile)
	users.DELETE("/account", accountH.DeleteAccount)
	users.POST("/otp", accountH.SendOTP)
	users.POST("/send_otp", accountH.SendOTPWithCode)
	users.POST("/verify_otp", accountH.VerifyOTP)
	users.GET("/logout", accountH.Logout)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
