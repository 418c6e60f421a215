package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"copilot-accounts/internal/domain"
	"copilot-accounts/internal/service"
)

// AccountHandler mantiene dependencias para los endpoints de cuentas.
type AccountHandler struct {
	logger      *zap.Logger
	accountServ *service.AccountService
	sessionServ *service.SessionService
	guard       *SessionGuard
}

func NewAccountHandler(logger *zap.Logger, accountServ *service.AccountService, sessionServ *service.SessionService, guard *SessionGuard) *AccountHandler {
	return &AccountHandler{
		logger:      logger,
		accountServ: accountServ,
		sessionServ: sessionServ,
		guard:       guard,
	}
}

// Signup maneja POST /signup.
func (h *AccountHandler) Signup(c *gin.Context) {
	var req struct {
		Email          string `json:"email"`
		Pass           string `json:"pass"`
		FirstName      string `json:"fName"`
		LastName       string `json:"lName"`
		ProfilePicture string `json:"profilePicture"`
		Manual         *bool  `json:"manual"`
		Token          string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		respond(c, http.StatusUnprocessableEntity, "Enter email", nil)
		return
	}

	manual := req.Manual == nil || *req.Manual
	result, err := h.accountServ.Signup(c.Request.Context(), service.SignupInput{
		Email:          req.Email,
		Password:       req.Pass,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ProfilePicture: req.ProfilePicture,
		Manual:         manual,
		Token:          req.Token,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respond(c, http.StatusBadRequest, "Email already registered", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respond(c, http.StatusUnprocessableEntity, "Enter email", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respond(c, http.StatusUnprocessableEntity, "Password must 8 character", nil)
		case errors.Is(err, service.ErrOAuthRejected):
			respond(c, http.StatusUnprocessableEntity, "Something Wrong", nil)
		default:
			h.logger.Error("signup failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		}
		return
	}

	// En el alta manual el id viaja solo dentro del link de verificación.
	data := gin.H{"_id": nil, "manual": true}
	if !result.Manual {
		data = gin.H{"_id": result.ID, "manual": false}
	}
	respond(c, http.StatusOK, "Success", data)
}

// CheckPending maneja GET /checkPending.
func (h *AccountHandler) CheckPending(c *gin.Context) {
	pending, err := h.accountServ.CheckPending(c.Request.Context(), c.Query("_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignupID):
			respond(c, http.StatusUnprocessableEntity, "Invalid Id", nil)
		case errors.Is(err, service.ErrPendingNotFound):
			respond(c, http.StatusNotFound, "Not found", nil)
		default:
			h.logger.Error("check pending failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		}
		return
	}
	respond(c, http.StatusOK, "Success", pending)
}

// SignupFinish maneja PUT /signup-finish.
func (h *AccountHandler) SignupFinish(c *gin.Context) {
	var req struct {
		ID string `json:"_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup finish request", zap.Error(err))
		respond(c, http.StatusUnprocessableEntity, "Already Registered", nil)
		return
	}

	account, err := h.accountServ.FinishSignup(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRegistered) {
			respond(c, http.StatusUnprocessableEntity, "Already Registered", nil)
			return
		}
		h.logger.Error("signup finish failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}
	respond(c, http.StatusOK, "Success", account)
}

// Login maneja GET /login.
func (h *AccountHandler) Login(c *gin.Context) {
	manual := c.Query("manual") != "false"
	account, err := h.accountServ.Login(c.Request.Context(), service.LoginInput{
		Email:    c.Query("email"),
		Password: c.Query("pass"),
		Manual:   manual,
		Token:    c.Query("token"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond(c, http.StatusUnprocessableEntity, "Email or password wrong", nil)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}
	if err := h.startSession(c, account); err != nil {
		return
	}
	respond(c, http.StatusOK, "Success", account)
}

// ForgotRequest maneja POST /forgot-request.
func (h *AccountHandler) ForgotRequest(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot request", zap.Error(err))
		respond(c, http.StatusUnprocessableEntity, "Email wrong", nil)
		return
	}

	err := h.accountServ.ForgotRequest(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrAccountNotFound):
			respond(c, http.StatusUnprocessableEntity, "Email wrong", nil)
		case errors.Is(err, service.ErrRateLimited):
			respond(c, http.StatusTooManyRequests, "Too many requests", nil)
		default:
			h.logger.Error("forgot request failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		}
		return
	}
	respond(c, http.StatusOK, "Success", nil)
}

// ForgotCheck maneja GET /forgot-check.
func (h *AccountHandler) ForgotCheck(c *gin.Context) {
	err := h.accountServ.ForgotCheck(c.Request.Context(), c.Query("userId"), c.Query("secret"))
	if err != nil {
		if errors.Is(err, service.ErrWrongVerification) {
			respond(c, http.StatusNotFound, "Wrong Verification", nil)
			return
		}
		h.logger.Error("forgot check failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}
	respond(c, http.StatusOK, "Success", nil)
}

// ForgotFinish maneja PUT /forgot-finish.
func (h *AccountHandler) ForgotFinish(c *gin.Context) {
	var req struct {
		UserID  string `json:"userId"`
		Secret  string `json:"secret"`
		NewPass string `json:"newPass"`
		ReEnter string `json:"reEnter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot finish request", zap.Error(err))
		respond(c, http.StatusNotFound, "Wrong Verification", nil)
		return
	}

	err := h.accountServ.ForgotFinish(c.Request.Context(), req.UserID, req.Secret, req.NewPass, req.ReEnter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrPasswordMismatch):
			respond(c, http.StatusUnprocessableEntity, "Password must 8 character and New password and Re Enter password must same", nil)
		case errors.Is(err, service.ErrWrongVerification):
			respond(c, http.StatusNotFound, "Wrong Verification", nil)
		default:
			h.logger.Error("forgot finish failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		}
		return
	}
	respond(c, http.StatusOK, "Success", nil)
}

// UpdateProfile maneja POST /update_profile.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Email          string `json:"email"`
		FirstName      string `json:"firstName"`
		LastName       string `json:"lastName"`
		ProfilePicture string `json:"profilePicture"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		respond(c, http.StatusUnprocessableEntity, "Enter email", nil)
		return
	}

	if err := h.accountServ.UpdateProfile(c.Request.Context(), req.Email, req.FirstName, req.LastName, req.ProfilePicture); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			respond(c, http.StatusUnprocessableEntity, "Enter email", nil)
			return
		}
		h.logger.Error("update profile failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}
	respond(c, http.StatusOK, "Success", nil)
}

// NotLogged maneja GET /checkLogged cuando el guard dejó pasar el request.
func (h *AccountHandler) NotLogged(c *gin.Context) {
	respond(c, http.StatusMethodNotAllowed, "Not Logged", nil)
}

// NotLoggedUser maneja GET /checkUserLogged.
func (h *AccountHandler) NotLoggedUser(c *gin.Context) {
	respond(c, http.StatusMethodNotAllowed, "Not Logged User", nil)
}

// DeleteAccount maneja DELETE /account.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	res, err := h.guard.resolve(c)
	if err != nil {
		h.logger.Error("session resolve failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}

	switch res.state {
	case sessionAnonymous:
		respond(c, http.StatusMethodNotAllowed, "Not Logged", nil)
	case sessionExpired:
		// La cuenta ya no existe: se limpia el artefacto igual.
		clearSessionCookie(c)
		respond(c, http.StatusMethodNotAllowed, "Not Logged", nil)
	case sessionAuthenticated:
		if err := h.accountServ.DeleteAccount(c.Request.Context(), res.account.ID); err != nil {
			if errors.Is(err, service.ErrAccountNotFound) {
				clearSessionCookie(c)
				respond(c, http.StatusMethodNotAllowed, "Not Logged", nil)
				return
			}
			h.logger.Error("delete account failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
			return
		}
		clearSessionCookie(c)
		respond(c, http.StatusOK, "Success", nil)
	}
}

// SendOTP maneja POST /otp con código generado en el servidor.
func (h *AccountHandler) SendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp request", zap.Error(err))
		respond(c, http.StatusUnprocessableEntity, "Email wrong", nil)
		return
	}
	h.sendOTP(c, req.Email, "")
}

// SendOTPWithCode maneja POST /send_otp con código provisto por el cliente.
func (h *AccountHandler) SendOTPWithCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send otp request", zap.Error(err))
		respond(c, http.StatusUnprocessableEntity, "Email wrong", nil)
		return
	}
	h.sendOTP(c, req.Email, req.OTP)
}

func (h *AccountHandler) sendOTP(c *gin.Context, email, code string) {
	err := h.accountServ.SendOTP(c.Request.Context(), email, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respond(c, http.StatusUnprocessableEntity, "Email wrong", nil)
		case errors.Is(err, service.ErrRateLimited):
			respond(c, http.StatusTooManyRequests, "Too many requests", nil)
		default:
			h.logger.Error("send otp failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		}
		return
	}
	respond(c, http.StatusOK, "Success", nil)
}

// VerifyOTP maneja POST /verify_otp.
func (h *AccountHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify otp request", zap.Error(err))
		respond(c, http.StatusUnprocessableEntity, "OTP wrong", nil)
		return
	}

	account, err := h.accountServ.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPInvalid):
			respond(c, http.StatusUnprocessableEntity, "OTP wrong", nil)
		case errors.Is(err, service.ErrAccountNotFound):
			respond(c, http.StatusUnprocessableEntity, "Email wrong", nil)
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		}
		return
	}
	if err := h.startSession(c, account); err != nil {
		return
	}
	respond(c, http.StatusOK, "Success", account)
}

// Logout maneja GET /logout.
func (h *AccountHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	respond(c, http.StatusOK, "LogOut", nil)
}

func (h *AccountHandler) startSession(c *gin.Context, account domain.Account) error {
	token, err := h.sessionServ.Issue(account)
	if err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Internal Server Error", nil)
		return err
	}
	setSessionCookie(c, token, h.sessionServ.TTL())
	return nil
}
