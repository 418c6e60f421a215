package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"copilot-accounts/internal/domain"
	"copilot-accounts/internal/email"
	"copilot-accounts/internal/oauth"
	"copilot-accounts/internal/repository"
)

// AccountService coordina el ciclo de vida de cuentas: alta manual y OAuth,
// verificación por link, login, reset de contraseña y OTP.
type AccountService struct {
	logger      *zap.Logger
	accounts    repository.AccountRepository
	pendings    repository.PendingRepository
	otps        repository.OTPRepository
	emailSender email.Sender
	verifier    oauth.Verifier
	otpLimiter  RateLimiter
	siteURL     string
}

func NewAccountService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	pendings repository.PendingRepository,
	otps repository.OTPRepository,
	emailSender email.Sender,
	verifier oauth.Verifier,
	otpLimiter RateLimiter,
	siteURL string,
) *AccountService {
	if otpLimiter == nil {
		otpLimiter = NewMemoryRateLimiter(10*time.Minute, 3)
	}
	return &AccountService{
		logger:      logger,
		accounts:    accounts,
		pendings:    pendings,
		otps:        otps,
		emailSender: emailSender,
		verifier:    verifier,
		otpLimiter:  otpLimiter,
		siteURL:     strings.TrimRight(siteURL, "/"),
	}
}

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrInvalidSignupID    = errors.New("invalid signup id")
	ErrPendingNotFound    = errors.New("pending signup not found")
	ErrInvalidCredentials = errors.New("email or password wrong")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWrongVerification  = errors.New("wrong verification")
	ErrOTPInvalid         = errors.New("otp wrong")
	ErrOAuthRejected      = errors.New("oauth verification rejected")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrRateLimited        = errors.New("rate limited")
	ErrEmailSendFailure   = errors.New("email send failed")
)

const minPasswordLen = 8

type SignupInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	ProfilePicture string
	Manual         bool
	Token          string
}

type SignupResult struct {
	ID     string
	Manual bool
}

// Signup da de alta una cuenta. El camino manual crea un registro provisional
// y manda el link de verificación; el camino OAuth valida el bearer token y
// crea la cuenta activa sin paso de verificación adicional.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (SignupResult, error) {
	if !input.Manual {
		return s.signupOAuth(ctx, input)
	}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return SignupResult{}, ErrInvalidEmail
	}
	if len(strings.TrimSpace(input.Password)) < minPasswordLen {
		return SignupResult{}, ErrWeakPassword
	}

	if _, err := s.accounts.GetByEmail(ctx, emailAddr); err == nil {
		return SignupResult{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return SignupResult{}, err
	}
	// Un alta provisional en curso también bloquea: el índice único solo
	// respalda la carrera entre dos signups simultáneos.
	if _, err := s.pendings.GetByEmail(ctx, emailAddr); err == nil {
		return SignupResult{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return SignupResult{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(input.Password)), bcrypt.DefaultCost)
	if err != nil {
		return SignupResult{}, err
	}

	pending := domain.PendingSignup{
		ID:             uuid.NewString(),
		Email:          emailAddr,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		ProfilePicture: strings.TrimSpace(input.ProfilePicture),
		PasswordHash:   string(hashBytes),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.pendings.Create(ctx, pending); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return SignupResult{}, ErrEmailTaken
		}
		return SignupResult{}, err
	}

	// El envío es best-effort: un fallo no revierte el alta provisional.
	if s.emailSender != nil {
		link := fmt.Sprintf("%s/signup/pending/%s", s.siteURL, pending.ID)
		if err := s.emailSender.SendVerificationLink(ctx, emailAddr, link); err != nil && s.logger != nil {
			s.logger.Warn("send verification link failed", zap.Error(err), zap.String("email", emailAddr))
		}
	}

	return SignupResult{ID: pending.ID, Manual: true}, nil
}

func (s *AccountService) signupOAuth(ctx context.Context, input SignupInput) (SignupResult, error) {
	if s.verifier == nil {
		return SignupResult{}, errors.New("oauth verifier not configured")
	}
	info, err := s.verifier.Verify(ctx, input.Token)
	if err != nil {
		if errors.Is(err, oauth.ErrTokenRejected) {
			return SignupResult{}, ErrOAuthRejected
		}
		return SignupResult{}, err
	}
	// El email verificado por el proveedor tiene que coincidir con el que
	// declara el cliente; un mismatch es un intento de registrar otro email.
	if !info.EmailVerified || info.Email != normalizeEmail(input.Email) {
		return SignupResult{}, ErrOAuthRejected
	}

	account := domain.Account{
		ID:             uuid.NewString(),
		Email:          info.Email,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		ProfilePicture: strings.TrimSpace(input.ProfilePicture),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return SignupResult{}, ErrEmailTaken
		}
		return SignupResult{}, err
	}
	return SignupResult{ID: account.ID, Manual: false}, nil
}

// CheckPending devuelve el snapshot del registro provisional.
func (s *AccountService) CheckPending(ctx context.Context, id string) (domain.PendingSignup, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return domain.PendingSignup{}, ErrInvalidSignupID
	}
	pending, err := s.pendings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PendingSignup{}, ErrPendingNotFound
		}
		return domain.PendingSignup{}, err
	}
	return pending, nil
}

// FinishSignup consume el registro provisional y activa la cuenta. El
// segundo intento sobre el mismo id falla con ErrAlreadyRegistered.
func (s *AccountService) FinishSignup(ctx context.Context, id string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return domain.Account{}, ErrAlreadyRegistered
	}
	account, err := s.pendings.Promote(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.Account{}, ErrAlreadyRegistered
		}
		return domain.Account{}, err
	}
	return account, nil
}

type LoginInput struct {
	Email    string
	Password string
	Manual   bool
	Token    string
}

// Login autentica por email+contraseña o por bearer token OAuth. Todos los
// fallos de credenciales devuelven el mismo ErrInvalidCredentials para no
// filtrar si el email existe.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (domain.Account, error) {
	if !input.Manual {
		return s.loginOAuth(ctx, input.Token)
	}

	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)
	if emailAddr == "" || password == "" {
		return domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	if account.PasswordHash == "" {
		return domain.Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

func (s *AccountService) loginOAuth(ctx context.Context, token string) (domain.Account, error) {
	if s.verifier == nil {
		return domain.Account{}, errors.New("oauth verifier not configured")
	}
	info, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, oauth.ErrTokenRejected) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	if !info.EmailVerified {
		return domain.Account{}, ErrInvalidCredentials
	}
	// Login no registra cuentas: un email verificado sin cuenta sigue
	// siendo credencial inválida.
	account, err := s.accounts.GetByEmail(ctx, info.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	return account, nil
}

// ForgotRequest genera un secreto de un solo uso, pisa cualquier secreto
// anterior y manda el link de reset.
func (s *AccountService) ForgotRequest(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow("reset:"+emailAddr) {
		return ErrRateLimited
	}

	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}

	secret, err := generateResetSecret()
	if err != nil {
		return err
	}
	if err := s.accounts.SetResetSecret(ctx, account.ID, secret, time.Now().UTC()); err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	link := fmt.Sprintf("%s/forgot/set/%s/%s", s.siteURL, account.ID, secret)
	if err := s.emailSender.SendResetLink(ctx, emailAddr, link); err != nil {
		if s.logger != nil {
			s.logger.Warn("send reset link failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// ForgotCheck valida el par id+secreto sin consumirlo: el secreto tiene que
// seguir vivo para el ForgotFinish posterior.
func (s *AccountService) ForgotCheck(ctx context.Context, id, secret string) error {
	id = strings.TrimSpace(id)
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ErrWrongVerification
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrWrongVerification
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWrongVerification
		}
		return err
	}
	if account.ResetSecret == "" {
		return ErrWrongVerification
	}
	if subtle.ConstantTimeCompare([]byte(account.ResetSecret), []byte(secret)) != 1 {
		return ErrWrongVerification
	}
	return nil
}

// ForgotFinish cambia la contraseña y consume el secreto en una sola
// escritura condicional.
func (s *AccountService) ForgotFinish(ctx context.Context, id, secret, newPass, reEnter string) error {
	newPass = strings.TrimSpace(newPass)
	reEnter = strings.TrimSpace(reEnter)
	if len(newPass) < minPasswordLen {
		return ErrWeakPassword
	}
	if newPass != reEnter {
		return ErrPasswordMismatch
	}
	id = strings.TrimSpace(id)
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ErrWrongVerification
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrWrongVerification
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ok, err := s.accounts.ResetPassword(ctx, id, secret, string(hashBytes))
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongVerification
	}
	return nil
}

// SendOTP persiste el código (upsert) y lo manda por correo. Con code vacío
// se genera uno en el servidor.
func (s *AccountService) SendOTP(ctx context.Context, emailAddr, code string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow("otp:"+emailAddr) {
		return ErrRateLimited
	}

	code = strings.TrimSpace(code)
	if code == "" {
		generated, err := generateOTPCode()
		if err != nil {
			return err
		}
		code = generated
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendOTP(ctx, emailAddr, code); err != nil {
		if s.logger != nil {
			s.logger.Warn("send otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}

	challenge := domain.OTPChallenge{
		Email:     emailAddr,
		Code:      code,
		AssocID:   uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	return s.otps.Upsert(ctx, challenge)
}

// VerifyOTP consume el desafío con un delete condicional y resuelve la
// cuenta asociada. Sin desafío vivo, o con código equivocado, devuelve
// ErrOTPInvalid.
func (s *AccountService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.Account, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || code == "" {
		return domain.Account{}, ErrOTPInvalid
	}

	ok, err := s.otps.Consume(ctx, emailAddr, code)
	if err != nil {
		return domain.Account{}, err
	}
	if !ok {
		return domain.Account{}, ErrOTPInvalid
	}

	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}

// UpdateProfile actualiza los datos de perfil por email.
func (s *AccountService) UpdateProfile(ctx context.Context, emailAddr, firstName, lastName, profilePicture string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	return s.accounts.UpdateProfile(ctx, emailAddr,
		strings.TrimSpace(firstName),
		strings.TrimSpace(lastName),
		strings.TrimSpace(profilePicture),
	)
}

// ResolveAccount trae la cuenta referida por una sesión.
func (s *AccountService) ResolveAccount(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}

// DeleteAccount borra la cuenta activa.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	err := s.accounts.Delete(ctx, strings.TrimSpace(id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	return err
}

func generateResetSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
