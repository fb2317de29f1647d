package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/ANANDHURAI/Amart-Marketplace/pkg/auth"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/auth/session"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/mailer"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/security"
)

const invalidCredentialsMessage = "invalid email or password"

// Service defines the account lifecycle operations used by the controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) error
	Activate(ctx context.Context, req ActivateRequest) (*AccountDTO, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	GetAccount(ctx context.Context, id string) (*AccountDTO, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an account service.
type ServiceParams struct {
	Repo           Repository
	Staging        stagingStore
	Mailer         mailer.Sender
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	OTPConfig      config.OTPConfig
	Now            func() time.Time
}

type service struct {
	repo        Repository
	staging     stagingStore
	mailer      mailer.Sender
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	otpCfg      config.OTPConfig
	now         func() time.Time
}

// NewService constructs an account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if params.Staging == nil {
		return nil, fmt.Errorf("staging store is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		staging:     params.Staging,
		mailer:      params.Mailer,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		otpCfg:      params.OTPConfig,
		now:         now,
	}, nil
}

// Register validates the signup form, stages the pending registration in
// redis, and emails the first OTP. The account row is only created after
// Activate verifies the code.
func (s *service) Register(ctx context.Context, req RegisterRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validateRegistration(req); err != nil {
		return err
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	secret, err := security.NewOTPSecret(req.Email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp secret")
	}

	now := s.now()
	pending := pendingRegistration{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		OTPSecret:    secret,
		OTPExpiresAt: now.Add(s.otpCfg.Validity()),
	}
	if err := saveStaging(ctx, s.staging, pending); err != nil {
		return err
	}

	return s.deliverOTP(ctx, pending.Email, secret, now)
}

// Activate verifies the OTP and creates the account. Expired and invalid
// codes are distinct failures so the client can offer a resend.
func (s *service) Activate(ctx context.Context, req ActivateRequest) (*AccountDTO, error) {
	email := normalizeEmail(req.Email)
	pending, err := loadStaging(ctx, s.staging, email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if now.After(pending.OTPExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "otp has expired, please request a new one")
	}
	if !security.ValidateOTP(pending.OTPSecret, req.Code, now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid otp, please enter the correct code")
	}

	account := &models.Account{
		FirstName:    pending.FirstName,
		LastName:     pending.LastName,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
	}
	created, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	if err := clearStaging(ctx, s.staging, email); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear registration staging")
	}

	dto := FromModel(created)
	return &dto, nil
}

// ResendOTP issues a fresh code for a pending registration. Resends are
// capped and only allowed once the active code has expired.
func (s *service) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	pending, err := loadStaging(ctx, s.staging, email)
	if err != nil {
		return err
	}

	if pending.ResendCount >= s.otpCfg.ResendLimit {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "maximum otp resend attempts reached, please try later")
	}

	now := s.now()
	if now.Before(pending.OTPExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "please wait until the current otp expires before resending")
	}

	secret, err := security.NewOTPSecret(email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp secret")
	}
	pending.OTPSecret = secret
	pending.OTPExpiresAt = now.Add(s.otpCfg.Validity())
	pending.ResendCount++
	if err := saveStaging(ctx, s.staging, *pending); err != nil {
		return err
	}

	return s.deliverOTP(ctx, email, secret, now)
}

// Login authenticates a storefront customer. Admin accounts must use the
// console login.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	account, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if account.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot login here")
	}
	return s.issueTokens(ctx, account, enums.AccountRoleCustomer)
}

// AdminLogin authenticates a console admin.
func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	account, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if !account.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return s.issueTokens(ctx, account, enums.AccountRoleAdmin)
}

// Logout drops the refresh session tied to the access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// GetAccount loads the public projection of one account.
func (s *service) GetAccount(ctx context.Context, id string) (*AccountDTO, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account id")
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	dto := FromModel(account)
	return &dto, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}
	if account.IsBlocked {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "your account is currently blocked, please contact support")
	}

	valid, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return account, nil
}

func (s *service) issueTokens(ctx context.Context, account *models.Account, role enums.AccountRole) (*LoginResponse, error) {
	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		AccountID: account.ID,
		Role:      role,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      FromModel(account),
	}, nil
}

func (s *service) deliverOTP(ctx context.Context, email, secret string, at time.Time) error {
	code, err := security.GenerateOTP(secret, at)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp code")
	}
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send otp email")
	}
	return nil
}
