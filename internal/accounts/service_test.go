package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/security"
)

type fakeRepo struct {
	mu        sync.Mutex
	accounts  map[string]*models.Account
	addresses map[uuid.UUID]*models.Address
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts:  make(map[string]*models.Account),
		addresses: make(map[uuid.UUID]*models.Address),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[account.Email]; exists {
		return nil, errors.New("duplicate key value violates unique constraint")
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	f.accounts[account.Email] = account
	return account, nil
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[email]; ok {
		return account, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.accounts[email]
	return ok, nil
}

func (f *fakeRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (f *fakeRepo) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.ID == id {
			account.IsBlocked = blocked
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListCustomers(ctx context.Context) ([]models.Account, error) {
	return nil, nil
}

func (f *fakeRepo) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	f.addresses[address.ID] = address
	return address, nil
}

func (f *fakeRepo) UpdateAddress(ctx context.Context, address *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses[address.ID] = address
	return nil
}

func (f *fakeRepo) DeleteAddress(ctx context.Context, accountID, addressID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.addresses, addressID)
	return nil
}

func (f *fakeRepo) FindAddress(ctx context.Context, accountID, addressID uuid.UUID) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if address, ok := f.addresses[addressID]; ok && address.AccountID == accountID {
		return address, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListAddresses(ctx context.Context, accountID uuid.UUID) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Address
	for _, address := range f.addresses {
		if address.AccountID == accountID {
			out = append(out, *address)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountAddresses(ctx context.Context, accountID uuid.UUID) (int64, error) {
	rows, _ := f.ListAddresses(ctx, accountID)
	return int64(len(rows)), nil
}

func (f *fakeRepo) ClearDefaultAddress(ctx context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, address := range f.addresses {
		if address.AccountID == accountID {
			address.IsDefault = false
		}
	}
	return nil
}

type fakeStaging struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStaging() *fakeStaging {
	return &fakeStaging{data: make(map[string]string)}
}

func (f *fakeStaging) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeStaging) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeStaging) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStaging) SignupKey(email string) string {
	return "signup:" + strings.ToLower(email)
}

type fakeMailer struct {
	mu    sync.Mutex
	codes []string
	to    []string
}

func (f *fakeMailer) SendOTP(ctx context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeMailer) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.codes) == 0 {
		return ""
	}
	return f.codes[len(f.codes)-1]
}

type fakeSession struct{}

func (fakeSession) Generate(ctx context.Context, accessID string) (string, error) {
	return "refresh-" + accessID, nil
}

func (fakeSession) Revoke(ctx context.Context, accessID string) error { return nil }

type accountsHarness struct {
	svc     Service
	repo    *fakeRepo
	staging *fakeStaging
	mailer  *fakeMailer
	now     time.Time
}

func newAccountsHarness(t *testing.T) *accountsHarness {
	t.Helper()
	h := &accountsHarness{
		repo:    newFakeRepo(),
		staging: newFakeStaging(),
		mailer:  &fakeMailer{},
		now:     time.Now(),
	}
	svc, err := NewService(ServiceParams{
		Repo:           h.repo,
		Staging:        h.staging,
		Mailer:         h.mailer,
		SessionManager: fakeSession{},
		JWTConfig: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "amart",
			ExpirationMinutes: 30,
		},
		PasswordConfig: testPasswordConfig(),
		OTPConfig:      config.OTPConfig{ValiditySeconds: 60, ResendLimit: 3},
		Now:            func() time.Time { return h.now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		FirstName:       "Asha",
		LastName:        "Nair",
		Email:           "Asha@Example.com",
		Password:        "password1",
		ConfirmPassword: "password1",
	}
}

func TestRegisterStagesPendingAndSendsOTP(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	if err := h.svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if h.mailer.lastCode() == "" {
		t.Fatal("expected an otp email")
	}
	if len(h.repo.accounts) != 0 {
		t.Fatal("no account row should exist before activation")
	}
	if _, err := h.staging.Get(ctx, h.staging.SignupKey("asha@example.com")); err != nil {
		t.Fatalf("expected staged registration: %v", err)
	}
}

func TestRegisterValidationFailures(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"short password", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "pass1", "pass1" }},
		{"no digit", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "passwords", "passwords" }},
		{"mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "different1" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"numeric name", func(r *RegisterRequest) { r.FirstName = "Asha123" }},
	}
	for _, tc := range cases {
		req := validRegister()
		tc.mutate(&req)
		err := h.svc.Register(ctx, req)
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegisterRejectsExistingEmail(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	hash, _ := security.HashPassword("password1", testPasswordConfig())
	h.repo.accounts["asha@example.com"] = &models.Account{
		ID: uuid.New(), Email: "asha@example.com", PasswordHash: hash,
	}

	err := h.svc.Register(ctx, validRegister())
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestActivateCreatesAccountAndClearsStaging(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	if err := h.svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("register: %v", err)
	}

	dto, err := h.svc.Activate(ctx, ActivateRequest{Email: "asha@example.com", Code: h.mailer.lastCode()})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if dto.Email != "asha@example.com" {
		t.Fatalf("unexpected account email %q", dto.Email)
	}
	if _, ok := h.repo.accounts["asha@example.com"]; !ok {
		t.Fatal("account row missing after activation")
	}
	if _, err := h.staging.Get(ctx, h.staging.SignupKey("asha@example.com")); err == nil {
		t.Fatal("staging should be cleared after activation")
	}
}

func TestActivateRejectsExpiredCode(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	if err := h.svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("register: %v", err)
	}
	code := h.mailer.lastCode()

	h.now = h.now.Add(90 * time.Second)
	_, err := h.svc.Activate(ctx, ActivateRequest{Email: "asha@example.com", Code: code})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected expired-code validation error, got %v", err)
	}
	if len(h.repo.accounts) != 0 {
		t.Fatal("expired activation must not create an account")
	}
}

func TestActivateRejectsWrongCode(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	if err := h.svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("register: %v", err)
	}
	wrong := "000000"
	if wrong == h.mailer.lastCode() {
		wrong = "111111"
	}
	_, err := h.svc.Activate(ctx, ActivateRequest{Email: "asha@example.com", Code: wrong})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected invalid-code error, got %v", err)
	}
}

func TestResendOTPWaitsForExpiryAndCapsAttempts(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	if err := h.svc.Register(ctx, validRegister()); err != nil {
		t.Fatalf("register: %v", err)
	}

	// active code has not expired yet
	err := h.svc.ResendOTP(ctx, "asha@example.com")
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected wait-for-expiry error, got %v", err)
	}

	for i := 0; i < 3; i++ {
		h.now = h.now.Add(61 * time.Second)
		if err := h.svc.ResendOTP(ctx, "asha@example.com"); err != nil {
			t.Fatalf("resend %d: %v", i+1, err)
		}
	}

	h.now = h.now.Add(61 * time.Second)
	err = h.svc.ResendOTP(ctx, "asha@example.com")
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected resend cap error, got %v", err)
	}
}

func TestLoginPaths(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	hash, err := security.HashPassword("password1", testPasswordConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	customer := &models.Account{ID: uuid.New(), FirstName: "Asha", LastName: "Nair", Email: "asha@example.com", PasswordHash: hash}
	admin := &models.Account{ID: uuid.New(), FirstName: "Root", LastName: "Admin", Email: "admin@example.com", PasswordHash: hash, IsAdmin: true}
	h.repo.accounts[customer.Email] = customer
	h.repo.accounts[admin.Email] = admin

	resp, err := h.svc.Login(ctx, LoginRequest{Email: "Asha@Example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}

	if _, err := h.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "wrong"}); err == nil {
		t.Fatal("wrong password should fail")
	}

	// admin must use the console login
	_, err = h.svc.Login(ctx, LoginRequest{Email: "admin@example.com", Password: "password1"})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for admin on customer login, got %v", err)
	}
	if _, err := h.svc.AdminLogin(ctx, LoginRequest{Email: "admin@example.com", Password: "password1"}); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	_, err = h.svc.AdminLogin(ctx, LoginRequest{Email: "asha@example.com", Password: "password1"})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for customer on admin login, got %v", err)
	}

	customer.IsBlocked = true
	_, err = h.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "password1"})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for blocked account, got %v", err)
	}
}
