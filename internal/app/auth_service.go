package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ragbase/internal/model"
	"ragbase/internal/pkg/jwtutil"
	"ragbase/internal/pkg/secretbox"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
)

type AuthService struct {
	tenantRepo    TenantStore
	sealer        *secretbox.Sealer
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token  string
	Tenant *model.Tenant
}

// CredentialsInput carries plaintext provider keys. Empty fields leave the
// stored credential untouched; keys are sealed before they reach the
// repository.
type CredentialsInput struct {
	ParseAPIKey  string
	OpenAIAPIKey string
}

func NewAuthService(tenantRepo TenantStore, sealer *secretbox.Sealer, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		tenantRepo:    tenantRepo,
		sealer:        sealer,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if name == "" || email == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existing, err := s.tenantRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	tenant := &model.Tenant{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.tenantRepo.Create(tenant); err != nil {
		return nil, err
	}

	token, err := jwtutil.IssueToken(s.jwtSecret, tenant.ID, tenant.Email, s.jwtExpiration)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Tenant: tenant}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	tenant, err := s.tenantRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tenant.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.IssueToken(s.jwtSecret, tenant.ID, tenant.Email, s.jwtExpiration)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Tenant: tenant}, nil
}

func (s *AuthService) GetTenantByID(id uint) (*model.Tenant, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.tenantRepo.GetByID(id)
}

// UpdateCredentials seals and stores the supplied provider keys. An empty
// field keeps the current value.
func (s *AuthService) UpdateCredentials(tenantID uint, input CredentialsInput) (*model.Tenant, error) {
	if tenantID == 0 {
		return nil, ErrInvalidInput
	}
	tenant, err := s.tenantRepo.GetByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrInvalidCredential
	}

	sealedParse := tenant.SealedParseKey
	if key := strings.TrimSpace(input.ParseAPIKey); key != "" {
		sealedParse, err = s.sealer.Seal(key)
		if err != nil {
			return nil, fmt.Errorf("seal parse credential failed: %w", err)
		}
	}
	sealedOpenAI := tenant.SealedOpenAIKey
	if key := strings.TrimSpace(input.OpenAIAPIKey); key != "" {
		sealedOpenAI, err = s.sealer.Seal(key)
		if err != nil {
			return nil, fmt.Errorf("seal openai credential failed: %w", err)
		}
	}

	if err := s.tenantRepo.UpdateCredentials(tenantID, sealedParse, sealedOpenAI); err != nil {
		return nil, err
	}
	tenant.SealedParseKey = sealedParse
	tenant.SealedOpenAIKey = sealedOpenAI
	return tenant, nil
}
