package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragbase/internal/pkg/jwtutil"
	"ragbase/internal/pkg/secretbox"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeTenantStore, *secretbox.Sealer) {
	t.Helper()
	sealer, err := secretbox.NewSealer(testSealKey)
	require.NoError(t, err)
	tenants := newFakeTenantStore()
	return NewAuthService(tenants, sealer, "unit-test-secret", time.Hour), tenants, sealer
}

func TestAuthRegisterAndLogin(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	registered, err := service.Register(RegisterInput{
		Name:     "Acme",
		Email:    "Owner@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", registered.Tenant.Email)
	assert.NotEqual(t, "correct horse", registered.Tenant.PasswordHash)

	claims, err := jwtutil.ParseToken("unit-test-secret", registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.Tenant.ID, claims.TenantID)

	logged, err := service.Login(LoginInput{Email: "owner@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.Tenant.ID, logged.Tenant.ID)

	_, err = service.Login(LoginInput{Email: "owner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthRegisterValidation(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	_, err := service.Register(RegisterInput{Name: "Acme", Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.Register(RegisterInput{Name: "Acme", Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	_, err = service.Register(RegisterInput{Name: "Other", Email: "A@B.com", Password: "long enough"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthUpdateCredentialsSealsKeys(t *testing.T) {
	service, _, sealer := newAuthFixture(t)

	registered, err := service.Register(RegisterInput{Name: "Acme", Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	tenant, err := service.UpdateCredentials(registered.Tenant.ID, CredentialsInput{OpenAIAPIKey: "sk-live"})
	require.NoError(t, err)
	assert.True(t, tenant.HasOpenAIKey())
	assert.False(t, tenant.HasParseKey())
	assert.NotContains(t, tenant.SealedOpenAIKey, "sk-live")

	opened, err := sealer.Open(tenant.SealedOpenAIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-live", opened)

	// An empty field keeps the stored value.
	tenant, err = service.UpdateCredentials(registered.Tenant.ID, CredentialsInput{ParseAPIKey: "parse-live"})
	require.NoError(t, err)
	assert.True(t, tenant.HasOpenAIKey())
	assert.True(t, tenant.HasParseKey())
}
