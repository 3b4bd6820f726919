package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findErr          error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

type memoryRevocations struct {
	keys map[string]time.Duration
}

func (m *memoryRevocations) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.keys == nil {
		m.keys = make(map[string]time.Duration)
	}
	m.keys[key] = ttl
	return nil
}

func (m *memoryRevocations) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.keys[key]
	return ok, nil
}

type recordedAudit struct {
	logs []models.AuditLog
}

func (r *recordedAudit) Record(log models.AuditLog) {
	r.logs = append(r.logs, log)
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAuthRepo, *memoryRevocations, *recordedAudit) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{user: &models.User{
		ID:           "admin-1",
		Email:        "admin@geniustutors.test",
		PasswordHash: string(hash),
		FullName:     "Console Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}}
	revoked := &memoryRevocations{}
	audit := &recordedAudit{}
	svc := NewAuthService(repo, revoked, audit, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "geniustutors-console",
	})
	return svc, repo, revoked, audit
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, repo, _, audit := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@geniustutors.test", Password: "s3cret!", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)
	assert.Equal(t, "10.0.0.1", audit.logs[0].IPAddress)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _, audit := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@geniustutors.test", Password: "wrong"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@geniustutors.test", Password: "s3cret!"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	repo.user.Active = false
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@geniustutors.test", Password: "s3cret!"})
	assert.True(t, errors.Is(err, appErrors.ErrInactiveAccount))

	repo.findErr = errors.New("connection reset")
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@geniustutors.test", Password: "s3cret!"})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	assert.Empty(t, audit.logs)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, revoked, audit := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@geniustutors.test", Password: "s3cret!"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims, "10.0.0.1", "test"))
	ttl, ok := revoked.keys[revokedTokenPrefix+claims.ID]
	require.True(t, ok)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.Len(t, audit.logs, 2)
	assert.Equal(t, models.AuditActionLogout, audit.logs[1].Action)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@geniustutors.test", Password: "s3cret!"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	other := NewAuthService(&mockAuthRepo{}, nil, nil, nil, nil, AuthConfig{AccessTokenSecret: "another"})
	_, err = other.ValidateToken(context.Background(), resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	assert.Error(t, svc.Logout(context.Background(), &models.JWTClaims{}, "", ""))
}
