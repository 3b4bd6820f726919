package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

type fakeAuthSrv struct {
	loginReq  models.LoginRequest
	loginErr  error
	logoutFor *models.JWTClaims
	logoutErr error
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.loginReq = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600, User: models.UserInfo{ID: "u1", Email: req.Email}}, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, claims *models.JWTClaims, _, _ string) error {
	f.logoutFor = claims
	return f.logoutErr
}

func TestAuthHandlerLogin(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv)

	c, rec := newContext(http.MethodPost, "/auth/login", `{"email":"ops@geniustutors.test","password":"secret"}`)
	c.Request.Header.Set("User-Agent", "console-test")
	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@geniustutors.test", srv.loginReq.Email)
	assert.Equal(t, "console-test", srv.loginReq.UserAgent)

	var res models.LoginResponse
	require.NoError(t, json.Unmarshal(decode(rec).Data, &res))
	assert.Equal(t, "token", res.AccessToken)
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.ErrInvalidCredentials})

	c, rec := newContext(http.MethodPost, "/auth/login", `{"email":`)
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodPost, "/auth/login", `{"email":"ops@geniustutors.test","password":"bad"}`)
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, decode(rec).Error.Code)
}

func TestAuthHandlerLogoutAndMe(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv)

	c, rec := newContext(http.MethodPost, "/auth/logout", "")
	h.Logout(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, srv.logoutFor)

	c, rec = newContext(http.MethodPost, "/auth/logout", "")
	withOperator(c, "u1", models.RoleAdmin)
	h.Logout(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, srv.logoutFor)
	assert.Equal(t, "u1", srv.logoutFor.UserID)

	c, rec = newContext(http.MethodGet, "/auth/me", "")
	withOperator(c, "u1", models.RoleModerator)
	h.Me(c)
	var info models.UserInfo
	require.NoError(t, json.Unmarshal(decode(rec).Data, &info))
	assert.Equal(t, models.RoleModerator, info.Role)
}
