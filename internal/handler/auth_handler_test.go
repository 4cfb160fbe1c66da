package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/service"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type authServiceMock struct {
	resp *models.AuthResponse
	err  error

	lastLogin models.LoginRequest
}

func (m *authServiceMock) RegisterStudent(ctx context.Context, req service.RegisterStudentRequest) (*models.AuthResponse, error) {
	return m.resp, m.err
}

func (m *authServiceMock) RegisterMentor(ctx context.Context, req service.RegisterMentorRequest) (*models.AuthResponse, error) {
	return m.resp, m.err
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	m.lastLogin = req
	return m.resp, m.err
}

func TestAuthHandlerRegisterStudent(t *testing.T) {
	mockSvc := &authServiceMock{
		resp: &models.AuthResponse{Token: "tok", User: models.AuthUser{ID: "s-1", Type: models.RoleStudent}},
	}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(service.RegisterStudentRequest{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	c, w := testContext(t, http.MethodPost, "/auth/student/register", payload)

	handler.RegisterStudent(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := testContext(t, http.MethodPost, "/auth/login", []byte(`{"email":`))

	handler.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{err: appErrors.ErrInvalidCredentials})

	payload, _ := json.Marshal(models.LoginRequest{Email: "a@example.com", Password: "wrong", Type: models.RoleStudent})
	c, w := testContext(t, http.MethodPost, "/auth/login", payload)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerAdminLoginForcesAdminType(t *testing.T) {
	mockSvc := &authServiceMock{
		resp: &models.AuthResponse{Token: "tok", User: models.AuthUser{ID: "a-1", Type: models.RoleAdmin}},
	}
	handler := NewAuthHandler(mockSvc)

	// Even a payload claiming another type authenticates against admins.
	payload, _ := json.Marshal(models.LoginRequest{Email: "root@example.com", Password: "secret1", Type: models.RoleStudent})
	c, w := testContext(t, http.MethodPost, "/admin/login", payload)

	handler.AdminLogin(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleAdmin, mockSvc.lastLogin.Type)
}
