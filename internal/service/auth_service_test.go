package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type studentStoreStub struct {
	byEmail    map[string]*models.Student
	emailTaken bool
	phoneTaken bool
	created    *models.Student
	createErr  error
}

func (s *studentStoreStub) Create(ctx context.Context, student *models.Student) error {
	if s.createErr != nil {
		return s.createErr
	}
	student.ID = "s-new"
	s.created = student
	return nil
}

func (s *studentStoreStub) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if st, ok := s.byEmail[email]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentStoreStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.emailTaken, nil
}

func (s *studentStoreStub) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return s.phoneTaken, nil
}

type mentorAuthStoreStub struct {
	byEmail    map[string]*models.Mentor
	emailTaken bool
	phoneTaken bool
	created    *models.Mentor
}

func (s *mentorAuthStoreStub) Create(ctx context.Context, mentor *models.Mentor) error {
	mentor.ID = "m-new"
	s.created = mentor
	return nil
}

func (s *mentorAuthStoreStub) FindByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	if m, ok := s.byEmail[email]; ok {
		return m, nil
	}
	return nil, sql.ErrNoRows
}

func (s *mentorAuthStoreStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.emailTaken, nil
}

func (s *mentorAuthStoreStub) ExistsByPhone(ctx context.Context, phone string, excludeID string) (bool, error) {
	return s.phoneTaken, nil
}

type adminStoreStub struct {
	byEmail map[string]*models.Admin
}

func (s *adminStoreStub) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if a, ok := s.byEmail[email]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "bodhmantraa-test"}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegisterStudentDuplicateEmail(t *testing.T) {
	students := &studentStoreStub{emailTaken: true}
	svc := NewAuthService(students, &mentorAuthStoreStub{}, &adminStoreStub{}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Name: "Asha", Email: "asha@example.com", Password: "secret1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, students.created)
}

func TestAuthServiceRegisterMentorStartsPending(t *testing.T) {
	mentors := &mentorAuthStoreStub{}
	svc := NewAuthService(&studentStoreStub{}, mentors, &adminStoreStub{}, nil, zap.NewNop(), testAuthConfig())

	res, err := svc.RegisterMentor(context.Background(), RegisterMentorRequest{
		Name: "Ravi", Email: "ravi@example.com", Password: "secret1",
		Expertise: []string{"go", "databases"},
	})
	require.NoError(t, err)
	require.NotNil(t, mentors.created)
	assert.Equal(t, models.VerificationPending, mentors.created.VerificationStatus)
	assert.Equal(t, models.VerificationPending, res.User.VerificationStatus)
	assert.NotEmpty(t, res.Token)
}

func TestAuthServiceLoginWrongPasswordIndistinguishable(t *testing.T) {
	students := &studentStoreStub{byEmail: map[string]*models.Student{
		"asha@example.com": {ID: "s-1", Name: "Asha", Email: "asha@example.com", PasswordHash: mustHash(t, "right")},
	}}
	svc := NewAuthService(students, &mentorAuthStoreStub{}, &adminStoreStub{}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "asha@example.com", Password: "wrong", Type: models.RoleStudent,
	})
	require.Error(t, err)
	wrongPassCode := appErrors.FromError(err).Code

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email: "nobody@example.com", Password: "wrong", Type: models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, wrongPassCode, appErrors.FromError(err).Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, wrongPassCode)
}

func TestAuthServiceLoginAndVerifyTokenRoundtrip(t *testing.T) {
	mentors := &mentorAuthStoreStub{byEmail: map[string]*models.Mentor{
		"ravi@example.com": {
			ID: "m-1", Email: "ravi@example.com", PasswordHash: mustHash(t, "secret1"),
			MentorProfile:      models.MentorProfile{Name: "Ravi"},
			VerificationStatus: models.VerificationApproved,
		},
	}}
	svc := NewAuthService(&studentStoreStub{}, mentors, &adminStoreStub{}, nil, zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "ravi@example.com", Password: "secret1", Type: models.RoleMentor,
	})
	require.NoError(t, err)

	principal, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "m-1", principal.ID)
	assert.Equal(t, models.RoleMentor, principal.Role)
}

func TestAuthServiceAdminTokenUsesRoleDiscriminant(t *testing.T) {
	admins := &adminStoreStub{byEmail: map[string]*models.Admin{
		"root@example.com": {ID: "a-1", Name: "Root", Email: "root@example.com", PasswordHash: mustHash(t, "secret1")},
	}}
	svc := NewAuthService(&studentStoreStub{}, &mentorAuthStoreStub{}, admins, nil, zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "root@example.com", Password: "secret1", Type: models.RoleAdmin,
	})
	require.NoError(t, err)

	claims := &models.TokenClaims{}
	_, err = jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Empty(t, claims.Type)

	principal, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, principal.Role)
}

func TestAuthServiceVerifyTokenUnknownDiscriminant(t *testing.T) {
	svc := NewAuthService(&studentStoreStub{}, &mentorAuthStoreStub{}, &adminStoreStub{}, nil, zap.NewNop(), testAuthConfig())

	claims := &models.TokenClaims{
		Type: "ghost",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceVerifyTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(&studentStoreStub{}, &mentorAuthStoreStub{}, &adminStoreStub{}, nil, zap.NewNop(), testAuthConfig())

	claims := &models.TokenClaims{
		Type: string(models.RoleStudent),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "s-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
