package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/repository"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type authStudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

type authMentorStore interface {
	Create(ctx context.Context, mentor *models.Mentor) error
	FindByEmail(ctx context.Context, email string) (*models.Mentor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID string) (bool, error)
}

type authAdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// AuthConfig defines configuration for token issuing.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// RegisterStudentRequest holds the student registration payload.
type RegisterStudentRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Branch   string `json:"branch"`
	Course   string `json:"course"`
}

// RegisterMentorRequest holds the mentor registration payload. The ID card URL
// is an opaque reference; uploads happen elsewhere.
type RegisterMentorRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Phone          string   `json:"phone"`
	Expertise      []string `json:"expertise"`
	IDCardURL      string   `json:"idCardUrl"`
	Bio            string   `json:"bio"`
	AvailableHours string   `json:"availableHours"`
}

// account is the common credential shape shared by all three account types.
type account struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	VerificationStatus models.VerificationStatus
}

type credentialLookup func(ctx context.Context, email string) (*account, error)

// roleTags maps the token discriminant to a principal role. Unknown tags are
// rejected at verification time.
var roleTags = map[string]models.Role{
	string(models.RoleStudent): models.RoleStudent,
	string(models.RoleMentor):  models.RoleMentor,
	string(models.RoleAdmin):   models.RoleAdmin,
}

// AuthService provides registration, login and token verification.
type AuthService struct {
	students  authStudentStore
	mentors   authMentorStore
	admins    authAdminStore
	lookups   map[models.Role]credentialLookup
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students authStudentStore, mentors authMentorStore, admins authAdminStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		students:  students,
		mentors:   mentors,
		admins:    admins,
		validator: validate,
		logger:    logger,
		config:    config,
	}
	s.lookups = map[models.Role]credentialLookup{
		models.RoleStudent: s.studentByEmail,
		models.RoleMentor:  s.mentorByEmail,
		models.RoleAdmin:   s.adminByEmail,
	}
	return s
}

// RegisterStudent creates a student account and issues a token.
func (s *AuthService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if exists, err := s.students.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email already registered")
	}
	if req.Phone != "" {
		if exists, err := s.students.ExistsByPhone(ctx, req.Phone); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate phone")
		} else if exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, "phone already registered")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        optionalString(req.Phone),
		Branch:       req.Branch,
		Course:       req.Course,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, s.translateCreateError(err, "failed to create student")
	}

	token, err := s.signToken(student.ID, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	s.logger.Info("student registered", zap.String("student_id", student.ID))
	return &models.AuthResponse{
		Token:   token,
		Message: "registration successful, please login to continue",
		User: models.AuthUser{
			ID:    student.ID,
			Name:  student.Name,
			Email: student.Email,
			Type:  models.RoleStudent,
		},
	}, nil
}

// RegisterMentor creates a mentor account in pending verification state and
// issues a token.
func (s *AuthService) RegisterMentor(ctx context.Context, req RegisterMentorRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if exists, err := s.mentors.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email already registered")
	}
	if req.Phone != "" {
		if exists, err := s.mentors.ExistsByPhone(ctx, req.Phone, ""); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate phone")
		} else if exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, "phone already registered")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	hours := req.AvailableHours
	if hours == "" {
		hours = "0"
	}
	mentor := &models.Mentor{
		Email:        req.Email,
		PasswordHash: string(hash),
		MentorProfile: models.MentorProfile{
			Name:                 req.Name,
			Phone:                optionalString(req.Phone),
			Bio:                  req.Bio,
			Expertise:            pq.StringArray(req.Expertise),
			IDCardURL:            req.IDCardURL,
			AvailableHours:       hours,
			IsCurrentlyAvailable: false,
		},
		VerificationStatus: models.VerificationPending,
	}
	if err := s.mentors.Create(ctx, mentor); err != nil {
		return nil, s.translateCreateError(err, "failed to create mentor")
	}

	token, err := s.signToken(mentor.ID, models.RoleMentor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	s.logger.Info("mentor registered", zap.String("mentor_id", mentor.ID))
	return &models.AuthResponse{
		Token:   token,
		Message: "registration successful, application pending admin approval",
		User: models.AuthUser{
			ID:                 mentor.ID,
			Name:               mentor.Name,
			Email:              mentor.Email,
			Type:               models.RoleMentor,
			VerificationStatus: mentor.VerificationStatus,
		},
	}, nil
}

// Login authenticates any account type via the per-role lookup table and
// issues a token. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	lookup, ok := s.lookups[req.Type]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown account type")
	}

	acct, err := lookup(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	token, err := s.signToken(acct.ID, req.Type)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	return &models.AuthResponse{
		Token: token,
		User: models.AuthUser{
			ID:                 acct.ID,
			Name:               acct.Name,
			Email:              acct.Email,
			Type:               req.Type,
			VerificationStatus: acct.VerificationStatus,
		},
	}, nil
}

// VerifyToken parses an access token and resolves the caller's principal. The
// role discriminant is decoded once here and dispatched through the role
// table; downstream code only ever sees the Principal.
func (s *AuthService) VerifyToken(tokenString string) (*models.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	role, ok := roleTags[claims.Discriminant()]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown token role")
	}
	if claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token subject")
	}

	return &models.Principal{ID: claims.Subject, Role: role}, nil
}

func (s *AuthService) signToken(id string, role models.Role) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	// Admin tokens carry role:"admin", others type:"student"/"mentor". Kept
	// for wire compatibility with deployed clients.
	if role == models.RoleAdmin {
		claims.Role = string(role)
	} else {
		claims.Type = string(role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *AuthService) studentByEmail(ctx context.Context, email string) (*account, error) {
	student, err := s.students.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &account{ID: student.ID, Name: student.Name, Email: student.Email, PasswordHash: student.PasswordHash}, nil
}

func (s *AuthService) mentorByEmail(ctx context.Context, email string) (*account, error) {
	mentor, err := s.mentors.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &account{
		ID:                 mentor.ID,
		Name:               mentor.Name,
		Email:              mentor.Email,
		PasswordHash:       mentor.PasswordHash,
		VerificationStatus: mentor.VerificationStatus,
	}, nil
}

func (s *AuthService) adminByEmail(ctx context.Context, email string) (*account, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &account{ID: admin.ID, Name: admin.Name, Email: admin.Email, PasswordHash: admin.PasswordHash}, nil
}

// translateCreateError maps duplicate-key persistence failures onto
// field-specific validation messages; anything else is internal.
func (s *AuthService) translateCreateError(err error, message string) error {
	switch repository.UniqueViolationColumn(err) {
	case "email":
		return appErrors.Clone(appErrors.ErrValidation, "email already registered")
	case "phone":
		return appErrors.Clone(appErrors.ErrValidation, "phone already registered")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
