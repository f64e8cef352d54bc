package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrTeacherNotFound      = errors.New("teacher user not found")
	ErrUserNotTeacher       = errors.New("assigned user is not a teacher")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// RegisterInput carries everything needed to create an account. TeacherID is
// required for student registrations and ignored otherwise.
type RegisterInput struct {
	EmployeeID string
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	TeacherID  primitive.ObjectID
}

// --- Service Interface ---

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetJWTSecret() string
}

// --- Service Implementation ---

type authService struct {
	userRepo       repository.UserRepository
	assignmentRepo repository.StudentAssignmentRepository
	txnManager     repository.TransactionManager
	jwtSecret      string
	jwtExpiration  time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	assignmentRepo repository.StudentAssignmentRepository,
	txnManager repository.TransactionManager,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		txnManager:     txnManager,
		jwtSecret:      jwtSecret,
		jwtExpiration:  jwtExpiration,
	}
}

// Register creates a new account. Student accounts additionally require an
// existing teacher; the user row and the student↔teacher assignment row are
// created in one transaction so a student never exists unassigned.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.Role == "" {
		return nil, errors.New("name, email, password, and role cannot be empty")
	}

	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if input.Role == domain.RoleStudent {
		teacher, err := s.userRepo.GetByID(ctx, input.TeacherID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTeacherNotFound
			}
			return nil, err
		}
		if !teacher.IsTeacher() {
			return nil, ErrUserNotTeacher
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		EmployeeID:   input.EmployeeID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		Flag:         domain.FlagActive,
	}
	if input.Role == domain.RoleStudent {
		user.TrainingStatus = domain.TrainingStatusInProgress
	}

	err = s.txnManager.WithinTransaction(ctx, func(ctx context.Context) error {
		userID, err := s.userRepo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrUserAlreadyExists
			}
			return err
		}
		user.ID = userID

		if input.Role != domain.RoleStudent {
			return nil
		}
		_, err = s.assignmentRepo.Create(ctx, &domain.StudentAssignment{
			StudentID: userID,
			TeacherID: input.TeacherID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation. Disabled accounts
// are refused even with a correct password.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		user = nil
		return
	}

	if user.Flag != domain.FlagActive {
		err = ErrAccountDisabled
		user = nil
		return
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "training-system",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
