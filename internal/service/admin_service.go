package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for admin password hashes
const BcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrSessionExpired     = errors.New("session has expired")
)

// AdminService defines the back-office authentication logic
type AdminService interface {
	Login(ctx context.Context, username, password string) (token string, admin *domain.AdminUser, err error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.AdminUser, error)
	EnsureAdmin(ctx context.Context, username, password, role string) (admin *domain.AdminUser, created bool, err error)
	SessionTTL() time.Duration
}

// Claims are the signed contents of an admin session token. The token only
// points at the server-side session; revoking the session revokes the token.
type Claims struct {
	SessionID string `json:"sid"`
	AdminID   int64  `json:"admin_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type adminService struct {
	adminRepo   repository.AdminRepository
	sessionRepo repository.SessionRepository
	secret      []byte
	ttl         time.Duration
	logger      *zap.Logger
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(
	adminRepo repository.AdminRepository,
	sessionRepo repository.SessionRepository,
	secret string,
	ttl time.Duration,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		secret:      []byte(secret),
		ttl:         ttl,
		logger:      logger,
	}
}

func (s *adminService) SessionTTL() time.Duration {
	return s.ttl
}

// Login verifies the credentials and opens a server-side session
func (s *adminService) Login(ctx context.Context, username, password string) (string, *domain.AdminUser, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	session := &domain.AdminSession{
		ID:      uuid.NewString(),
		AdminID: admin.ID,
		Role:    admin.Role,
	}
	if err := s.sessionRepo.Create(ctx, session, s.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Info("Admin logged in",
		zap.String("username", admin.Username),
		zap.String("role", admin.Role),
	)
	return token, admin, nil
}

// Logout deletes the session behind token. Unknown, expired or malformed
// tokens are treated as already logged out.
func (s *adminService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its admin. The token must be
// correctly signed, its session must still be live and the admin must
// still exist.
func (s *adminService) Authenticate(ctx context.Context, token string) (*domain.AdminUser, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.AdminID != claims.AdminID {
		return nil, ErrInvalidToken
	}

	admin, err := s.adminRepo.FindByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	return admin, nil
}

// EnsureAdmin creates the account when no admin with username exists
func (s *adminService) EnsureAdmin(ctx context.Context, username, password, role string) (*domain.AdminUser, bool, error) {
	existing, err := s.adminRepo.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrAdminNotFound) {
		return nil, false, fmt.Errorf("failed to check existing admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrAdminAlreadyExists) {
			existing, findErr := s.adminRepo.FindByUsername(ctx, username)
			if findErr != nil {
				return nil, false, fmt.Errorf("failed to find admin: %w", findErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}

	return admin, true, nil
}

func (s *adminService) signToken(session *domain.AdminSession) (string, error) {
	claims := &Claims{
		SessionID: session.ID,
		AdminID:   session.AdminID,
		Role:      session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *adminService) parseToken(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
