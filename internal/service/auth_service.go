package service

import (
	"context"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkline-studio/inkline-backend/internal/config"
	"github.com/inkline-studio/inkline-backend/internal/db"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Auth Service
// ============================================

type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*repository.User, error)
	Login(ctx context.Context, email, password string) (*repository.User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error

	ValidateToken(tokenString string) (*jwt.Token, error)
	GetUserIDFromToken(token *jwt.Token) (string, error)
	GetRoleFromToken(token *jwt.Token) (string, error)
}

type authService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	redis    *db.RedisDB
}

type refreshSession struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, redis *db.RedisDB) AuthService {
	return &authService{cfg: cfg, userRepo: userRepo, redis: redis}
}

func (s *authService) Register(ctx context.Context, name, email, password, role string) (*repository.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if role != types.RoleAdmin {
		role = types.RoleClient
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*repository.User, string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", "", err
	}
	if user == nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, err := s.generateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.issueRefreshToken(ctx, user.ID, user.Role)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	if s.redis == nil {
		return "", "", ErrInvalidToken
	}
	var session refreshSession
	if err := s.redis.GetSession(ctx, refreshToken, &session); err != nil {
		return "", "", ErrInvalidToken
	}

	// Rotate: the old token stops working the moment a new pair is issued.
	if err := s.redis.DeleteSession(ctx, refreshToken); err != nil {
		log.Printf("⚠️ [Auth] Failed to revoke refresh token: %v", err)
	}

	access, err := s.generateAccessToken(session.UserID, session.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.issueRefreshToken(ctx, session.UserID, session.Role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if s.redis == nil || refreshToken == "" {
		return nil
	}
	return s.redis.DeleteSession(ctx, refreshToken)
}

func (s *authService) generateAccessToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Duration(s.cfg.JWTExpiry) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) issueRefreshToken(ctx context.Context, userID, role string) (string, error) {
	token := uuid.NewString()
	if s.redis != nil {
		expiry := time.Duration(s.cfg.RefreshExpiry) * 24 * time.Hour
		if err := s.redis.SetSession(ctx, token, refreshSession{UserID: userID, Role: role}, expiry); err != nil {
			return "", err
		}
	}
	return token, nil
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) GetUserIDFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

func (s *authService) GetRoleFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return "", ErrInvalidToken
	}
	return role, nil
}
