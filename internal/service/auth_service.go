package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

var (
	ErrUsernameTaken = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrTokenInvalid  = errors.New("token is invalid or expired")
)

type AuthService struct {
	accountRepo repository.AccountRepository
	userRepo    repository.UserRepository
	txManager   repository.TxManager

	jwtSecret     string
	jwtExpiration time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewAuthService(
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	txManager repository.TxManager,
	jwtSecret string,
	jwtExpiration time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accountRepo:   accountRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates the User profile and its Account credentials as one unit
// of work. New accounts always start with the USER role.
func (s *AuthService) Register(ctx context.Context, dto domain.RegisterDTO) (*domain.Account, error) {
	taken, err := s.accountRepo.ExistsByUsername(ctx, dto.Username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	emailTaken, err := s.userRepo.ExistsByEmail(ctx, dto.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if emailTaken {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var account *domain.Account
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now().UTC()
		user, err := s.userRepo.Create(ctx, &domain.User{
			Email:   dto.Email,
			Status:  domain.UserActive,
			Created: now,
			Changed: now,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				return ErrEmailTaken
			}
			return fmt.Errorf("creating user: %w", err)
		}
		account, err = s.accountRepo.Create(ctx, &domain.Account{
			UserID:   user.ID,
			Username: dto.Username,
			Password: string(hashed),
			Role:     domain.RoleUser,
			Created:  now,
			Changed:  now,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("creating account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.Int64("user_id", account.UserID),
		zap.String("username", account.Username))
	account.Password = ""
	return account, nil
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginDTO) (*domain.AuthResponseDTO, error) {
	account, err := s.accountRepo.FindByUsername(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(account.UserID, 10),
		"exp":      now.Add(s.jwtExpiration).Unix(),
		"iat":      now.Unix(),
		"role":     account.Role,
		"username": account.Username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token:    tokenString,
		UserID:   account.UserID,
		Username: account.Username,
		Role:     account.Role,
	}, nil
}

// ValidateToken parses and verifies a bearer token and returns the caller's
// identity for ownership checks downstream.
func (s *AuthService) ValidateToken(tokenString string) (domain.Principal, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, fmt.Errorf("%w: token expired", ErrTokenInvalid)
		}
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return domain.Principal{}, ErrTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return domain.Principal{}, ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return domain.Principal{}, ErrTokenInvalid
	}
	role, ok := claims["role"].(string)
	if !ok || !domain.ValidRole(role) {
		return domain.Principal{}, ErrTokenInvalid
	}
	return domain.Principal{UserID: userID, Role: role}, nil
}

// ChangeRole assigns a new role to the account of the given user. Admin only.
func (s *AuthService) ChangeRole(ctx context.Context, p domain.Principal, userID int64, role string) error {
	if !p.IsAdmin() {
		return ErrNotOwner
	}
	if !domain.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, role)
	}
	if err := s.accountRepo.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	s.logger.Info("role changed", zap.Int64("user_id", userID), zap.String("role", role))
	return nil
}
