package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/domain"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
)

type AccountCreator interface {
	CreateAccount(ctx context.Context, user domain.User, profile *domain.Restaurant) error
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(identity auth.Identity) (string, time.Time, error)
}

type AccountUseCase struct {
	creator AccountCreator
	users   UserFinder
	hasher  PasswordHasher
	tokens  TokenIssuer
	logger  *zap.Logger
	newID   func() string
	now     func() time.Time
}

func NewAccountUseCase(creator AccountCreator, users UserFinder, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *AccountUseCase {
	return &AccountUseCase{
		creator: creator,
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger,
		newID:   func() string { return uuid.New().String() },
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (uc *AccountUseCase) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	role, ok := domain.ParseRole(req.Role)
	if !ok || role == domain.RoleAdmin {
		return nil, apperrors.NewValidationError("invalid role", apperrors.ValidationDetail{
			Field:   "role",
			Message: "role must be one of CUSTOMER, RESTAURANT, DELIVERY_RIDER",
		})
	}

	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := domain.User{
		ID:           uc.newID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    uc.now(),
	}

	var profile *domain.Restaurant
	if role == domain.RoleRestaurant {
		profile = &domain.Restaurant{ID: user.ID, Name: user.Name, Address: strings.TrimSpace(req.Address)}
	}

	if err := uc.creator.CreateAccount(ctx, user, profile); err != nil {
		return nil, err
	}

	uc.logger.Info("account registered", zap.String("userId", user.ID), zap.String("role", string(role)))
	return uc.authenticate(&user)
}

func (uc *AccountUseCase) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := uc.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if _, notFound := apperrors.IsNotFoundError(err); notFound {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	ok, err := uc.hasher.Compare(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		uc.logger.Warn("login rejected", zap.String("userId", user.ID))
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	return uc.authenticate(user)
}

func (uc *AccountUseCase) authenticate(user *domain.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := uc.tokens.Issue(auth.Identity{SubjectID: user.ID, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
