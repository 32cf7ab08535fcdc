package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/repository"
	"constructedge/internal/utils"
	"constructedge/internal/utils/blacklist"
	"constructedge/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

type LoginResult struct {
	Role      domain.RoleTag
	Principal domain.Principal
	Token     string
	ExpiresIn time.Duration
}

type AuthService struct {
	store     *repository.Store
	codec     utils.PasswordCodec
	secretKey string
	tokenTTL  time.Duration
	// blacklist is optional; without it tokens cannot be revoked.
	blacklist blacklist.Blacklist
}

func NewAuthService(store *repository.Store, codec utils.PasswordCodec, secretKey string, tokenTTL time.Duration, bl blacklist.Blacklist) *AuthService {
	return &AuthService{
		store:     store,
		codec:     codec,
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
		blacklist: bl,
	}
}

// Login checks the Admin, Manager and Employee stores in that order and accepts
// the first one whose stored password matches.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	for _, ps := range s.store.PrincipalStores() {
		principal, err := ps.FindPrincipal(ctx, email)
		if errors.Is(err, domain.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		_, stored := principal.Credentials()
		if !s.codec.Matches(stored, password) {
			continue
		}

		token, err := utils.GenerateToken(utils.TokenParams{
			ID:    principal.PrincipalID(),
			Role:  principal.RoleTag(),
			Email: email,
		}, s.secretKey, s.tokenTTL)
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}

		logger.Logger.Info("Login succeeded", zap.String("email", email), zap.String("role", string(principal.RoleTag())))
		return &LoginResult{
			Role:      principal.RoleTag(),
			Principal: principal,
			Token:     token,
			ExpiresIn: s.tokenTTL,
		}, nil
	}

	logger.Logger.Info("Login failed", zap.String("email", email))
	return nil, domain.ErrInvalidCredentials
}

// Authenticate parses the token and rejects revoked tokens and banned principals.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	return s.authenticate(ctx, token)
}

func (s *AuthService) authenticate(ctx context.Context, token string, options ...jwt.ParserOption) (*utils.Claims, error) {
	claims, err := utils.ParseAndValidateToken(token, s.secretKey, options...)
	if err != nil {
		return nil, err
	}
	if s.blacklist == nil {
		return claims, nil
	}
	if err := s.blacklist.CheckToken(ctx, claims.RegisteredClaims.ID); err != nil {
		return nil, err
	}
	if err := s.blacklist.CheckUser(ctx, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

// Revalidate issues a fresh token. The old token may be expired but must
// carry a valid signature and must not be revoked.
func (s *AuthService) Revalidate(ctx context.Context, token string) (string, error) {
	claims, err := s.authenticate(ctx, token, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	role, _ := utils.RoleFromClaim(claims.Role)
	return utils.GenerateToken(utils.TokenParams{
		ID:    claims.ID,
		Role:  role,
		Email: claims.Email,
	}, s.secretKey, s.tokenTTL)
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.BanToken(ctx, claims.RegisteredClaims.ID, claims.Remaining()); err != nil {
		logger.Logger.Error("Failed to revoke token", zap.String("user_id", claims.ID), zap.Error(err))
		return err
	}
	logger.Logger.Info("Token revoked", zap.String("user_id", claims.ID))
	return nil
}

// Profile loads the principal a token was issued to.
func (s *AuthService) Profile(ctx context.Context, claims *utils.Claims) (domain.Principal, error) {
	role, ok := utils.RoleFromClaim(claims.Role)
	if !ok {
		return nil, utils.ErrInvalidToken
	}
	for _, ps := range s.store.PrincipalStores() {
		if ps.Tag() == role {
			return ps.FindPrincipal(ctx, claims.Email)
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *AuthService) BanUser(ctx context.Context, userID string, ttl time.Duration) error {
	if s.blacklist == nil {
		return errors.New("blacklist is not configured")
	}
	if err := s.blacklist.BanUser(ctx, userID, ttl); err != nil {
		return err
	}
	logger.Logger.Warn("User banned", zap.String("user_id", userID), zap.Duration("ttl", ttl))
	return nil
}
