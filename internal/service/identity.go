package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/repository"
	"constructedge/internal/utils"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string
	Email    string `validate:"required"`
	Password string `validate:"required"`
	// Role is a free-text hint; unknown values register an employee.
	Role string
}

// IdentityService owns the registration ledger and fans each sign-up out
// into exactly one principal store.
type IdentityService struct {
	store *repository.Store
	codec utils.PasswordCodec
	now   func() time.Time
}

func NewIdentityService(store *repository.Store, codec utils.PasswordCodec) *IdentityService {
	return &IdentityService{store: store, codec: codec, now: time.Now}
}

func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	// stored as given; only an all-blank address is refused
	if strings.TrimSpace(in.Email) == "" {
		return nil, validationError("email is required")
	}

	role := utils.ParseRoleHint(in.Role)
	password, err := s.codec.Encode(in.Password)
	if err != nil {
		return nil, fmt.Errorf("encode password: %w", err)
	}

	var user *domain.User
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateIdentity
		}
		for _, ps := range tx.PrincipalStores() {
			taken, err := ps.ExistsByEmail(ctx, in.Email)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s profile already uses this email", domain.ErrDuplicateIdentity, ps.Tag())
			}
		}

		user = &domain.User{
			Name:     in.Name,
			Email:    in.Email,
			Password: password,
			Role:     role,
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		return s.createProfile(ctx, tx, user)
	})
	if err != nil {
		if isDuplicateKey(err) {
			err = domain.ErrDuplicateIdentity
		}
		logger.Logger.Info("Registration rejected", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	logger.Logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *IdentityService) createProfile(ctx context.Context, tx *repository.Store, user *domain.User) error {
	switch user.Role {
	case domain.RoleAdmin:
		return tx.Admins.Create(ctx, &domain.Admin{
			Username: user.Name,
			Email:    user.Email,
			Password: user.Password,
		})
	case domain.RoleManager:
		return tx.Managers.Create(ctx, &domain.Manager{
			Name:     user.Name,
			Email:    user.Email,
			Password: user.Password,
		})
	default:
		hired := s.now()
		return tx.Employees.Create(ctx, &domain.Employee{
			ID:       user.ID,
			UserID:   user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Password: user.Password,
			HireDate: &hired,
		})
	}
}

// ResetPassword overwrites the password in the first principal store that
// holds email, in login precedence order, and in the ledger row if any.
// It is not tied to OTP verification.
func (s *IdentityService) ResetPassword(ctx context.Context, email, newPassword string) (domain.RoleTag, error) {
	if strings.TrimSpace(newPassword) == "" {
		return "", validationError("new password is required")
	}
	password, err := s.codec.Encode(newPassword)
	if err != nil {
		return "", fmt.Errorf("encode password: %w", err)
	}

	var role domain.RoleTag
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		for _, ps := range tx.PrincipalStores() {
			updated, err := ps.UpdatePassword(ctx, email, password)
			if err != nil {
				return err
			}
			if !updated {
				continue
			}
			role = ps.Tag()
			if _, err := tx.Users.UpdatePassword(ctx, email, password); err != nil {
				return err
			}
			return nil
		}
		return domain.ErrUserNotFound
	})
	if err != nil {
		return "", err
	}

	logger.Logger.Info("Password reset", zap.String("email", email), zap.String("role", string(role)))
	return role, nil
}
