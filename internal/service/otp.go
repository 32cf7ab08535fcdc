package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/notify"
	"constructedge/internal/otp"
	"constructedge/internal/utils"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
)

type OTPService struct {
	store    otp.Store
	notifier notify.Notifier
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewOTPService(store otp.Store, notifier notify.Notifier, ttl time.Duration) *OTPService {
	return &OTPService{
		store:    store,
		notifier: notifier,
		ttl:      ttl,
		now:      time.Now,
		generate: utils.GenerateOTP,
	}
}

// Issue stores a fresh code for email, replacing any earlier one, then
// delivers it. A delivery failure is reported but the stored code stays valid.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return validationError("email is required")
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	issued := s.now()
	if err := s.store.Put(ctx, domain.Passcode{
		Email:     email,
		Code:      code,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(s.ttl),
	}); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, email, code, s.ttl); err != nil {
		logger.Logger.Error("Failed to deliver OTP", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}
	logger.Logger.Info("OTP sent", zap.String("email", email))
	return nil
}

// Verify checks code against the live code for email without consuming it.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	stored, ok, err := s.store.Get(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		return domain.ErrInvalidOtp
	}
	return nil
}
