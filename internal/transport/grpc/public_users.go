package grpc

import (
	"context"
	"fmt"

	"constructedge/internal/service"
	"constructedge/internal/utils"
)

// PublicServer exposes registration, login, OTP and token lifecycle calls.
// None of them require an authenticated caller.
type PublicServer struct {
	Identity *service.IdentityService
	Auth     *service.AuthService
	OTP      *service.OTPService
}

func NewPublicServer(identity *service.IdentityService, auth *service.AuthService, otp *service.OTPService) *PublicServer {
	return &PublicServer{Identity: identity, Auth: auth, OTP: otp}
}

func (s *PublicServer) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	user, err := s.Identity.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
		Role:    user.Role,
	}, nil
}

func (s *PublicServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := s.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LoginResponse{
		Role:      res.Role,
		Principal: principalView(res.Principal),
		Token:     res.Token,
		ExpiresIn: int64(res.ExpiresIn.Seconds()),
	}, nil
}

// SendOtp never returns the code itself.
func (s *PublicServer) SendOtp(ctx context.Context, req *SendOtpRequest) (*MessageResponse, error) {
	if err := s.OTP.Issue(ctx, req.Email); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: fmt.Sprintf("OTP sent to %s", req.Email)}, nil
}

func (s *PublicServer) VerifyOtp(ctx context.Context, req *VerifyOtpRequest) (*MessageResponse, error) {
	if err := s.OTP.Verify(ctx, req.Email, req.Otp); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: "OTP verified"}, nil
}

func (s *PublicServer) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*MessageResponse, error) {
	role, err := s.Identity.ResetPassword(ctx, req.Email, req.NewPassword)
	if err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: fmt.Sprintf("%s password updated", role)}, nil
}

func (s *PublicServer) Revalidate(ctx context.Context, _ *Empty) (*TokenResponse, error) {
	tokenString, err := utils.ExtractTokenFromContext(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.Auth.Revalidate(ctx, tokenString)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TokenResponse{Token: token, Message: "Token revalidated successfully"}, nil
}

func (s *PublicServer) Logout(ctx context.Context, _ *Empty) (*MessageResponse, error) {
	tokenString, err := utils.ExtractTokenFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Auth.Logout(ctx, tokenString); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: "Logged out successfully"}, nil
}
