package grpc

import (
	"context"
	"errors"

	"constructedge/internal/domain"
	"constructedge/internal/lock"
	"constructedge/internal/utils"
	"constructedge/internal/utils/blacklist"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	// checked first: unknown assignees wrap both this and ErrEmployeeNotFound
	{domain.ErrAssignmentNotAllowed, codes.FailedPrecondition},
	{domain.ErrValidation, codes.InvalidArgument},
	{domain.ErrDuplicateIdentity, codes.AlreadyExists},
	{domain.ErrInvalidCredentials, codes.Unauthenticated},
	{domain.ErrInvalidOtp, codes.Unauthenticated},
	{utils.ErrInvalidToken, codes.Unauthenticated},
	{blacklist.ErrTokenRevoked, codes.Unauthenticated},
	{blacklist.ErrUserBanned, codes.PermissionDenied},
	{domain.ErrUserNotFound, codes.NotFound},
	{domain.ErrProjectNotFound, codes.NotFound},
	{domain.ErrTaskNotFound, codes.NotFound},
	{domain.ErrEmployeeNotFound, codes.NotFound},
	{domain.ErrRoleNotFound, codes.NotFound},
	{domain.ErrManagerNotFound, codes.NotFound},
	{domain.ErrMaterialNotFound, codes.NotFound},
	{domain.ErrInventoryNotFound, codes.NotFound},
	{domain.ErrCustomerNotFound, codes.NotFound},
	{domain.ErrNotificationFailed, codes.Unavailable},
	{lock.ErrNotObtained, codes.Aborted},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
	{context.Canceled, codes.Canceled},
}

// toStatus converts a service error into a gRPC status error.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return status.Error(e.code, err.Error())
		}
	}
	logger.Logger.Error("Unhandled service error", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
