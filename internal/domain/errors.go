package domain

import "errors"

var (
	ErrDuplicateIdentity    = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidOtp           = errors.New("invalid otp")
	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrManagerNotFound      = errors.New("manager not found")
	ErrMaterialNotFound     = errors.New("material not found")
	ErrInventoryNotFound    = errors.New("inventory item not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrAssignmentNotAllowed = errors.New("employee is not a member of the project")
	ErrUserNotFound         = errors.New("user not found")
	ErrValidation           = errors.New("validation failed")
	ErrNotificationFailed   = errors.New("notification delivery failed")
)
