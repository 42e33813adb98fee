package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmployeeInactive        = errors.New("employee account is deactivated")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
	ErrInvalidPhoneNumber      = errors.New("phone number must be 7-15 digits")
	ErrContactNotOwn           = errors.New("please share your own contact")
)
