package domain

import "errors"

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidUser = errors.New("invalid user attributes")
var ErrInvalidRole = errors.New("invalid role")
