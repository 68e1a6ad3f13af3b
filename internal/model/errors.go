package model

import "errors"

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")
var ErrForbidden = errors.New("forbidden")
var ErrInvalidStatusTransition = errors.New("invalid share status transition")
