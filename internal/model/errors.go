package model

import "github.com/pkg/errors"

var (
	ErrDimensionMismatch = errors.New("model: robot and kinematics joint counts differ")
	ErrFactorization     = errors.New("model: jacobian singular value decomposition failed")
	ErrInvalidLinks      = errors.New("model: link lengths must be positive")
	ErrUnknownKinematics = errors.New("model: unknown kinematics")
)
