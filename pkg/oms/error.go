package oms

import "errors"

var (
	ErrClosed        = errors.New("oms closed")
	errInvalidConfig = errors.New("invalid oms config")
)
