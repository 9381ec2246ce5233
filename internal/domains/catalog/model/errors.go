package model

import "errors"

var (
	ErrNotFound      = errors.New("catalog record not found")
	ErrTenantMissing = errors.New("tenant id is required")
)
