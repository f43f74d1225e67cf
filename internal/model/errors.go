package model

import "errors"

var (
	ErrAlreadyExpanded    = errors.New("experiment already expanded")
	ErrEmptyDesign        = errors.New("experiment design is empty")
	ErrExperimentNotFound = errors.New("experiment not found")
	ErrInvalidDefinition  = errors.New("invalid experiment definition")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrProfileSetNotFound = errors.New("profile set not found")
	ErrProfileSetExists   = errors.New("profile set already exists")
	ErrUnknownInstrument  = errors.New("unknown instrument")
	ErrUnknownEncoding    = errors.New("unknown encoding")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrInvalidTransition  = errors.New("invalid experiment status transition")
	ErrInvalidGroupBy     = errors.New("invalid group_by dimension")
)
