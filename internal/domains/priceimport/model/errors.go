package model

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedFile      = errors.New("unsupported file type")
	ErrEmptyFile            = errors.New("file is empty")
	ErrConfirmationRequired = errors.New("overwrite requires the exact confirmation text")
	ErrNothingToImport      = errors.New("no importable rows; overwrite refused")
)

// OverwriteConfirmation là chuỗi người dùng phải gõ chính xác để overwrite
const OverwriteConfirmation = "OVERWRITE"

// ParseError - file không đọc được. Stage dừng ngay.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

func NewParseError(message string, err error) *ParseError {
	return &ParseError{Message: message, Err: err}
}

// MappingError - mapping không thể dùng được (thiếu product name, thiếu price...)
type MappingError struct {
	Messages []string
}

func (e *MappingError) Error() string {
	return "invalid mapping: " + strings.Join(e.Messages, "; ")
}

// ConfirmationError - overwrite không kèm đúng chuỗi xác nhận
type ConfirmationError struct{}

func (e *ConfirmationError) Error() string { return ErrConfirmationRequired.Error() }

func (e *ConfirmationError) Unwrap() error { return ErrConfirmationRequired }
