package apperrors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrEmptyObjectName       = errors.New("object name is required")
	ErrNilRecord             = errors.New("record must not be nil")
	ErrEmptyInput            = errors.New("input text is required")
	ErrUnsupportedProvider   = errors.New("unsupported AI provider")
	ErrUnsupportedDatasource = errors.New("unsupported datasource type")
)
