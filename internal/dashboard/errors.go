package dashboard

import "errors"

var (
	ErrUnknownInput  = errors.New("unknown_input")
	ErrUnknownOutput = errors.New("unknown_output")
	ErrNotTable      = errors.New("region_not_table")
)
