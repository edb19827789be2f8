package maquette

import "errors"

// Stage taxonomy. Clone wraps the underlying failure with %w so the HTTP
// layer can classify with errors.Is.
var (
	ErrConfig         = errors.New("maquette: invalid configuration")
	ErrInvalidRequest = errors.New("maquette: invalid request")
	ErrCapture        = errors.New("maquette: capture failed")
	ErrAnalysis       = errors.New("maquette: analysis failed")
	ErrGeneration     = errors.New("maquette: generation failed")
)
