package domain

import "errors"

// ErrUnknownTechnique indicates a technique name outside the closed set.
var ErrUnknownTechnique = errors.New("unknown prompt technique")

// ErrInvalidCase indicates an experiment case with missing or invalid fields.
var ErrInvalidCase = errors.New("invalid experiment case")

// ErrInvalidRecord indicates an experiment record that violates its invariants.
var ErrInvalidRecord = errors.New("invalid experiment record")

// ErrScoreOutOfRange indicates an honesty score outside [0,100].
var ErrScoreOutOfRange = errors.New("honesty score out of range")
