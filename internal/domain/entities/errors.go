package entities

import "github.com/rotisserie/eris"

// Sentinel errors shared by the orchestrator, gateways and CLI.
// Match them with errors.Is or eris.Is.
var (
	ErrUsage          = eris.New("usage error")
	ErrMissingEnv     = eris.New("required environment variable not set")
	ErrCompileFailed  = eris.New("compilation failed")
	ErrCompileTimeout = eris.New("compilation timed out")
	ErrStage          = eris.New("staging failed")
	ErrPackage        = eris.New("packaging failed")
	ErrChecksum       = eris.New("checksum mismatch")
)
