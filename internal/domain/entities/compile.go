package entities

import "time"

// CompileResult contains the result of one compiler invocation
type CompileResult struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}
