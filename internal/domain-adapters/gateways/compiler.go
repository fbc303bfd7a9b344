package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/shell"

	"github.com/ochairo/xrelease/internal/domain/entities"
	"github.com/ochairo/xrelease/internal/domain/interfaces"
)

// stderrTailLines limits how much compiler output ends up in error messages
const stderrTailLines = 20

// waitDelay bounds how long Compile waits for output pipes after the
// compiler is killed; grandchildren may still hold them open.
const waitDelay = 2 * time.Second

// Compiler invokes the external toolchain once per target.
// The target is passed through the child's environment only; the
// process environment is never modified.
type Compiler struct {
	command string
	env     map[string]string
	timeout time.Duration
	logger  interfaces.Logger
}

// NewCompiler creates a compiler for the manifest's build configuration
func NewCompiler(build entities.BuildConfig, logger interfaces.Logger) *Compiler {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	command := build.Command
	if strings.TrimSpace(command) == "" {
		command = entities.DefaultBuildCommand
	}

	return &Compiler{
		command: command,
		env:     build.Env,
		timeout: time.Duration(build.TimeoutMinutes) * time.Minute,
		logger:  logger,
	}
}

// WithTimeout overrides the per-invocation timeout (0 disables it)
func (c *Compiler) WithTimeout(timeout time.Duration) *Compiler {
	c.timeout = timeout
	return c
}

// Environ returns the child environment for a target: the process
// environment, then the manifest's build env, then GOOS/GOARCH.
// Later entries win, so the target always takes precedence.
func (c *Compiler) Environ(target entities.Target) []string {
	env := os.Environ()
	env = append(env, sortedEnv(c.env)...)
	env = append(env, sortedEnv(target.Env())...)
	return env
}

// Args resolves the command line for building source into output
func (c *Compiler) Args(target entities.Target, source, output string) ([]string, error) {
	lookup := envLookup(c.Environ(target))

	fields, err := shell.Fields(c.command, lookup)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid build command %q", c.command)
	}
	if len(fields) == 0 {
		return nil, eris.Errorf("build command %q is empty", c.command)
	}

	return append(fields, "-o", output, source), nil
}

// Compile builds source for target, writing the binary to output.
// A non-zero exit yields ErrCompileFailed, an expired timeout ErrCompileTimeout.
func (c *Compiler) Compile(ctx context.Context, target entities.Target, source, output string) (*entities.CompileResult, error) {
	args, err := c.Args(target, source, output)
	if err != nil {
		return nil, err
	}

	execCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	//nolint:gosec // G204: the build command comes from the release manifest
	cmd := exec.CommandContext(execCtx, args[0], args[1:]...)
	cmd.Env = c.Environ(target)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("Invoking compiler",
		interfaces.F("target", target),
		interfaces.F("args", strings.Join(args, " ")),
	)

	startTime := time.Now()
	runErr := cmd.Run()
	result := &entities.CompileResult{
		Args:     args,
		Duration: time.Since(startTime),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if runErr == nil {
		if result.Stderr != "" {
			c.logger.Debug("Compiler output", interfaces.F("target", target), interfaces.F("stderr", result.Stderr))
		}
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
	if execCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return result, eris.Wrapf(entities.ErrCompileTimeout, "%s after %v", target, c.timeout)
	} else if ctx.Err() != nil {
		return result, eris.Wrapf(ctx.Err(), "compiling %s", target)
	} else if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, eris.Wrapf(entities.ErrCompileFailed, "%s: exit status %d%s",
			target, result.ExitCode, formatTail(result.Stderr))
	}

	return result, eris.Wrapf(runErr, "failed to run compiler for %s", target)
}

func sortedEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}

// envLookup returns a lookup function over an environ slice; the last entry wins
func envLookup(environ []string) func(string) string {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return func(name string) string {
		return vars[name]
	}
}

// formatTail keeps the last lines of compiler stderr for error messages
func formatTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}

	lines := strings.Split(stderr, "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	return "\n" + strings.Join(lines, "\n")
}
