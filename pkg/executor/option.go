package executor

import (
	"github.com/hashicorp/go-hclog"
)

// Option configures an Executor during construction.
type Option func(*Executor)

// WithLogger sets the parent logger.
func WithLogger(l hclog.Logger) Option {
	return func(e *Executor) {
		e.l = l.Named("executor")
	}
}

// WithTool overrides the build tool binary.  The default is cargo;
// tests point this at a stub.
func WithTool(tool string) Option {
	return func(e *Executor) {
		e.tool = tool
	}
}

// WithExtraArgs appends fixed arguments to every build invocation.
func WithExtraArgs(args ...string) Option {
	return func(e *Executor) {
		e.extraArgs = args
	}
}
