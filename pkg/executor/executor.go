package executor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/buildenv"
	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/toolchain"
	"github.com/voidhawk/xstatic/pkg/types"
)

// New returns an executor that caches compiler objects in the
// manager's objects region.
func New(cm *cache.Manager, opts ...Option) *Executor {
	e := Executor{
		l:    hclog.NewNullLogger(),
		cm:   cm,
		tool: "cargo",
	}
	for _, o := range opts {
		o(&e)
	}
	return &e
}

// Execute compiles the requested package inside projectDir.  The
// objects region is held ConcurrentSafe for the whole call; builds
// for different triples write to distinct target subdirectories so
// parallel pipelines never collide.
func (e *Executor) Execute(ctx context.Context, projectDir string, req types.BuildRequest, spec toolchain.Spec, env buildenv.Environment) (types.Artifact, error) {
	region, err := e.cm.Region(cache.RegionObjects, cache.ConcurrentSafe)
	if err != nil {
		return types.Artifact{}, err
	}
	handle, err := e.cm.Acquire(ctx, region)
	if err != nil {
		return types.Artifact{}, err
	}
	defer handle.Release()

	targetDir := filepath.Join(region.Path(), "target")

	args := []string{
		"build",
		"--offline",
		"--package", req.Package,
		"--profile", req.Profile,
		"--target", req.Triple.String(),
	}
	args = append(args, e.extraArgs...)

	cmd := exec.CommandContext(ctx, e.tool, args...)
	cmd.Dir = projectDir
	cmd.Env = buildCommandEnv(env, targetDir)

	e.l.Debug("Invoking build tool", "tool", e.tool, "args", args, "triple", req.Triple)
	out, err := cmd.CombinedOutput()
	if err != nil {
		code := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		e.l.Warn("Build tool failed", "triple", req.Triple, "code", code, "output", string(out))
		return types.Artifact{}, NewErrCompile("build", code)
	}
	e.l.Trace("Build tool output", "output", string(out))

	artifact := types.Artifact{
		Path:    filepath.Join(targetDir, req.Triple.String(), req.Profile, req.Package),
		Triple:  req.Triple,
		Profile: req.Profile,
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		e.l.Warn("Build exited cleanly but produced no artifact", "path", artifact.Path)
		return types.Artifact{}, NewErrCompile("collect", 1)
	}
	return artifact, nil
}

// buildCommandEnv overlays the composed environment onto a minimal
// host base.  Only PATH and HOME leak in from the process; everything
// else the compile sees is in the explicit environment value.
func buildCommandEnv(env buildenv.Environment, targetDir string) []string {
	out := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"CARGO_TARGET_DIR=" + targetDir,
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
