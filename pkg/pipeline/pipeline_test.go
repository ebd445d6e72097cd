package pipeline

import (
	"bytes"
	"context"
	"debug/elf"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"lukechampine.com/blake3"

	"github.com/voidhawk/xstatic/pkg/buildenv"
	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/executor"
	"github.com/voidhawk/xstatic/pkg/fetch"
	"github.com/voidhawk/xstatic/pkg/lock"
	"github.com/voidhawk/xstatic/pkg/toolchain"
	"github.com/voidhawk/xstatic/pkg/types"
	"github.com/voidhawk/xstatic/pkg/verify"
)

var testBuild = types.TargetTriple{Arch: "x86_64", Vendor: "unknown", OS: "linux", ABI: "gnu"}

// elfBlob renders a minimal statically linked ELF64 image for the
// given machine, standing in for real compiler output.
func elfBlob(t *testing.T, machine elf.Machine) []byte {
	t.Helper()

	var buf bytes.Buffer
	ident := [16]byte{0x7f, 'E', 'L', 'F',
		byte(elf.ELFCLASS64), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT)}
	buf.Write(ident[:])
	for _, v := range []interface{}{
		uint16(elf.ET_EXEC),
		uint16(machine),
		uint32(elf.EV_CURRENT),
		uint64(0), uint64(0), uint64(0),
		uint32(0),
		uint16(64), uint16(56), uint16(0),
		uint16(64), uint16(0), uint16(0),
	} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return buf.Bytes()
}

// stubTool writes a build tool that mimics the real invocation shape
// and deposits the given blob where the executor collects artifacts.
func stubTool(t *testing.T, dir string, blob []byte) string {
	t.Helper()

	blobPath := filepath.Join(dir, "blob")
	if err := os.WriteFile(blobPath, blob, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	script := fmt.Sprintf(`#!/bin/sh
while [ "$#" -gt 0 ]; do
	case "$1" in
		--package) pkg="$2"; shift 2 ;;
		--profile) profile="$2"; shift 2 ;;
		--target) target="$2"; shift 2 ;;
		*) shift ;;
	esac
done
mkdir -p "$CARGO_TARGET_DIR/$target/$profile"
cp %q "$CARGO_TARGET_DIR/$target/$profile/$pkg"
`, blobPath)
	toolPath := filepath.Join(dir, "tool.sh")
	if err := os.WriteFile(toolPath, []byte(script), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return toolPath
}

// writeProject lays out a project directory with a lockfile whose
// entries are all already satisfied in the store, so the full run
// performs no network access at all.
func writeProject(t *testing.T, cm *cache.Manager) (string, string) {
	t.Helper()

	projectDir := t.TempDir()
	store := filepath.Join(cm.Root(), cache.RegionDepsIndex, "store")
	if err := os.MkdirAll(store, 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := lock.Graph{Version: 1}
	for name, version := range map[string]string{
		"zlib":       "1.3.1",
		"openssl":    "3.2.0",
		"fontconfig": "2.15.0",
	} {
		content := []byte("prefetched " + name)
		sum := blake3.Sum256(content)
		if err := os.WriteFile(filepath.Join(store, name+"-"+version), content, 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		g.Entries = append(g.Entries, lock.Entry{
			Name:      name,
			Version:   version,
			Source:    "http://127.0.0.1:1/unreachable/" + name,
			Integrity: hex.EncodeToString(sum[:]),
		})
	}
	b, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lockfile := filepath.Join(projectDir, "deps.lock.json")
	if err := os.WriteFile(lockfile, b, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return projectDir, lockfile
}

func testCacheManager(t *testing.T) *cache.Manager {
	t.Helper()
	cm, err := cache.New(cache.WithRoot(t.TempDir()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cm
}

func newTestPipeline(t *testing.T, cm *cache.Manager, machine elf.Machine, opts ...Option) *Pipeline {
	t.Helper()

	projectDir, lockfile := writeProject(t, cm)
	tool := stubTool(t, t.TempDir(), elfBlob(t, machine))

	opts = append([]Option{
		WithBuildPlatform(testBuild),
		WithProject(projectDir, lockfile),
		WithPlan(buildenv.Plan{{Library: "openssl", Mode: buildenv.Static}}),
		WithCacheManager(cm),
		WithExecutor(executor.New(cm, executor.WithTool(tool))),
	}, opts...)
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

// memStore satisfies the storage interface with a plain map so tests
// can observe what the pipeline writes through it.
type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Get(k []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[string(k)], nil
}

func (s *memStore) Put(k, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[string(k)] = append([]byte(nil), v...)
	return nil
}

func (s *memStore) Del(k []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, string(k))
	return nil
}

func (s *memStore) Close() error { return nil }

func TestRun(t *testing.T) {
	cm := testCacheManager(t)
	p := newTestPipeline(t, cm, elf.EM_AARCH64)

	triple, err := types.ParseTriple("arm64-linux-musl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outputDir := filepath.Join(t.TempDir(), "dist")

	staged, err := p.Run(context.Background(), types.BuildRequest{
		Triple:    triple,
		Package:   "proxy-bin",
		Profile:   "release",
		OutputDir: outputDir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if staged != filepath.Join(outputDir, "proxy-bin") {
		t.Fatalf("staged to %q", staged)
	}

	f, err := elf.Open(staged)
	if err != nil {
		t.Fatalf("staged output is not an ELF binary: %v", err)
	}
	defer f.Close()
	if f.Machine != elf.EM_AARCH64 {
		t.Fatalf("staged output targets %v, want EM_AARCH64", f.Machine)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("output directory holds %d files, want exactly 1", len(entries))
	}
}

func TestRunVerificationFailure(t *testing.T) {
	cm := testCacheManager(t)
	// The stub tool emits an x86_64 image against an aarch64 request.
	p := newTestPipeline(t, cm, elf.EM_X86_64)

	triple, err := types.ParseTriple("aarch64-linux-musl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outputDir := filepath.Join(t.TempDir(), "dist")

	_, err = p.Run(context.Background(), types.BuildRequest{
		Triple:    triple,
		Package:   "proxy-bin",
		Profile:   "release",
		OutputDir: outputDir,
	})
	var mismatch verify.ErrArchitectureMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want ErrArchitectureMismatch", err)
	}
	if got := ExitCode(err); got != ExitVerification {
		t.Fatalf("got exit code %d, want %d", got, ExitVerification)
	}

	// Nothing may reach the output directory on a failed verification.
	if _, err := os.Stat(filepath.Join(outputDir, "proxy-bin")); !os.IsNotExist(err) {
		t.Fatal("unverified artifact leaked into the output directory")
	}
}

func TestRunConfigurationBeforeNetwork(t *testing.T) {
	cm := testCacheManager(t)

	projectDir := t.TempDir()
	p, err := New(
		WithBuildPlatform(testBuild),
		// The lockfile does not exist; a conflicting plan must fail
		// before the fetch stage ever looks for it.
		WithProject(projectDir, filepath.Join(projectDir, "missing.lock.json")),
		WithPlan(buildenv.Plan{
			{Library: "openssl", Mode: buildenv.Static},
			{Library: "openssl", Mode: buildenv.Dynamic},
		}),
		WithCacheManager(cm),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	triple, err := types.ParseTriple("x86_64-linux-gnu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Run(context.Background(), types.BuildRequest{
		Triple:    triple,
		Package:   "proxy-bin",
		Profile:   "release",
		OutputDir: t.TempDir(),
	})
	var conflict buildenv.ErrConflictingLinkage
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ErrConflictingLinkage", err)
	}
	if got := ExitCode(err); got != ExitConfiguration {
		t.Fatalf("got exit code %d, want %d", got, ExitConfiguration)
	}
}

func TestRunParallelTriples(t *testing.T) {
	cm := testCacheManager(t)

	// Two pipelines for two triples share only the cache manager.
	pa := newTestPipeline(t, cm, elf.EM_AARCH64)
	pb := newTestPipeline(t, cm, elf.EM_RISCV)

	ta, err := types.ParseTriple("aarch64-linux-musl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tb, err := types.ParseTriple("riscv64-linux-gnu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outRoot := t.TempDir()
	reqs := []types.BuildRequest{
		{Triple: ta, Package: "proxy-bin", Profile: "release", OutputDir: filepath.Join(outRoot, ta.String())},
		{Triple: tb, Package: "proxy-bin", Profile: "release", OutputDir: filepath.Join(outRoot, tb.String())},
	}
	pipelines := []*Pipeline{pa, pb}

	var wg sync.WaitGroup
	errs := make([]error, len(reqs))
	staged := make([]string, len(reqs))
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			staged[i], errs[i] = pipelines[i].Run(context.Background(), reqs[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("pipeline %d failed: %v", i, err)
		}
	}
	if staged[0] == staged[1] {
		t.Fatalf("both triples staged to %q", staged[0])
	}
	for i, machine := range []elf.Machine{elf.EM_AARCH64, elf.EM_RISCV} {
		f, err := elf.Open(staged[i])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Machine != machine {
			f.Close()
			t.Fatalf("output %d targets %v, want %v", i, f.Machine, machine)
		}
		f.Close()
	}
}

func TestRunStatusEndpoint(t *testing.T) {
	cm := testCacheManager(t)
	p := newTestPipeline(t, cm, elf.EM_AARCH64)

	triple, err := types.ParseTriple("aarch64-linux-musl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Run(context.Background(), types.BuildRequest{
		Triple:    triple,
		Package:   "proxy-bin",
		Profile:   "release",
		OutputDir: t.TempDir(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	srv := httptest.NewServer(p.HTTPEntry())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/status/" + triple.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	var s Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != "succeeded" || s.Stage != "stage" {
		t.Fatalf("unexpected status: %+v", s)
	}
}

func TestRunPersistsStatus(t *testing.T) {
	cm := testCacheManager(t)
	store := newMemStore()
	p := newTestPipeline(t, cm, elf.EM_AARCH64, WithStatusStore(store))

	triple, err := types.ParseTriple("aarch64-linux-musl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Run(context.Background(), types.BuildRequest{
		Triple:    triple,
		Package:   "proxy-bin",
		Profile:   "release",
		OutputDir: t.TempDir(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := store.Get([]byte("status/" + triple.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("no status record written for the finished build")
	}
	var s Status
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != "succeeded" || s.Output == "" || s.Finished.IsZero() {
		t.Fatalf("unexpected persisted status: %+v", s)
	}
}

func TestRunPersistsFailedStatus(t *testing.T) {
	cm := testCacheManager(t)
	store := newMemStore()
	// The stub tool emits an x86_64 image against an aarch64 request,
	// so the run fails verification and the failure must be durable.
	p := newTestPipeline(t, cm, elf.EM_X86_64, WithStatusStore(store))

	triple, err := types.ParseTriple("aarch64-linux-musl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Run(context.Background(), types.BuildRequest{
		Triple:    triple,
		Package:   "proxy-bin",
		Profile:   "release",
		OutputDir: t.TempDir(),
	}); err == nil {
		t.Fatal("expected verification failure")
	}

	b, err := store.Get([]byte("status/" + triple.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s Status
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != "failed" || s.Error == "" {
		t.Fatalf("unexpected persisted status: %+v", s)
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("anything else"), ExitFailure},
		{types.NewErrInvalidTriple("x"), ExitConfiguration},
		{toolchain.NewErrUnsupportedTarget(testBuild), ExitConfiguration},
		{cache.NewErrRegionBusy("pkgmgr"), ExitConfiguration},
		{buildenv.NewErrConflictingLinkage("openssl"), ExitConfiguration},
		{lock.NewErrMalformedLockfile("deps.lock.json", "truncated"), ExitConfiguration},
		{fetch.NewErrNetwork("http://x", 3, errors.New("timeout")), ExitNetwork},
		{fetch.NewErrIntegrity("zlib", "aa", "bb"), ExitIntegrity},
		{executor.NewErrCompile("build", 1), ExitCompile},
		{verify.NewErrArchitectureMismatch("p", "aarch64", "EM_X86_64"), ExitVerification},
		{verify.NewErrDynamicLinkage("p", "has a program interpreter"), ExitVerification},
		{fmt.Errorf("fetch: %w", fetch.NewErrNetwork("http://x", 1, errors.New("refused"))), ExitNetwork},
	}

	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Fatalf("ExitCode(%v): got %d, want %d", c.err, got, c.want)
		}
	}
}
