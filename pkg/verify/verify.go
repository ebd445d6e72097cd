package verify

import (
	"debug/elf"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/types"
)

// machineProfile is what a triple's architecture must look like in
// the ELF header.
type machineProfile struct {
	machine elf.Machine
	class   elf.Class
}

var machineProfiles = map[string]machineProfile{
	"x86_64":  {elf.EM_X86_64, elf.ELFCLASS64},
	"aarch64": {elf.EM_AARCH64, elf.ELFCLASS64},
	"i686":    {elf.EM_386, elf.ELFCLASS32},
	"armv7l":  {elf.EM_ARM, elf.ELFCLASS32},
	"riscv64": {elf.EM_RISCV, elf.ELFCLASS64},
}

// A Verifier confirms a candidate artifact was actually produced for
// the requested target before it is published.  A build that silently
// produces the wrong binary is worse than one that fails loudly.
type Verifier struct {
	l hclog.Logger
}

// New returns a Verifier.
func New(l hclog.Logger) *Verifier {
	return &Verifier{l: l.Named("verify")}
}

// Verify inspects the artifact's embedded architecture metadata and
// compares it against the requested triple, then confirms the binary
// is actually static.
func (v *Verifier) Verify(a types.Artifact, triple types.TargetTriple) error {
	want, ok := machineProfiles[triple.Arch]
	if !ok {
		return NewErrArchitectureMismatch(a.Path, triple.Arch, "no machine profile")
	}

	f, err := elf.Open(a.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if f.Machine != want.machine || f.Class != want.class {
		v.l.Warn("Artifact architecture mismatch",
			"path", a.Path, "want", want.machine, "got", f.Machine)
		return NewErrArchitectureMismatch(a.Path, triple.Arch, f.Machine.String())
	}

	for _, prog := range f.Progs {
		if prog.Type == elf.PT_INTERP {
			return NewErrDynamicLinkage(a.Path, "has a program interpreter")
		}
	}
	// A dynamic section that cannot be read is just as disqualifying
	// as one that names a shared library.
	libs, err := f.ImportedLibraries()
	if err != nil {
		return NewErrDynamicLinkage(a.Path, "unreadable dynamic section: "+err.Error())
	}
	if len(libs) > 0 {
		return NewErrDynamicLinkage(a.Path, "imports "+libs[0])
	}

	v.l.Debug("Artifact verified", "path", a.Path, "triple", triple)
	return nil
}
