package lock

// An Entry is one locked dependency.  Entries are immutable; the full
// locked set forms the Graph, fetched once per project revision and
// reused across targets.
type Entry struct {
	Name      string
	Version   string
	Source    string
	Integrity string
}

// A Graph is the complete locked dependency set for one project
// revision.
type Graph struct {
	Version int
	Entries []Entry
}
