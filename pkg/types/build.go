package types

// A BuildRequest is the complete input for one pipeline run.  One
// request produces exactly one Artifact or a failure.
type BuildRequest struct {
	Triple    TargetTriple
	Package   string
	Profile   string
	OutputDir string
}

// An Artifact is a candidate binary produced by the executor.  It is
// owned exclusively by the pipeline stage currently holding it and
// ownership transfers stage to stage.
type Artifact struct {
	Path    string
	Triple  TargetTriple
	Profile string
}
