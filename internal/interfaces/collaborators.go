package interfaces

// ProgressFunc posts a progress message back to the triggering
// conversation. The pipeline calls it at fixed checkpoints, never more
// than once per checkpoint.
type ProgressFunc func(text string)

// ArtifactStore persists one generated artifact and returns its path.
type ArtifactStore interface {
	Save(content, filename, dir string) (string, error)
}

// Archiver uploads a saved artifact to remote storage. Failures are
// logged by the caller, never propagated.
type Archiver interface {
	Upload(path string) (string, error)
}

// Notifier delivers the artifact set and reaction signals to the
// trigger source. token is the run's correlation token (thread id).
type Notifier interface {
	Upload(paths []string, destination, token string) error
	React(name, token string) error
}
