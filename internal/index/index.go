package index

// ProjectIndex defines the interface for project indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type ProjectIndex interface {
	UpsertProject(p ProjectRow) error
	DeleteByPath(path string) error
	GetProject(name string) (*ProjectRow, error)
	ProjectByPath(path string) (*ProjectRow, error)
	ListProjects(status string) ([]ProjectRow, error)
	TrackedProjects() ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ProjectIndex at compile time.
var _ ProjectIndex = (*DB)(nil)
