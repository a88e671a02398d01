package index

// DocumentIndex defines the interface for vault indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, body string, links []string) error
	DeleteDocument(path string) error
	GetDocument(path string) (*DocumentRow, error)
	ListDocuments(limit, offset int, publishedOnly bool) ([]DocumentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Resolve(target string) (string, bool)
	Backlinks(target string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
