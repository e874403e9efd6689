package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultFilePerm is the default permission used when writing report files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultDocument is the document audited when no path is given.
	DefaultDocument = "index.html"
	// DefaultFetchTimeout bounds every resource fetch.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultConcurrency keeps verification sequential unless asked otherwise.
	DefaultConcurrency = 1
	// DefaultRateLimit is the global fetch budget in requests per second.
	DefaultRateLimit = 10
	// DefaultSuggestAlgorithm is the digest used for suggested integrity values.
	DefaultSuggestAlgorithm = "sha384"
)
