package btf

import "github.com/sirupsen/logrus"

// BackendKind selects which storage strategy a constructor builds.
type BackendKind int

const (
	// BackendCache eagerly decodes every type at construction time.
	BackendCache BackendKind = iota
	// BackendMmap keeps raw bytes resident and decodes on demand. Only
	// valid for a base blob; split constructors silently fall back to
	// BackendCache (logged at debug level) since split name queries must
	// union base and split results.
	BackendMmap
)

// Option configures a Spec constructor.
type Option func(*options)

type options struct {
	backend BackendKind
	logger  *logrus.Logger
}

func defaultOptions() options {
	return options{backend: BackendCache, logger: defaultLogger}
}

// WithBackend selects the storage backend a constructor builds.
func WithBackend(kind BackendKind) Option {
	return func(o *options) { o.backend = kind }
}

// WithLogger overrides the package-level default logger for one Spec.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

func resolveOptions(opts []Option) options {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
