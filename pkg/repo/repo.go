package repo

import (
	"go.uber.org/zap"

	"github.com/odvcencio/tinygit/pkg/clock"
	"github.com/odvcencio/tinygit/pkg/object"
)

// MetaDirName is the name of the repository metadata directory. It is never
// included in a tree built from the work tree.
const MetaDirName = ".git"

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	clock  clock.Clock
	logger *zap.Logger
}

// Option customizes a Repo at Init or Open.
type Option func(*Repo)

// WithClock sets the clock used to timestamp commits.
func WithClock(c clock.Clock) Option {
	return func(r *Repo) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger shared by the repository and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repo) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func newRepo(rootDir, gitDir string, opts []Option) (*Repo, error) {
	r := &Repo{
		RootDir: rootDir,
		GitDir:  gitDir,
		clock:   clock.Real(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	r.Config = cfg
	r.Store = object.NewStore(object.StoreConfig{
		Root:             gitDir,
		CompressionLevel: cfg.Core.Compression,
	}, object.WithLogger(r.logger.Named("store")))
	return r, nil
}
