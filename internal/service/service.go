// Package service wires loading, computation, export and persistence into
// one run.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/graph-metrics/internal/repository"
	"github.com/graph-metrics/internal/storage"
	"github.com/graph-metrics/pkg/config"
	"github.com/graph-metrics/pkg/metrics"
	"github.com/graph-metrics/pkg/utils"
)

// Service runs computations described by a config.Config.
type Service struct {
	config  *config.Config
	logger  utils.Logger
	repos   *repository.Repositories
	storage storage.Storage
	metrics *metrics.Recorder
	clock   utils.Clock
	tracing bool

	newRunID func() string
	ownsDB   bool
}

// Option configures a Service.
type Option func(*Service)

// WithRepositories uses repos instead of opening the configured database.
func WithRepositories(repos *repository.Repositories) Option {
	return func(s *Service) {
		s.repos = repos
	}
}

// WithStorage uses store instead of the configured storage backend.
func WithStorage(store storage.Storage) Option {
	return func(s *Service) {
		s.storage = store
	}
}

// WithMetrics sets the metrics recorder. Default: metrics.Default().
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithRunIDs sets the run ID generator. Default: random UUIDs.
func WithRunIDs(next func() string) Option {
	return func(s *Service) {
		s.newRunID = next
	}
}

// WithClock sets the clock used for run timestamps.
func WithClock(c utils.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithTracing installs the GORM tracing plugin on the database it opens.
func WithTracing(enabled bool) Option {
	return func(s *Service) {
		s.tracing = enabled
	}
}

// New creates a new Service instance.
func New(cfg *config.Config, logger utils.Logger, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	s := &Service{
		config:   cfg,
		logger:   logger,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	if s.clock == nil {
		s.clock = utils.NewRealClock()
	}
	return s, nil
}

// Initialize opens the database and storage backends enabled in the config.
func (s *Service) Initialize(ctx context.Context) error {
	if s.config.Database.Enabled && s.repos == nil {
		if err := s.initDatabase(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	if s.config.Storage.Enabled && s.storage == nil {
		if err := s.initStorage(); err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
	}
	return nil
}

// initDatabase opens the database and migrates the schema.
func (s *Service) initDatabase(ctx context.Context) error {
	s.logger.Info("Connecting to database (%s)...", s.config.Database.Type)

	dbConfig := &repository.DBConfig{
		Type:     s.config.Database.Type,
		Host:     s.config.Database.Host,
		Port:     s.config.Database.Port,
		Database: s.config.Database.Database,
		User:     s.config.Database.User,
		Password: s.config.Database.Password,
		Path:     s.config.Database.Path,
		MaxConns: s.config.Database.MaxConns,
		Tracing:  s.tracing,
	}

	gormDB, err := repository.NewGormDB(dbConfig)
	if err != nil {
		return err
	}

	repos := repository.NewRepositories(gormDB)
	if err := repos.AutoMigrate(ctx); err != nil {
		repos.Close()
		return err
	}
	s.repos = repos
	s.ownsDB = true
	s.logger.Info("Database connection established")
	return nil
}

// initStorage initializes the object storage.
func (s *Service) initStorage() error {
	s.logger.Info("Initializing storage (%s)...", s.config.Storage.Type)

	store, err := storage.NewStorage(&s.config.Storage)
	if err != nil {
		return err
	}
	s.storage = store
	return nil
}

// Close releases the database connection opened by Initialize.
func (s *Service) Close() error {
	if s.ownsDB && s.repos != nil {
		return s.repos.Close()
	}
	return nil
}
