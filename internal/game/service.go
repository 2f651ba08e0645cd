package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingSource     = errors.New("video source is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()

	// ErrRoundNotFound indicates the round id is unknown, expired, or was
	// already evaluated.
	ErrRoundNotFound = errors.New("game: round not found or already evaluated")
	// ErrInvalidGuess indicates the guessed comment was not among the shown options.
	ErrInvalidGuess = errors.New("game: comment is not part of this round")
	// ErrPoolExhausted indicates too few pool items exist even after top-up.
	ErrPoolExhausted = errors.New("game: daily pool is exhausted")
)

// ServiceError tags internal failures with an operation.reason code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew    = "game.service.new"
	opPopulatePool  = "game.populate_daily_pool"
	opGenerateBatch = "game.generate_round_batch"
	opRound         = "game.round"
	opDailyPath     = "game.daily_path"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// VideoSource is the upstream search/metadata/comments capability.
type VideoSource interface {
	// SearchVideos returns candidate video ids; implementations degrade to
	// an empty slice on transient failure.
	SearchVideos(ctx context.Context, query string, maxResults int) ([]string, error)
	// VideoDetails returns nil for videos that are unusable for a round.
	VideoDetails(ctx context.Context, videoID string) (*VideoDetails, error)
	// TopComments returns unfiltered ordering; sorting is the caller's job.
	TopComments(ctx context.Context, videoID string, maxResults int) ([]Comment, error)
}

// IDProvider issues round identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig collects the dependencies of the game service.
type ServiceConfig struct {
	Database   *gorm.DB
	Source     VideoSource
	IDProvider IDProvider
	Clock      func() time.Time
	Rand       *rand.Rand
	PoolTarget int
	Logger     *zap.Logger
}

// Service owns the round pool lifecycle: stocking, materialization, session
// bookkeeping, and guess evaluation.
type Service struct {
	db         *gorm.DB
	source     VideoSource
	ids        IDProvider
	clock      func() time.Time
	rng        *rand.Rand
	rngMu      sync.Mutex
	poolTarget int
	logger     *zap.Logger
	sessions   *sessionCache
}

// NewService validates dependencies and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.Source == nil {
		return nil, newServiceError(opServiceNew, "missing_source", errMissingSource)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	poolTarget := cfg.PoolTarget
	if poolTarget <= 0 {
		poolTarget = pathPoolTarget
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		source:     cfg.Source,
		ids:        cfg.IDProvider,
		clock:      clock,
		rng:        rng,
		poolTarget: poolTarget,
		logger:     logger,
		sessions:   newSessionCache(sessionCapacity),
	}, nil
}

const dayLayout = "2006-01-02"

// today returns the current calendar day in UTC, the only scope the HTTP
// surface serves from.
func (s *Service) today() string {
	return s.clock().UTC().Format(dayLayout)
}

// The service's rand.Rand is shared across request handlers; math/rand
// sources are not safe for concurrent use.

func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func (s *Service) perm(n int) []int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Perm(n)
}

func (s *Service) shuffle(n int, swap func(i, j int)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(n, swap)
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("game service error", attrs...)
}
