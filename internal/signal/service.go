package signal

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/storage"
)

// Service owns the lazily initialized signal model. It is constructed once
// by the host; GetOrTrain is safe for concurrent first access and never
// trains twice.
type Service struct {
	store storage.ModelWeightStore
	seed  int64
	log   zerolog.Logger

	mu    sync.Mutex
	model *Model
}

// NewService creates a model service backed by the given weight store.
// The seed drives fallback self-training so test runs are reproducible.
func NewService(store storage.ModelWeightStore, seed int64, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		seed:  seed,
		log:   log.With().Str("component", "signal-service").Logger(),
	}
}

// GetOrTrain returns the model, initializing it on first call. It first
// tries stored weights; when none can be loaded it self-trains once on the
// deterministic synthetic dataset. The initialization lock guarantees
// concurrent callers never trigger duplicate training.
func (s *Service) GetOrTrain(ctx context.Context) (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != nil {
		return s.model, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.store != nil {
		data, err := s.store.Load(ctx)
		if err == nil {
			model, decodeErr := DecodeWeights(data)
			if decodeErr == nil {
				s.log.Info().Bool("fallback", model.FallbackTrained).Msg("loaded model weights")
				s.model = model
				return s.model, nil
			}
			s.log.Warn().Err(decodeErr).Msg("stored weights rejected, falling back to self-training")
		} else {
			s.log.Warn().Err(err).Msg("no stored weights, falling back to self-training")
		}
	}

	model, err := TrainFallback(s.seed)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("trees", len(model.Ensemble.Trees)).Msg("self-trained fallback model")

	if s.store != nil {
		if data, encErr := EncodeWeights(model, time.Now()); encErr == nil {
			if saveErr := s.store.Save(ctx, data); saveErr != nil {
				s.log.Warn().Err(saveErr).Msg("could not persist fallback weights")
			}
		}
	}

	s.model = model
	return s.model, nil
}
