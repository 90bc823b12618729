package volume

import (
	"errors"
	"sync"

	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/entity"
	"github.com/TickStack/marketplace-engine/internal/repository"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Service accumulates trade volume per contract and per day bucket. Counters
// only ever grow; the engine writes, everything else reads.
type Service interface {
	Record(contract string, amount uint64, timestamp int64)
	GetVolume(contract string, dayBucket int64) (entity.Volume, error)
	GetTodaysVolume(contract string, now int64) (entity.Volume, error)
}

type service struct {
	elastic elastic_search.Index
	repo    repository.VolumeRepository
	cache   *cache.Cache

	// mu serializes the read-modify-write on the accumulators. Settlements of
	// different listings on the same contract run concurrently.
	mu sync.Mutex
}

func NewService(elastic elastic_search.Index, repo repository.VolumeRepository, c *cache.Cache) Service {
	return &service{elastic: elastic, repo: repo, cache: c}
}

func (s *service) Record(contract string, amount uint64, timestamp int64) {
	dayBucket := entity.DayBucketFor(timestamp)

	s.mu.Lock()
	defer s.mu.Unlock()

	volume, err := s.getVolume(contract, dayBucket)
	if err != nil {
		// A transient read failure must not restart the bucket at zero and
		// upsert over the stored counters.
		if !errors.Is(err, repository.ErrVolumeNotFound) {
			zap.L().With(
				zap.Error(err),
				zap.String("contract", contract),
				zap.Int64("dayBucket", dayBucket),
			).Error("Volume: Failed to load accumulator")
			return
		}

		volume = entity.Volume{Contract: contract, DayBucket: dayBucket}
	}

	volume.Amount += amount
	volume.Trades++

	s.cache.Set(volume.Slug(), volume, cache.NoExpiration)
	s.elastic.AddUpdateRequest(elastic_search.VolumeIndex.Get(), volume, elastic_search.VolumeAccumulate)

	zap.L().With(
		zap.String("contract", contract),
		zap.Int64("dayBucket", dayBucket),
		zap.Uint64("amount", amount),
		zap.Uint64("total", volume.Amount),
	).Info("Volume: Recorded trade")
}

func (s *service) GetVolume(contract string, dayBucket int64) (entity.Volume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getVolume(contract, dayBucket)
}

func (s *service) getVolume(contract string, dayBucket int64) (entity.Volume, error) {
	if cached, found := s.cache.Get(entity.CreateVolumeSlug(contract, dayBucket)); found {
		return cached.(entity.Volume), nil
	}

	volume, err := s.repo.GetVolume(contract, dayBucket)
	if err != nil {
		return entity.Volume{}, err
	}

	s.cache.Set(volume.Slug(), volume, cache.NoExpiration)

	return volume, nil
}

func (s *service) GetTodaysVolume(contract string, now int64) (entity.Volume, error) {
	return s.GetVolume(contract, entity.DayBucketFor(now))
}
