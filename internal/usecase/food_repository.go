package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/manmaru/backend/internal/domain"
	"github.com/manmaru/backend/internal/pkg/logger"
)

const indexLoadKey = "food-index"

// FoodRepository owns the reference dataset. The index is loaded lazily on
// first use; concurrent first callers wait on the same in-flight load. A
// failed load is not remembered, so the next call retries.
type FoodRepository struct {
	source domain.FoodDataSource
	logger *zap.Logger
	group  singleflight.Group
	index  atomic.Pointer[FoodIndex]
}

// NewFoodRepository creates a repository that loads from source on first use.
func NewFoodRepository(source domain.FoodDataSource, log *zap.Logger) *FoodRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &FoodRepository{source: source, logger: log}
}

// NewStaticFoodRepository wraps an already built index.
func NewStaticFoodRepository(idx *FoodIndex) *FoodRepository {
	r := &FoodRepository{logger: zap.NewNop()}
	r.index.Store(idx)
	return r
}

// Ready reports whether the index has been loaded.
func (r *FoodRepository) Ready() bool {
	return r.index.Load() != nil
}

// Describe names the dataset source.
func (r *FoodRepository) Describe() string {
	if r.source == nil {
		return "static"
	}
	return r.source.Describe()
}

// Index returns the loaded index, loading it if needed. Cancelling ctx stops
// this caller from waiting but does not abort a load other callers share.
func (r *FoodRepository) Index(ctx context.Context) (*FoodIndex, error) {
	if idx := r.index.Load(); idx != nil {
		return idx, nil
	}
	if r.source == nil {
		return nil, domain.ErrIndexNotLoaded
	}

	ch := r.group.DoChan(indexLoadKey, func() (any, error) {
		if idx := r.index.Load(); idx != nil {
			return idx, nil
		}
		return r.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*FoodIndex), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *FoodRepository) load(ctx context.Context) (*FoodIndex, error) {
	start := time.Now()
	r.logger.Info("loading food dataset", zap.String("source", r.source.Describe()))

	foods, err := r.source.LoadFoods(ctx)
	if err != nil {
		r.logger.Error("food dataset load failed",
			zap.String("source", r.source.Describe()),
			zap.Error(err),
		)
		return nil, err
	}

	idx := NewFoodIndex(foods, r.logger)
	if idx.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDatasetEmpty, r.source.Describe())
	}
	r.index.Store(idx)

	r.logger.Info("food dataset loaded",
		zap.String("source", r.source.Describe()),
		zap.Int("foods", idx.Len()),
		logger.Since(start),
	)
	return idx, nil
}
