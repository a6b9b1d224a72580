package pathing

import (
	"context"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CachedPathCalculator consults a persistent PathCache before computing a
// path with the wrapped calculator, and stores fresh results back.
type CachedPathCalculator struct {
	inner   ports.PathCalculator
	cache   ports.PathCache
	region  *domain.Region
	log     zerolog.Logger
	timeout time.Duration
}

func NewCachedPathCalculator(
	inner ports.PathCalculator,
	cache ports.PathCache,
	region *domain.Region,
	log zerolog.Logger,
) (*CachedPathCalculator, error) {
	if inner == nil || cache == nil || region == nil {
		return nil, errors.New("cached path calculator: inner, cache and region are required")
	}
	return &CachedPathCalculator{
		inner:   inner,
		cache:   cache,
		region:  region,
		log:     log,
		timeout: 2 * time.Second,
	}, nil
}

func (c *CachedPathCalculator) GetPath(from, to *domain.Node) ([]*domain.Node, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	hops, ok, err := c.cache.Get(ctx, from.Location(), to.Location())
	if err != nil {
		return nil, fmt.Errorf("get cached path %s -> %s: %w", from.Name(), to.Name(), err)
	}
	if ok {
		return resolve(c.region, hops)
	}

	path, err := c.inner.GetPath(from, to)
	if err != nil {
		return nil, err
	}

	locs := make([]domain.Location, 0, len(path))
	for _, n := range path {
		locs = append(locs, n.Location())
	}
	if err := c.cache.Put(ctx, from.Location(), to.Location(), locs); err != nil {
		c.log.Warn().Err(err).Stringer("from", from.Location()).Stringer("to", to.Location()).Msg("path cache write failed")
	}
	return path, nil
}
