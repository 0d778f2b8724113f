package dataset

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes loaded tables by file path. The backing files do not change
// during a run, so every session shares the same read-only slices. Failed
// loads are not remembered.
type Cache struct {
	group singleflight.Group

	mu    sync.RWMutex
	stats map[string][]CrimeRecord
	geoms map[string][]DepartmentGeometry

	loadStats func(string, StatisticsOptions) ([]CrimeRecord, error)
	loadGeoms func(string, GeometryOptions) ([]DepartmentGeometry, error)
}

// NewCache returns an empty cache backed by LoadStatistics and LoadGeometry.
func NewCache() *Cache {
	return &Cache{
		stats:     make(map[string][]CrimeRecord),
		geoms:     make(map[string][]DepartmentGeometry),
		loadStats: LoadStatistics,
		loadGeoms: LoadGeometry,
	}
}

// Statistics returns the records at path, loading them on first use.
func (c *Cache) Statistics(path string, opts StatisticsOptions) ([]CrimeRecord, error) {
	c.mu.RLock()
	recs, ok := c.stats[path]
	c.mu.RUnlock()
	if ok {
		return recs, nil
	}

	v, err, _ := c.group.Do("stats:"+path, func() (interface{}, error) {
		recs, err := c.loadStats(path, opts)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.stats[path] = recs
		c.mu.Unlock()
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]CrimeRecord), nil
}

// Geometry returns the department boundaries at path, loading them on first use.
func (c *Cache) Geometry(path string, opts GeometryOptions) ([]DepartmentGeometry, error) {
	c.mu.RLock()
	geoms, ok := c.geoms[path]
	c.mu.RUnlock()
	if ok {
		return geoms, nil
	}

	v, err, _ := c.group.Do("geom:"+path, func() (interface{}, error) {
		geoms, err := c.loadGeoms(path, opts)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.geoms[path] = geoms
		c.mu.Unlock()
		return geoms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]DepartmentGeometry), nil
}
