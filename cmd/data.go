package cmd

import (
	"go.uber.org/zap"

	"github.com/zalepa/delinquance/config"
	"github.com/zalepa/delinquance/dashboard"
	"github.com/zalepa/delinquance/dataset"
)

// loadDashboard reads the statistics and boundaries named by c through the
// shared cache. The optional high-resolution boundaries only feed the static
// density map; failing to read them is logged, not fatal.
func loadDashboard(cache *dataset.Cache, c config.Config, log *zap.Logger) (*dashboard.Dashboard, error) {
	records, err := cache.Statistics(c.Data.Statistics, c.StatisticsOptions())
	if err != nil {
		return nil, err
	}
	log.Debug("statistics loaded", zap.String("path", c.Data.Statistics), zap.Int("rows", len(records)))

	geoms, err := cache.Geometry(c.Data.Geometry, c.GeometryOptions())
	if err != nil {
		return nil, err
	}
	log.Debug("geometry loaded", zap.String("path", c.Data.Geometry), zap.Int("departments", len(geoms)))

	d := &dashboard.Dashboard{
		Records:    records,
		Geometries: geoms,
		Join:       c.JoinOptions(),
		HeadRows:   c.Server.HeadRows,
	}
	if c.Data.Boundaries != "" {
		bounds, err := cache.Geometry(c.Data.Boundaries, c.GeometryOptions())
		if err != nil {
			log.Warn("boundaries unavailable, using the map geometry", zap.String("path", c.Data.Boundaries), zap.Error(err))
		} else {
			d.Boundaries = bounds
		}
	}
	return d, nil
}
