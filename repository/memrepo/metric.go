package memrepo

import (
	"context"
	"sort"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

type metricRepo struct {
	store *Store
}

var _ repository.Metric = metricRepo{}

// Metric ...
func (s *Store) Metric() repository.Metric {
	return metricRepo{store: s}
}

func (r metricRepo) InsertMetric(ctx context.Context, metric model.Metric) (int64, error) {
	var id int64
	r.store.write(ctx, func(t *tables) {
		t.lastMetricID++
		id = t.lastMetricID
		metric.ID = id
		t.metrics[id] = metric
	})
	return id, nil
}

func (r metricRepo) ListMetricsByCampaign(
	ctx context.Context, campaignID int64, page model.PageRequest,
) ([]model.Metric, int64, error) {
	var matched []model.Metric
	r.store.read(ctx, func(t *tables) {
		for _, m := range t.metrics {
			if m.CampaignID == campaignID {
				matched = append(matched, m)
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return pageOf(matched, page), int64(len(matched)), nil
}
