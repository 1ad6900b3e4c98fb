package memrepo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/repository"
)

type campaignRepo struct {
	store *Store
}

var _ repository.Campaign = campaignRepo{}

// Campaign ...
func (s *Store) Campaign() repository.Campaign {
	return campaignRepo{store: s}
}

func (r campaignRepo) InsertCampaign(ctx context.Context, campaign model.Campaign) (int64, error) {
	var id int64
	r.store.write(ctx, func(t *tables) {
		t.lastCampaignID++
		id = t.lastCampaignID
		campaign.ID = id
		t.campaigns[id] = campaign
	})
	return id, nil
}

func (r campaignRepo) UpdateCampaign(ctx context.Context, campaign model.Campaign) error {
	r.store.write(ctx, func(t *tables) {
		old, ok := t.campaigns[campaign.ID]
		if !ok {
			return
		}
		campaign.CreatedAt = old.CreatedAt
		campaign.CreatedBy = old.CreatedBy
		t.campaigns[campaign.ID] = campaign
	})
	return nil
}

func (r campaignRepo) DeleteCampaign(ctx context.Context, id int64) error {
	r.store.write(ctx, func(t *tables) {
		for k, m := range t.metrics {
			if m.CampaignID == id {
				delete(t.metrics, k)
			}
		}
		for k, e := range t.executions {
			if e.CampaignID == id {
				delete(t.executions, k)
			}
		}
		delete(t.campaigns, id)
	})
	return nil
}

func (r campaignRepo) GetCampaign(ctx context.Context, id int64) (model.NullCampaign, error) {
	var result model.NullCampaign
	r.store.read(ctx, func(t *tables) {
		c, ok := t.campaigns[id]
		result = model.NullCampaign{Valid: ok, Campaign: c}
	})
	return result, nil
}

func (r campaignRepo) LockCampaign(ctx context.Context, id int64) (model.NullCampaign, error) {
	var result model.NullCampaign
	r.store.write(ctx, func(t *tables) {
		c, ok := t.campaigns[id]
		result = model.NullCampaign{Valid: ok, Campaign: c}
	})
	return result, nil
}

func matchCampaign(c model.Campaign, filter repository.CampaignFilter) bool {
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	if filter.Type != "" && c.CampaignType != filter.Type {
		return false
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.Description), q) {
			return false
		}
	}
	return true
}

func compareTime(a *time.Time, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

func compareCampaigns(a model.Campaign, b model.Campaign, field repository.SortField) int {
	switch (repository.SortOrder{Field: field}).Column() {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "campaign_type":
		return strings.Compare(string(a.CampaignType), string(b.CampaignType))
	case "priority":
		return a.Priority - b.Priority
	case "start_date":
		return compareTime(a.StartDate, b.StartDate)
	case "end_date":
		return compareTime(a.EndDate, b.EndDate)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return 0
	}
}

func compareID(a int64, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func sortCampaigns(campaigns []model.Campaign, order repository.SortOrder) {
	sort.Slice(campaigns, func(i, j int) bool {
		cmp := compareCampaigns(campaigns[i], campaigns[j], order.Field)
		if cmp == 0 {
			cmp = compareID(campaigns[i].ID, campaigns[j].ID)
		}
		if order.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func pageOf[T any](all []T, page model.PageRequest) []T {
	begin := page.Offset()
	if begin >= len(all) {
		return nil
	}
	end := begin + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[begin:end]
}

func (r campaignRepo) ListCampaigns(
	ctx context.Context, filter repository.CampaignFilter, order repository.SortOrder, page model.PageRequest,
) ([]model.Campaign, int64, error) {
	var matched []model.Campaign
	r.store.read(ctx, func(t *tables) {
		for _, c := range t.campaigns {
			if matchCampaign(c, filter) {
				matched = append(matched, c)
			}
		}
	})
	sortCampaigns(matched, order)
	return pageOf(matched, page), int64(len(matched)), nil
}

func spentByCampaign(t *tables) map[int64]decimal.Decimal {
	result := map[int64]decimal.Decimal{}
	for _, e := range t.executions {
		result[e.CampaignID] = result[e.CampaignID].Add(e.Cost)
	}
	return result
}

func (r campaignRepo) ListOverBudgetCampaigns(
	ctx context.Context, page model.PageRequest,
) ([]model.Campaign, int64, error) {
	var matched []model.Campaign
	r.store.read(ctx, func(t *tables) {
		spent := spentByCampaign(t)
		for _, c := range t.campaigns {
			s, ok := spent[c.ID]
			if !ok || !c.BudgetLimit.Valid {
				continue
			}
			if s.GreaterThan(c.BudgetLimit.Decimal) {
				matched = append(matched, c)
			}
		}
	})
	sortCampaigns(matched, repository.SortOrder{})
	return pageOf(matched, page), int64(len(matched)), nil
}

func (r campaignRepo) FindCampaignsByStatus(
	ctx context.Context, statuses ...model.CampaignStatus,
) ([]model.Campaign, error) {
	var result []model.Campaign
	r.store.read(ctx, func(t *tables) {
		for _, c := range t.campaigns {
			for _, s := range statuses {
				if c.Status == s {
					result = append(result, c)
					break
				}
			}
		}
	})
	sortCampaigns(result, repository.SortOrder{})
	return result, nil
}

func (r campaignRepo) CountCampaignsByStatus(ctx context.Context) (map[model.CampaignStatus]int64, error) {
	result := map[model.CampaignStatus]int64{}
	r.store.read(ctx, func(t *tables) {
		for _, c := range t.campaigns {
			result[c.Status]++
		}
	})
	return result, nil
}
