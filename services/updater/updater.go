// Package updater refreshes stored product prices on demand and on a cron
// schedule, recording drops and publishing events for them.
package updater

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"pricehound/internal/discovery"
	"pricehound/logger"
	"pricehound/services/publisher"
	"pricehound/services/store"
)

// Refresh statuses
const (
	StatusOK       = "ok"
	StatusNoDeal   = "no_deal"
	StatusNotFound = "not_found"
)

// Discoverer runs a lowest-price discovery for one query
type Discoverer interface {
	DiscoverLowestPrice(ctx context.Context, query string, domains []string) discovery.Result
}

// RefreshOutcome reports one product's refresh
type RefreshOutcome struct {
	ProductID      string  `json:"product_id"`
	Status         string  `json:"status"`
	Price          float64 `json:"price,omitempty"`
	IsPriceDropped bool    `json:"is_price_dropped"`
}

// Updater refreshes tracked products against live discovery results
type Updater struct {
	pipeline  Discoverer
	products  store.ProductStore
	publisher publisher.Publisher
	cron      *cron.Cron
	log       *logger.Logger
}

// NewUpdater creates an updater. pub may be nil to disable event publishing.
func NewUpdater(pipeline Discoverer, products store.ProductStore, pub publisher.Publisher) *Updater {
	return &Updater{
		pipeline:  pipeline,
		products:  products,
		publisher: pub,
		log:       logger.ForUpdater(),
	}
}

// RefreshOne re-discovers the lowest price for one stored product and updates
// its record. A price strictly below the previous current price marks the
// product dropped and keeps the previous price as the last lowest.
func (u *Updater) RefreshOne(ctx context.Context, id string) (RefreshOutcome, error) {
	product, err := u.products.GetByID(id)
	if err != nil {
		if err == store.ErrNotFound {
			return RefreshOutcome{ProductID: id, Status: StatusNotFound}, nil
		}
		return RefreshOutcome{}, err
	}

	result := u.pipeline.DiscoverLowestPrice(ctx, product.Name, nil)
	if result.Status != discovery.StatusOK {
		u.log.Debug().Str("product", id).Str("status", result.Status).Msg("Refresh found no deal")
		return RefreshOutcome{ProductID: id, Status: StatusNoDeal}, nil
	}

	previous := product.CurrentPrice
	dropped := previous > 0 && result.Price < previous

	if previous > 0 {
		product.LastLowestPrice = previous
	} else {
		product.LastLowestPrice = result.Price
	}
	// The stored name is the stable query key for future refreshes; never
	// replace it with a name scraped from a listing.
	product.CurrentPrice = result.Price
	product.IsPriceDropped = dropped
	product.DeepLink = result.DeepLink
	product.Platform = result.SelectedDomain

	if err := u.products.Save(product); err != nil {
		return RefreshOutcome{}, err
	}

	if dropped && u.publisher != nil {
		event := publisher.PriceDropEvent{
			ProductID:   product.ID,
			ProductName: product.Name,
			Platform:    product.Platform,
			OldPrice:    previous,
			NewPrice:    result.Price,
			DeepLink:    product.DeepLink,
			OccurredAt:  time.Now().UTC(),
		}
		if err := u.publisher.PublishPriceDrop(event); err != nil {
			u.log.Warn().Err(err).Str("product", id).Msg("Failed to publish price-drop event")
		}
	}

	return RefreshOutcome{
		ProductID:      id,
		Status:         StatusOK,
		Price:          result.Price,
		IsPriceDropped: dropped,
	}, nil
}

// RefreshBatch refreshes the given products sequentially; each product's
// discovery already fans out across domains internally.
func (u *Updater) RefreshBatch(ctx context.Context, ids []string) []RefreshOutcome {
	outcomes := make([]RefreshOutcome, 0, len(ids))
	for _, id := range ids {
		outcome, err := u.RefreshOne(ctx, id)
		if err != nil {
			u.log.Error().Err(err).Str("product", id).Msg("Refresh failed")
			outcome = RefreshOutcome{ProductID: id, Status: StatusNoDeal}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// RefreshAll refreshes every tracked product
func (u *Updater) RefreshAll(ctx context.Context) ([]RefreshOutcome, error) {
	products, err := u.products.List()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return u.RefreshBatch(ctx, ids), nil
}

// StartSchedule begins running the full refresh on the given cron spec
func (u *Updater) StartSchedule(schedule string) error {
	u.cron = cron.New()
	_, err := u.cron.AddFunc(schedule, func() {
		u.runScheduledRefresh(context.Background())
	})
	if err != nil {
		return err
	}
	u.cron.Start()
	return nil
}

// runScheduledRefresh is one scheduled pass: refresh every product, then trim
// the event stream back to its configured length.
func (u *Updater) runScheduledRefresh(ctx context.Context) {
	u.log.Info().Msg("Scheduled refresh starting")
	outcomes, err := u.RefreshAll(ctx)
	if err != nil {
		u.log.Error().Err(err).Msg("Scheduled refresh failed")
		return
	}
	dropped := 0
	for _, o := range outcomes {
		if o.IsPriceDropped {
			dropped++
		}
	}
	u.log.Info().Int("products", len(outcomes)).Int("drops", dropped).Msg("Scheduled refresh finished")

	if u.publisher != nil {
		if err := u.publisher.TrimStream(); err != nil {
			u.log.Warn().Err(err).Msg("Failed to trim event stream")
		}
	}
}

// StopSchedule stops the cron scheduler if it is running
func (u *Updater) StopSchedule() {
	if u.cron != nil {
		u.cron.Stop()
	}
}
