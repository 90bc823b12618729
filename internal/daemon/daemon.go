package daemon

import (
	"errors"
	"time"

	"github.com/TickStack/marketplace-engine/internal/config"
	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/marketplace"
	"github.com/TickStack/marketplace-engine/internal/repository"
	"go.uber.org/zap"
)

// Daemon restores the engine's state and sweeps ended auctions into settlement.
// Settlement is callable by anyone, so the sweep simply plays the role of the
// first caller.
type Daemon struct {
	elastic     elastic_search.Index
	engine      *marketplace.Engine
	listingRepo repository.ListingRepository
	auctionRepo repository.AuctionRepository
	escrowRepo  repository.EscrowRepository
}

func NewDaemon(
	elastic elastic_search.Index,
	engine *marketplace.Engine,
	listingRepo repository.ListingRepository,
	auctionRepo repository.AuctionRepository,
	escrowRepo repository.EscrowRepository,
) *Daemon {
	return &Daemon{elastic, engine, listingRepo, auctionRepo, escrowRepo}
}

func (d *Daemon) Execute() {
	d.elastic.InstallMappings()

	if err := d.engine.Restore(d.listingRepo, d.auctionRepo, d.escrowRepo); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Daemon: Failed to restore engine state")
	}

	if config.Get().Reindex == true {
		zap.L().Info("Reindex complete")
		return
	}

	d.subscribe()
}

func (d *Daemon) subscribe() {
	interval := config.Get().Market.SweepInterval

	zap.L().With(zap.Duration("interval", interval)).Info("Daemon: Sweeping ended auctions")

	for {
		d.sweep()
		d.elastic.Persist()

		time.Sleep(interval)
	}
}

func (d *Daemon) sweep() {
	for _, auction := range d.engine.ExpiredAuctions() {
		err := d.engine.SettleAuction(auction.Contract, auction.TokenId)
		if err == nil {
			continue
		}

		// Raced with an external settle call; nothing to do.
		if errors.Is(err, marketplace.ErrAuctionEnded) || errors.Is(err, marketplace.ErrItemNotListed) {
			continue
		}

		zap.L().With(
			zap.Error(err),
			zap.String("contract", auction.Contract),
			zap.Uint64("tokenId", auction.TokenId),
		).Error("Daemon: Failed to settle auction")
	}
}
