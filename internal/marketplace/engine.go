package marketplace

import (
	"errors"
	"sync"
	"time"

	"github.com/TickStack/marketplace-engine/internal/config"
	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/entity"
	"github.com/TickStack/marketplace-engine/internal/payment"
	"github.com/TickStack/marketplace-engine/internal/registry"
	"github.com/TickStack/marketplace-engine/internal/repository"
	"github.com/TickStack/marketplace-engine/internal/volume"
	"go.uber.org/zap"
)

const (
	maxFeeBasisPoints uint64 = 1000

	antiSnipeWindow    = 10 * time.Minute
	antiSnipeExtension = 10 * time.Minute
)

// Engine is the marketplace settlement engine. It owns the listing and auction
// records outright; asset custody stays with the registry and funds attached to
// bids are held as escrow until refunded or disbursed.
type Engine struct {
	registry registry.AssetRegistry
	verifier registry.Verifier
	payments payment.Gateway
	volume   volume.Service
	elastic  elastic_search.Index

	owner              string
	operator           string
	maxAuctionDuration time.Duration
	requireVerified    bool

	// mu guards the maps, the record fields they point at, the fee and the
	// escrow balance. Mutating operations serialize per listing through locks
	// and take mu for every record write so readers always see a consistent
	// snapshot.
	mu       sync.RWMutex
	feeBps   uint64
	escrow   uint64
	listings map[string]*entity.Listing
	auctions map[string]*entity.Auction

	locks *keyedMutex
	guard *reentryGuard

	now func() time.Time
}

func NewEngine(
	cfg config.MarketConfig,
	assetRegistry registry.AssetRegistry,
	verifier registry.Verifier,
	payments payment.Gateway,
	volumeService volume.Service,
	elastic elastic_search.Index,
) *Engine {
	return &Engine{
		registry:           assetRegistry,
		verifier:           verifier,
		payments:           payments,
		volume:             volumeService,
		elastic:            elastic,
		owner:              cfg.Owner,
		operator:           cfg.Operator,
		feeBps:             cfg.FeeBasisPoints,
		maxAuctionDuration: cfg.MaxAuctionDuration,
		requireVerified:    cfg.RequireVerified,
		listings:           make(map[string]*entity.Listing),
		auctions:           make(map[string]*entity.Auction),
		locks:              newKeyedMutex(),
		guard:              newReentryGuard(),
		now:                time.Now,
	}
}

// Restore loads the active listings and auctions back into the engine after a
// restart. The escrow balance comes from its persisted record: funds stranded
// by a failed disbursement belong to listings that are no longer active, so
// summing the bids of live auctions would lose them. The bid sum is only the
// bootstrap fallback for an index that has never held an escrow record.
func (e *Engine) Restore(listingRepo repository.ListingRepository, auctionRepo repository.AuctionRepository, escrowRepo repository.EscrowRepository) error {
	listings, err := listingRepo.GetActiveListings()
	if err != nil {
		return err
	}

	auctions, err := auctionRepo.GetActiveAuctions()
	if err != nil {
		return err
	}

	escrowDoc, escrowErr := escrowRepo.GetEscrow()
	if escrowErr != nil && !errors.Is(escrowErr, repository.ErrEscrowNotFound) {
		return escrowErr
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for idx := range listings {
		listing := listings[idx]
		e.listings[listing.Key] = &listing
	}

	for idx := range auctions {
		auction := auctions[idx]
		e.auctions[auction.Key] = &auction
	}

	if escrowErr == nil {
		e.escrow = escrowDoc.Balance
	} else {
		for _, auction := range e.auctions {
			for _, held := range auction.Bids {
				e.escrow += held
			}
		}
	}

	zap.L().With(
		zap.Int("listings", len(listings)),
		zap.Int("auctions", len(auctions)),
		zap.Uint64("escrow", e.escrow),
	).Info("Engine: Restored state")

	return nil
}

// GetListingID derives the opaque identifier for a (contract, tokenId) pair.
func (e *Engine) GetListingID(contract string, tokenId uint64) string {
	return entity.CreateListingKey(contract, tokenId)
}

func (e *Engine) GetListing(contract string, tokenId uint64) (entity.Listing, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listing, ok := e.listings[entity.CreateListingKey(contract, tokenId)]
	if !ok {
		return entity.Listing{}, ErrItemNotListed
	}

	return *listing, nil
}

func (e *Engine) GetAuctionInfo(contract string, tokenId uint64) (entity.Auction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	auction, ok := e.auctions[entity.CreateListingKey(contract, tokenId)]
	if !ok {
		return entity.Auction{}, ErrItemNotListed
	}

	copied := *auction
	copied.Bids = make(map[string]uint64, len(auction.Bids))
	for bidder, amount := range auction.Bids {
		copied.Bids[bidder] = amount
	}
	copied.Bidders = append([]string(nil), auction.Bidders...)

	return copied, nil
}

// ExpiredAuctions returns the auctions whose window has closed but which have
// not been settled yet.
func (e *Engine) ExpiredAuctions() []entity.Auction {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now().Unix()
	expired := make([]entity.Auction, 0)
	for _, auction := range e.auctions {
		if auction.Status == entity.AuctionActive && now >= auction.EndTime {
			expired = append(expired, *auction)
		}
	}

	return expired
}

func (e *Engine) FeeBasisPoints() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.feeBps
}

// Escrow reports the funds currently held by the engine on behalf of bidders
// and in-flight settlements.
func (e *Engine) Escrow() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.escrow
}

func (e *Engine) getListing(key string) (*entity.Listing, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listing, ok := e.listings[key]
	return listing, ok
}

func (e *Engine) getAuction(key string) (*entity.Auction, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	auction, ok := e.auctions[key]
	return auction, ok
}

func (e *Engine) putListing(listing *entity.Listing) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listings[listing.Key] = listing
}

func (e *Engine) putAuction(auction *entity.Auction) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.auctions[auction.Key] = auction
}

func (e *Engine) addEscrow(amount uint64) {
	e.mu.Lock()
	e.escrow += amount
	balance := e.escrow
	e.mu.Unlock()

	e.persistEscrow(balance)
}

func (e *Engine) releaseEscrow(amount uint64) {
	e.mu.Lock()
	if amount > e.escrow {
		zap.L().With(zap.Uint64("amount", amount), zap.Uint64("escrow", e.escrow)).
			Error("Engine: Escrow release exceeds balance")
		e.escrow = 0
	} else {
		e.escrow -= amount
	}
	balance := e.escrow
	e.mu.Unlock()

	e.persistEscrow(balance)
}

// validateSellerAuthority confirms the caller owns the asset on record and has
// granted the engine operator blanket transfer approval. Run at listing time so
// stale listings cannot be created for assets the seller no longer controls.
func (e *Engine) validateSellerAuthority(caller, contract string, tokenId uint64) error {
	owner, err := e.registry.OwnerOf(contract, tokenId)
	if err != nil {
		return err
	}

	if owner != caller {
		return ErrNotAuthorized
	}

	approved, err := e.registry.IsApprovedForAll(contract, owner, e.operator)
	if err != nil {
		return err
	}

	if !approved {
		return ErrNotAuthorized
	}

	return nil
}

func (e *Engine) validateVerified(user string) error {
	if !e.requireVerified || e.verifier == nil {
		return nil
	}

	verified, err := e.verifier.IsVerified(user)
	if err != nil {
		return err
	}

	if !verified {
		return ErrNotVerified
	}

	return nil
}

// persistListing snapshots the record under the state lock so the queued
// request cannot race later writes to the same record.
func (e *Engine) persistListing(listing *entity.Listing, action elastic_search.RequestAction) {
	e.mu.Lock()
	listing.UpdatedAt = e.now().Unix()
	copied := *listing
	e.mu.Unlock()

	if action == elastic_search.ListingCreate {
		e.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), copied, action)
		return
	}

	e.elastic.AddUpdateRequest(elastic_search.ListingIndex.Get(), copied, action)
}

func (e *Engine) persistAuction(auction *entity.Auction, action elastic_search.RequestAction) {
	e.mu.Lock()
	copied := *auction
	copied.Bids = make(map[string]uint64, len(auction.Bids))
	for bidder, amount := range auction.Bids {
		copied.Bids[bidder] = amount
	}
	copied.Bidders = append([]string(nil), auction.Bidders...)
	e.mu.Unlock()

	if action == elastic_search.AuctionCreate {
		e.elastic.AddIndexRequest(elastic_search.AuctionIndex.Get(), copied, action)
		return
	}

	e.elastic.AddUpdateRequest(elastic_search.AuctionIndex.Get(), copied, action)
}

func (e *Engine) persistEscrow(balance uint64) {
	e.elastic.AddUpdateRequest(elastic_search.EscrowIndex.Get(), entity.Escrow{
		Balance:   balance,
		UpdatedAt: e.now().Unix(),
	}, elastic_search.EscrowUpdate)
}

func (e *Engine) appendAction(action entity.MarketAction) {
	e.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketAction)
}
