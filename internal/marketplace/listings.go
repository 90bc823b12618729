package marketplace

import (
	"time"

	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/entity"
	"github.com/TickStack/marketplace-engine/internal/event"
	"github.com/TickStack/marketplace-engine/internal/factory"
	"go.uber.org/zap"
)

// ListFixedPrice creates a fixed price listing for an asset the caller owns.
// Re-listing an existing key overwrites the previous record.
func (e *Engine) ListFixedPrice(caller, contract string, tokenId uint64, price uint64) error {
	key := entity.CreateListingKey(contract, tokenId)

	if e.guard.Held(key) {
		return ErrReentrantCall
	}

	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	// An active auction holds bidder funds; overwriting it would strand every
	// outstanding escrow balance. The seller has to cancel first.
	if auction, ok := e.getAuction(key); ok && auction.Status == entity.AuctionActive {
		return ErrAuctionActive
	}

	if err := e.validateVerified(caller); err != nil {
		return err
	}

	if err := e.validateSellerAuthority(caller, contract, tokenId); err != nil {
		return err
	}

	now := e.now().Unix()
	listing := &entity.Listing{
		Key:       key,
		Seller:    caller,
		Contract:  contract,
		TokenId:   tokenId,
		Price:     price,
		SaleType:  entity.FixedPriceSale,
		Active:    true,
		CreatedAt: now,
	}

	e.putListing(listing)
	e.persistListing(listing, elastic_search.ListingCreate)
	e.appendAction(factory.CreateListingAction(*listing, now))

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", caller),
		zap.Uint64("price", price),
	).Info("Engine: Listed")

	event.EmitEvent(event.ListedEvent, event.Listed{
		Contract: contract,
		TokenId:  tokenId,
		Seller:   caller,
		Price:    price,
	})

	return nil
}

// CreateAuction creates an auction listing and its auction record atomically.
func (e *Engine) CreateAuction(caller, contract string, tokenId uint64, startPrice, reserve uint64, duration time.Duration, increment uint64) error {
	key := entity.CreateListingKey(contract, tokenId)

	if e.guard.Held(key) {
		return ErrReentrantCall
	}

	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	if duration <= 0 || duration > e.maxAuctionDuration {
		return ErrInvalidTime
	}

	if auction, ok := e.getAuction(key); ok && auction.Status == entity.AuctionActive {
		return ErrAuctionActive
	}

	if err := e.validateVerified(caller); err != nil {
		return err
	}

	if err := e.validateSellerAuthority(caller, contract, tokenId); err != nil {
		return err
	}

	now := e.now()
	listing := &entity.Listing{
		Key:       key,
		Seller:    caller,
		Contract:  contract,
		TokenId:   tokenId,
		Price:     startPrice,
		SaleType:  entity.AuctionSale,
		Active:    true,
		CreatedAt: now.Unix(),
	}
	auction := &entity.Auction{
		Key:          key,
		Contract:     contract,
		TokenId:      tokenId,
		StartTime:    now.Unix(),
		EndTime:      now.Add(duration).Unix(),
		ReservePrice: reserve,
		MinIncrement: increment,
		Status:       entity.AuctionActive,
		Bids:         make(map[string]uint64),
		Bidders:      make([]string, 0),
	}

	e.putListing(listing)
	e.putAuction(auction)
	e.persistListing(listing, elastic_search.ListingCreate)
	e.persistAuction(auction, elastic_search.AuctionCreate)
	e.appendAction(factory.CreateAuctionAction(*listing, *auction, now.Unix()))

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", caller),
		zap.Uint64("startPrice", startPrice),
		zap.Uint64("reserve", reserve),
		zap.Int64("endTime", auction.EndTime),
	).Info("Engine: Auction created")

	event.EmitEvent(event.AuctionCreatedEvent, event.AuctionCreated{
		Contract:   contract,
		TokenId:    tokenId,
		Seller:     caller,
		StartPrice: startPrice,
		Reserve:    reserve,
		EndTime:    auction.EndTime,
	})

	return nil
}

// CancelListing deactivates a listing. An auction listing refunds every
// outstanding bidder before its auction is marked cancelled.
func (e *Engine) CancelListing(caller, contract string, tokenId uint64) error {
	key := entity.CreateListingKey(contract, tokenId)

	if e.guard.Held(key) {
		return ErrReentrantCall
	}

	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	listing, ok := e.getListing(key)
	if !ok || !listing.Active {
		return ErrItemNotListed
	}

	if listing.Seller != caller {
		return ErrNotAuthorized
	}

	if listing.SaleType == entity.AuctionSale {
		auction, ok := e.getAuction(key)
		if !ok {
			return ErrItemNotListed
		}

		if err := e.refundAllBidders(key, auction); err != nil {
			return err
		}

		e.mu.Lock()
		auction.HighestBidder = ""
		auction.HighestBid = 0
		auction.Status = entity.AuctionCancelled
		e.mu.Unlock()
		e.persistAuction(auction, elastic_search.AuctionUpdate)
	}

	now := e.now().Unix()
	e.mu.Lock()
	listing.Active = false
	e.mu.Unlock()
	e.persistListing(listing, elastic_search.ListingUpdate)
	e.appendAction(factory.CreateCancelAction(*listing, now))

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", caller),
	).Info("Engine: Listing cancelled")

	event.EmitEvent(event.ListingCancelledEvent, event.ListingCancelled{
		Contract: contract,
		TokenId:  tokenId,
		Seller:   caller,
	})

	return nil
}
