package marketplace

import (
	"fmt"

	"github.com/TickStack/marketplace-engine/internal/dev"
	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/entity"
	"github.com/TickStack/marketplace-engine/internal/event"
	"github.com/TickStack/marketplace-engine/internal/factory"
	"go.uber.org/zap"
)

// PlaceBid records a new highest bid, refunding the displaced bidder in full
// before the new bid is stored. A bid close to the auction end pushes the end
// out by the anti snipe extension.
func (e *Engine) PlaceBid(caller, contract string, tokenId uint64, amount uint64) error {
	key := entity.CreateListingKey(contract, tokenId)

	if e.guard.Held(key) {
		return ErrReentrantCall
	}

	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	listing, ok := e.getListing(key)
	if !ok || !listing.Active || listing.SaleType != entity.AuctionSale {
		return ErrItemNotListed
	}

	auction, ok := e.getAuction(key)
	if !ok {
		return ErrItemNotListed
	}

	if caller == listing.Seller {
		return ErrCannotBuyOwnItem
	}

	now := e.now()
	if auction.Status != entity.AuctionActive || now.Unix() >= auction.EndTime {
		return ErrAuctionEnded
	}

	if err := e.validateVerified(caller); err != nil {
		return err
	}

	floor := listing.Price
	if auction.HighestBidder != "" {
		floor = auction.HighestBid + auction.MinIncrement
	}
	if amount < floor {
		return ErrBidTooLow
	}

	prevBidder := auction.HighestBidder
	prevAmount := auction.HighestBid

	// The displaced bidder's balance is zeroed before their refund is sent so a
	// re-entering payee can never be paid twice.
	if prevBidder != "" {
		e.mu.Lock()
		auction.Bids[prevBidder] = 0
		e.mu.Unlock()

		if err := e.refund(key, prevBidder, prevAmount); err != nil {
			e.mu.Lock()
			auction.Bids[prevBidder] = prevAmount
			e.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrRefundFailed, err)
		}
	}

	e.mu.Lock()
	if !auction.HasBid(caller) {
		auction.Bidders = append(auction.Bidders, caller)
	}
	auction.Bids[caller] = amount
	auction.HighestBidder = caller
	auction.HighestBid = amount

	extended := false
	if auction.EndTime-now.Unix() < int64(antiSnipeWindow.Seconds()) {
		auction.EndTime += int64(antiSnipeExtension.Seconds())
		extended = true
	}
	e.mu.Unlock()

	e.addEscrow(amount)

	if extended {
		zap.L().With(
			zap.String("contract", contract),
			zap.Uint64("tokenId", tokenId),
			zap.Int64("endTime", auction.EndTime),
		).Info("Engine: Anti snipe extension")
	}

	e.persistAuction(auction, elastic_search.AuctionUpdate)
	e.appendAction(factory.CreateBidAction(*auction, caller, amount, now.Unix()))

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("bidder", caller),
		zap.Uint64("amount", amount),
	).Info("Engine: Bid placed")

	event.EmitEvent(event.BidPlacedEvent, event.BidPlaced{
		Contract: contract,
		TokenId:  tokenId,
		Bidder:   caller,
		Amount:   amount,
		EndTime:  auction.EndTime,
	})

	return nil
}

// refund pays amount back to bidder out of escrow. The caller must already have
// zeroed the bidder's stored balance.
func (e *Engine) refund(key, bidder string, amount uint64) error {
	e.guard.Enter(key)
	defer e.guard.Exit(key)

	if err := e.payments.Transfer(bidder, amount); err != nil {
		e.elastic.AddIndexRequest(elastic_search.ErrorIndex.Get(), dev.NewError("engine", "refund", err, map[string]interface{}{
			"key":    key,
			"bidder": bidder,
			"amount": amount,
		}), elastic_search.DevError)

		return err
	}

	e.releaseEscrow(amount)

	zap.L().With(
		zap.String("key", key),
		zap.String("bidder", bidder),
		zap.Uint64("amount", amount),
	).Info("Engine: Bid refunded")

	return nil
}

// refundAllBidders pays back every outstanding balance, zeroing each before its
// payout. A failed payout aborts the cancellation; already refunded bidders
// keep their zero balance, so a retried cancellation refunds each at most once.
func (e *Engine) refundAllBidders(key string, auction *entity.Auction) error {
	for _, bidder := range auction.Bidders {
		amount := auction.Bids[bidder]
		if amount == 0 {
			continue
		}

		e.mu.Lock()
		auction.Bids[bidder] = 0
		e.mu.Unlock()

		if err := e.refund(key, bidder, amount); err != nil {
			e.mu.Lock()
			auction.Bids[bidder] = amount
			e.mu.Unlock()
			e.persistAuction(auction, elastic_search.AuctionUpdate)
			return fmt.Errorf("%w: %s", ErrRefundFailed, err)
		}
	}

	e.persistAuction(auction, elastic_search.AuctionUpdate)

	return nil
}
