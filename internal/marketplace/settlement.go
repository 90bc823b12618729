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

// BuyItem settles a fixed price listing immediately. The listing is flipped
// inactive before any external call is made.
func (e *Engine) BuyItem(caller, contract string, tokenId uint64, payment uint64) error {
	key := entity.CreateListingKey(contract, tokenId)

	if e.guard.Held(key) {
		return ErrReentrantCall
	}

	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	listing, ok := e.getListing(key)
	if !ok || !listing.Active || listing.SaleType != entity.FixedPriceSale {
		return ErrItemNotListed
	}

	if payment < listing.Price {
		return ErrInsufficientFunds
	}

	if caller == listing.Seller {
		return ErrCannotBuyOwnItem
	}

	if err := e.validateVerified(caller); err != nil {
		return err
	}

	e.mu.Lock()
	listing.Active = false
	e.mu.Unlock()

	e.persistListing(listing, elastic_search.ListingUpdate)
	e.addEscrow(payment)

	return e.settle(key, listing, caller, payment, entity.SaleAction)
}

// SettleAuction concludes an ended auction. Callable by anyone; the winner is
// taken from the auction ledger. When no bid met the reserve the sole highest
// bidder is refunded and the asset stays with the seller.
func (e *Engine) SettleAuction(contract string, tokenId uint64) error {
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

	if auction.Status != entity.AuctionActive {
		return ErrAuctionEnded
	}

	now := e.now().Unix()
	if now < auction.EndTime {
		return ErrAuctionActive
	}

	// Terminal transitions commit before any external call.
	e.mu.Lock()
	listing.Active = false
	auction.Status = entity.AuctionEnded
	winner := auction.HighestBidder
	amount := auction.HighestBid
	e.mu.Unlock()

	e.persistListing(listing, elastic_search.ListingUpdate)
	e.persistAuction(auction, elastic_search.AuctionUpdate)

	if winner == "" || amount < auction.ReservePrice {
		if winner != "" {
			e.mu.Lock()
			auction.Bids[winner] = 0
			auction.HighestBidder = ""
			auction.HighestBid = 0
			e.mu.Unlock()
			e.persistAuction(auction, elastic_search.AuctionUpdate)

			if err := e.refund(key, winner, amount); err != nil {
				return fmt.Errorf("%w: %s", ErrRefundFailed, err)
			}
		}

		e.appendAction(factory.CreateSettlementAction(*listing, "", 0, 0, 0, now))

		zap.L().With(
			zap.String("contract", contract),
			zap.Uint64("tokenId", tokenId),
			zap.Uint64("highestBid", amount),
			zap.Uint64("reserve", auction.ReservePrice),
		).Info("Engine: Auction ended below reserve")

		event.EmitEvent(event.AuctionSettledEvent, event.AuctionSettled{
			Contract: contract,
			TokenId:  tokenId,
			Winner:   "",
			Price:    0,
		})

		return nil
	}

	e.mu.Lock()
	auction.Bids[winner] = 0
	e.mu.Unlock()
	e.persistAuction(auction, elastic_search.AuctionUpdate)

	return e.settle(key, listing, winner, amount, entity.SettleAction)
}

// settle computes the three way split, transfers the asset and disburses the
// funds. The asset transfer is attempted before any disbursement so a failed
// transfer aborts the settlement with no money moved. A failed disbursement
// surfaces an attributable error and is never retried internally; the funds
// stay in escrow for the owner to recover.
func (e *Engine) settle(key string, listing *entity.Listing, winner string, amount uint64, actionType entity.ActionType) error {
	terms, err := e.registry.RoyaltyInfo(listing.Contract, listing.TokenId, amount)
	if err != nil {
		return err
	}

	platformFee := amount * e.FeeBasisPoints() / 10000
	if platformFee+terms.Amount > amount {
		return ErrFeeExceedsPrice
	}
	sellerAmount := amount - platformFee - terms.Amount

	e.guard.Enter(key)
	defer e.guard.Exit(key)

	if err := e.registry.TransferFrom(listing.Contract, listing.Seller, winner, listing.TokenId); err != nil {
		e.recordSettlementError("transfer", key, winner, amount, err)
		return fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}

	if err := e.payments.Transfer(listing.Seller, sellerAmount); err != nil {
		e.recordSettlementError("seller-payment", key, winner, amount, err)
		return fmt.Errorf("%w: %s", ErrSellerPaymentFailed, err)
	}
	e.releaseEscrow(sellerAmount)

	if err := e.payments.Transfer(e.owner, platformFee); err != nil {
		e.recordSettlementError("platform-payment", key, winner, amount, err)
		return fmt.Errorf("%w: %s", ErrPlatformPaymentFailed, err)
	}
	e.releaseEscrow(platformFee)

	if terms.Amount > 0 && terms.Recipient != "" {
		if err := e.payments.Transfer(terms.Recipient, terms.Amount); err != nil {
			e.recordSettlementError("royalty-payment", key, winner, amount, err)
			return fmt.Errorf("%w: %s", ErrRoyaltyPaymentFailed, err)
		}
		e.releaseEscrow(terms.Amount)
	}

	now := e.now().Unix()
	e.volume.Record(listing.Contract, amount, now)

	if actionType == entity.SaleAction {
		e.appendAction(factory.CreateSaleAction(*listing, winner, amount, platformFee, terms.Amount, now))
	} else {
		e.appendAction(factory.CreateSettlementAction(*listing, winner, amount, platformFee, terms.Amount, now))
	}

	zap.L().With(
		zap.String("contract", listing.Contract),
		zap.Uint64("tokenId", listing.TokenId),
		zap.String("seller", listing.Seller),
		zap.String("winner", winner),
		zap.Uint64("price", amount),
		zap.Uint64("fee", platformFee),
		zap.Uint64("royalty", terms.Amount),
	).Info("Engine: Settled")

	event.EmitEvent(event.AuctionSettledEvent, event.AuctionSettled{
		Contract: listing.Contract,
		TokenId:  listing.TokenId,
		Winner:   winner,
		Price:    amount,
	})

	return nil
}

func (e *Engine) recordSettlementError(name, key, winner string, amount uint64, err error) {
	zap.L().With(
		zap.Error(err),
		zap.String("key", key),
		zap.String("winner", winner),
		zap.Uint64("amount", amount),
	).Error("Engine: Settlement failure: " + name)

	e.elastic.AddIndexRequest(elastic_search.ErrorIndex.Get(), dev.NewError("engine", name, err, map[string]interface{}{
		"key":    key,
		"winner": winner,
		"amount": amount,
	}), elastic_search.DevError)
}
