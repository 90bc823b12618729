package factory

import "github.com/TickStack/marketplace-engine/internal/entity"

func CreateListingAction(listing entity.Listing, timestamp int64) entity.MarketAction {
	return entity.MarketAction{
		Key:       listing.Key,
		Contract:  listing.Contract,
		TokenId:   listing.TokenId,
		Action:    entity.ListingAction,
		Seller:    listing.Seller,
		Price:     listing.Price,
		Timestamp: timestamp,
	}
}

func CreateAuctionAction(listing entity.Listing, auction entity.Auction, timestamp int64) entity.MarketAction {
	return entity.MarketAction{
		Key:       listing.Key,
		Contract:  listing.Contract,
		TokenId:   listing.TokenId,
		Action:    entity.AuctionAction,
		Seller:    listing.Seller,
		Price:     listing.Price,
		Timestamp: timestamp,
	}
}

func CreateBidAction(auction entity.Auction, bidder string, amount uint64, timestamp int64) entity.MarketAction {
	return entity.MarketAction{
		Key:       auction.Key,
		Contract:  auction.Contract,
		TokenId:   auction.TokenId,
		Action:    entity.BidAction,
		Buyer:     bidder,
		Price:     amount,
		Timestamp: timestamp,
	}
}

func CreateSaleAction(listing entity.Listing, winner string, price, fee, royalty uint64, timestamp int64) entity.MarketAction {
	return entity.MarketAction{
		Key:       listing.Key,
		Contract:  listing.Contract,
		TokenId:   listing.TokenId,
		Action:    entity.SaleAction,
		Seller:    listing.Seller,
		Buyer:     winner,
		Price:     price,
		Fee:       fee,
		Royalty:   royalty,
		Timestamp: timestamp,
	}
}

// CreateSettlementAction records the outcome of an ended auction, including the
// null outcome where the reserve was not met (empty winner, zero price).
func CreateSettlementAction(listing entity.Listing, winner string, price, fee, royalty uint64, timestamp int64) entity.MarketAction {
	return entity.MarketAction{
		Key:       listing.Key,
		Contract:  listing.Contract,
		TokenId:   listing.TokenId,
		Action:    entity.SettleAction,
		Seller:    listing.Seller,
		Buyer:     winner,
		Price:     price,
		Fee:       fee,
		Royalty:   royalty,
		Timestamp: timestamp,
	}
}

func CreateCancelAction(listing entity.Listing, timestamp int64) entity.MarketAction {
	return entity.MarketAction{
		Key:       listing.Key,
		Contract:  listing.Contract,
		TokenId:   listing.TokenId,
		Action:    entity.CancelAction,
		Seller:    listing.Seller,
		Timestamp: timestamp,
	}
}
