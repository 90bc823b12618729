package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"
	AuctionCancelled AuctionStatus = "cancelled"
)

type Auction struct {
	Key           string            `json:"key"`
	Contract      string            `json:"contract"`
	TokenId       uint64            `json:"tokenId"`
	StartTime     int64             `json:"startTime"`
	EndTime       int64             `json:"endTime"`
	ReservePrice  uint64            `json:"reservePrice"`
	MinIncrement  uint64            `json:"minIncrement"`
	HighestBidder string            `json:"highestBidder"`
	HighestBid    uint64            `json:"highestBid"`
	Status        AuctionStatus     `json:"status"`
	Bids          map[string]uint64 `json:"bids"`
	Bidders       []string          `json:"bidders"`
}

func (a Auction) Slug() string {
	return CreateAuctionSlug(a.Contract, a.TokenId)
}

func CreateAuctionSlug(contract string, tokenId uint64) string {
	return slug.Make(fmt.Sprintf("auction-%s-%d", contract, tokenId))
}

// HasBid reports whether bidder already appears in the ordered bidder list.
func (a Auction) HasBid(bidder string) bool {
	for _, b := range a.Bidders {
		if b == bidder {
			return true
		}
	}
	return false
}
