package entity

import (
	"crypto/md5"
	"fmt"
)

type MarketAction struct {
	Key       string     `json:"key"`
	Contract  string     `json:"contract"`
	TokenId   uint64     `json:"tokenId"`
	Action    ActionType `json:"action"`
	Seller    string     `json:"seller"`
	Buyer     string     `json:"buyer"`
	Price     uint64     `json:"price"`
	Fee       uint64     `json:"fee"`
	Royalty   uint64     `json:"royalty"`
	Timestamp int64      `json:"timestamp"`
}

type ActionType string

const (
	ListingAction   ActionType = "listing"
	AuctionAction   ActionType = "auction"
	BidAction       ActionType = "bid"
	SaleAction      ActionType = "sale"
	SettleAction    ActionType = "settlement"
	CancelAction    ActionType = "cancellation"
)

func (m MarketAction) Slug() string {
	return CreateMarketActionSlug(m.Contract, m.TokenId, string(m.Action), m.Timestamp, m.Buyer)
}

func CreateMarketActionSlug(contract string, tokenId uint64, action string, timestamp int64, actor string) string {
	data := []byte(fmt.Sprintf("marketaction-%s-%d-%s-%d-%s", contract, tokenId, action, timestamp, actor))
	return fmt.Sprintf("%x", md5.Sum(data))
}
