package entity

import (
	"crypto/sha256"
	"fmt"

	"github.com/gosimple/slug"
)

type SaleType string

const (
	FixedPriceSale SaleType = "fixed"
	AuctionSale    SaleType = "auction"
)

type Listing struct {
	Key       string   `json:"key"`
	Seller    string   `json:"seller"`
	Contract  string   `json:"contract"`
	TokenId   uint64   `json:"tokenId"`
	Price     uint64   `json:"price"`
	SaleType  SaleType `json:"saleType"`
	Active    bool     `json:"active"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Contract, l.TokenId)
}

func CreateListingSlug(contract string, tokenId uint64) string {
	return slug.Make(fmt.Sprintf("listing-%s-%d", contract, tokenId))
}

// CreateListingKey derives the opaque listing identifier for a (contract, tokenId)
// pair. The key is one-way and collision resistant.
func CreateListingKey(contract string, tokenId uint64) string {
	data := []byte(fmt.Sprintf("%s:%d", contract, tokenId))
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
