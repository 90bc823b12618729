package elastic_search

import (
	"fmt"

	"github.com/TickStack/marketplace-engine/internal/config"
)

type Indices string

var (
	ListingIndex      Indices = "listing"
	AuctionIndex      Indices = "auction"
	MarketActionIndex Indices = "marketaction"
	VolumeIndex       Indices = "volume"
	EscrowIndex       Indices = "escrow"
	ErrorIndex        Indices = "error"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
