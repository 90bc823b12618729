package event

type Type string

const (
	ListedEvent           Type = "ListedEvent"
	AuctionCreatedEvent   Type = "AuctionCreatedEvent"
	BidPlacedEvent        Type = "BidPlacedEvent"
	AuctionSettledEvent   Type = "AuctionSettledEvent"
	ListingCancelledEvent Type = "ListingCancelledEvent"
)

type Listed struct {
	Contract string
	TokenId  uint64
	Seller   string
	Price    uint64
}

type AuctionCreated struct {
	Contract   string
	TokenId    uint64
	Seller     string
	StartPrice uint64
	Reserve    uint64
	EndTime    int64
}

type BidPlaced struct {
	Contract string
	TokenId  uint64
	Bidder   string
	Amount   uint64
	EndTime  int64
}

// AuctionSettled doubles as the sale notification for fixed price listings. A
// reserve miss reports an empty winner and a zero price.
type AuctionSettled struct {
	Contract string
	TokenId  uint64
	Winner   string
	Price    uint64
}

type ListingCancelled struct {
	Contract string
	TokenId  uint64
	Seller   string
}
