package registry

// AssetRegistry is the external custodian of the assets being sold. The engine
// never takes custody; it validates ownership and approval against the registry
// and instructs it to move the asset at settlement.
type AssetRegistry interface {
	OwnerOf(contract string, tokenId uint64) (string, error)
	IsApprovedForAll(contract, owner, operator string) (bool, error)
	TransferFrom(contract, from, to string, tokenId uint64) error
	RoyaltyInfo(contract string, tokenId uint64, salePrice uint64) (RoyaltyTerms, error)
}

type RoyaltyTerms struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

// Verifier reports whether a user has passed identity verification.
type Verifier interface {
	IsVerified(user string) (bool, error)
}
