package entity

// Escrow is the singleton record of the funds the engine currently holds on
// behalf of bidders and in-flight settlements. It survives restarts so funds
// stranded by a failed disbursement stay recoverable.
type Escrow struct {
	Balance   uint64 `json:"balance"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (e Escrow) Slug() string {
	return "escrow-balance"
}
