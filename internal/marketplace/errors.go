package marketplace

import "errors"

var (
	ErrNotAuthorized     = errors.New("not authorized")
	ErrItemNotListed     = errors.New("item not listed")
	ErrInvalidTime       = errors.New("invalid time")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCannotBuyOwnItem  = errors.New("cannot buy own item")
	ErrAuctionEnded      = errors.New("auction ended")
	ErrAuctionActive     = errors.New("auction still active")
	ErrBidTooLow         = errors.New("bid too low")
	ErrInvalidPercentage = errors.New("invalid percentage")
	ErrNotVerified       = errors.New("user not verified")
	ErrReentrantCall     = errors.New("reentrant call")

	ErrFeeExceedsPrice       = errors.New("fee and royalty exceed sale price")
	ErrTransferFailed        = errors.New("asset transfer failed")
	ErrSellerPaymentFailed   = errors.New("seller payment failed")
	ErrPlatformPaymentFailed = errors.New("platform payment failed")
	ErrRoyaltyPaymentFailed  = errors.New("royalty payment failed")
	ErrRefundFailed          = errors.New("bid refund failed")
)
