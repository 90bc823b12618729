package marketplace

import (
	"errors"
	"testing"
	"time"

	"github.com/TickStack/marketplace-engine/internal/entity"
)

func TestBuyItem_splitsPriceThreeWays(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.registry.royaltyRecipient = testRoyalty
	h.registry.royaltyAmount = 5
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 250 bps of 100 is 2, royalty is 5, the seller gets the rest.
	if got := h.gateway.paidTo(testSeller); got != 93 {
		t.Errorf("expected seller paid 93, got %d", got)
	}
	if got := h.gateway.paidTo(testOwner); got != 2 {
		t.Errorf("expected platform paid 2, got %d", got)
	}
	if got := h.gateway.paidTo(testRoyalty); got != 5 {
		t.Errorf("expected royalty recipient paid 5, got %d", got)
	}

	if owner, _ := h.registry.OwnerOf(testContract, 1); owner != testBuyer {
		t.Errorf("expected asset transferred to buyer, got owner %s", owner)
	}
	if h.engine.Escrow() != 0 {
		t.Errorf("expected escrow drained, got %d", h.engine.Escrow())
	}

	if len(h.volume.records) != 1 || h.volume.records[0].amount != 100 {
		t.Errorf("expected one volume record of 100, got %v", h.volume.records)
	}

	sales := h.index.actions(entity.SaleAction)
	if len(sales) != 1 {
		t.Fatalf("expected one sale action, got %d", len(sales))
	}
	if sales[0].Buyer != testBuyer || sales[0].Price != 100 || sales[0].Fee != 2 || sales[0].Royalty != 5 {
		t.Errorf("unexpected sale action %+v", sales[0])
	}
}

func TestBuyItem_skipsRoyaltyTransferWhenZero(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := h.gateway.paidTo(testSeller); got != 98 {
		t.Errorf("expected seller paid 98, got %d", got)
	}
	if len(h.gateway.payments) != 2 {
		t.Errorf("expected no royalty transfer, got %d payments", len(h.gateway.payments))
	}
}

func TestBuyItem_rejectsUnderpayment(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 99); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestBuyItem_rejectsSeller(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testSeller, testContract, 1, 100); !errors.Is(err, ErrCannotBuyOwnItem) {
		t.Errorf("expected ErrCannotBuyOwnItem, got %v", err)
	}
}

func TestBuyItem_secondPurchaseFails(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.engine.BuyItem(testBidderA, testContract, 1, 100); !errors.Is(err, ErrItemNotListed) {
		t.Errorf("expected ErrItemNotListed, got %v", err)
	}
}

func TestBuyItem_rejectsFeePlusRoyaltyAbovePrice(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.registry.royaltyRecipient = testRoyalty
	h.registry.royaltyAmount = 99
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); !errors.Is(err, ErrFeeExceedsPrice) {
		t.Fatalf("expected ErrFeeExceedsPrice, got %v", err)
	}

	if len(h.gateway.payments) != 0 {
		t.Errorf("expected no payments, got %v", h.gateway.payments)
	}
	if h.engine.Escrow() != 100 {
		t.Errorf("expected payment held in escrow, got %d", h.engine.Escrow())
	}
}

func TestBuyItem_transferFailureAbortsBeforePayments(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.registry.transferErr = errors.New("asset frozen")
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	if len(h.gateway.payments) != 0 {
		t.Errorf("expected no payments after failed transfer, got %v", h.gateway.payments)
	}
	if h.engine.Escrow() != 100 {
		t.Errorf("expected payment held in escrow, got %d", h.engine.Escrow())
	}
}

func TestBuyItem_sellerPaymentFailureKeepsFundsInEscrow(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.gateway.failFor[testSeller] = errors.New("recipient rejects funds")
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); !errors.Is(err, ErrSellerPaymentFailed) {
		t.Fatalf("expected ErrSellerPaymentFailed, got %v", err)
	}

	// The asset has moved but every coin stays recoverable.
	if owner, _ := h.registry.OwnerOf(testContract, 1); owner != testBuyer {
		t.Errorf("expected asset transferred, got owner %s", owner)
	}
	if h.engine.Escrow() != 100 {
		t.Errorf("expected full payment in escrow, got %d", h.engine.Escrow())
	}
}

func TestBuyItem_platformPaymentFailureKeepsRemainderInEscrow(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.gateway.failFor[testOwner] = errors.New("recipient rejects funds")
	h.listFixedPrice(t, 100)

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); !errors.Is(err, ErrPlatformPaymentFailed) {
		t.Fatalf("expected ErrPlatformPaymentFailed, got %v", err)
	}

	if got := h.gateway.paidTo(testSeller); got != 98 {
		t.Errorf("expected seller paid 98, got %d", got)
	}
	if h.engine.Escrow() != 2 {
		t.Errorf("expected unpaid fee in escrow, got %d", h.engine.Escrow())
	}
}

func TestBuyItem_rejectsReentrantPayee(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	var reentrantErr error
	h.gateway.hook = func(to string, amount uint64) {
		if to == testSeller {
			reentrantErr = h.engine.BuyItem(testBidderA, testContract, 1, 100)
		}
	}

	if err := h.engine.BuyItem(testBuyer, testContract, 1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !errors.Is(reentrantErr, ErrReentrantCall) {
		t.Errorf("expected ErrReentrantCall from nested purchase, got %v", reentrantErr)
	}
}

func TestSettleAuction_rejectsBeforeEnd(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.engine.SettleAuction(testContract, 1); !errors.Is(err, ErrAuctionActive) {
		t.Errorf("expected ErrAuctionActive, got %v", err)
	}
}

func TestSettleAuction_paysWinnerFromLedger(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.registry.royaltyRecipient = testRoyalty
	h.registry.royaltyAmount = 5
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.engine.PlaceBid(testBidderB, testContract, 1, 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.clock.Advance(time.Hour)

	// Anyone can trigger settlement once the auction has ended.
	if err := h.engine.SettleAuction(testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if owner, _ := h.registry.OwnerOf(testContract, 1); owner != testBidderB {
		t.Errorf("expected asset transferred to winner, got owner %s", owner)
	}

	// 250 bps of 60 is 1, royalty 5, seller takes 54.
	if got := h.gateway.paidTo(testSeller); got != 54 {
		t.Errorf("expected seller paid 54, got %d", got)
	}
	if got := h.gateway.paidTo(testOwner); got != 1 {
		t.Errorf("expected platform paid 1, got %d", got)
	}
	if got := h.gateway.paidTo(testRoyalty); got != 5 {
		t.Errorf("expected royalty recipient paid 5, got %d", got)
	}
	if got := h.gateway.paidTo(testBidderA); got != 10 {
		t.Errorf("expected displaced bidder refunded 10, got %d", got)
	}

	if h.engine.Escrow() != 0 {
		t.Errorf("expected escrow drained, got %d", h.engine.Escrow())
	}

	settlements := h.index.actions(entity.SettleAction)
	if len(settlements) != 1 {
		t.Fatalf("expected one settlement action, got %d", len(settlements))
	}
	if settlements[0].Buyer != testBidderB || settlements[0].Price != 60 {
		t.Errorf("unexpected settlement action %+v", settlements[0])
	}
}

func TestSettleAuction_reserveMissRefundsHighestBidder(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.engine.PlaceBid(testBidderB, testContract, 1, 16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.clock.Advance(time.Hour)

	if err := h.engine.SettleAuction(testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if owner, _ := h.registry.OwnerOf(testContract, 1); owner != testSeller {
		t.Errorf("expected asset to stay with seller, got owner %s", owner)
	}
	if got := h.gateway.paidTo(testBidderB); got != 16 {
		t.Errorf("expected highest bidder refunded 16, got %d", got)
	}
	if h.engine.Escrow() != 0 {
		t.Errorf("expected escrow drained, got %d", h.engine.Escrow())
	}

	settlements := h.index.actions(entity.SettleAction)
	if len(settlements) != 1 {
		t.Fatalf("expected one settlement action, got %d", len(settlements))
	}
	if settlements[0].Buyer != "" || settlements[0].Price != 0 {
		t.Errorf("expected null outcome recorded, got %+v", settlements[0])
	}
}

func TestSettleAuction_reserveMissWithNoBids(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	h.clock.Advance(time.Hour)

	if err := h.engine.SettleAuction(testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(h.gateway.payments) != 0 {
		t.Errorf("expected no payments, got %v", h.gateway.payments)
	}

	auction, err := h.engine.GetAuctionInfo(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auction.Status != entity.AuctionEnded {
		t.Errorf("expected auction ended, got %s", auction.Status)
	}
}

func TestSettleAuction_secondSettleFails(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.clock.Advance(time.Hour)

	if err := h.engine.SettleAuction(testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.engine.SettleAuction(testContract, 1); !errors.Is(err, ErrItemNotListed) && !errors.Is(err, ErrAuctionEnded) {
		t.Errorf("expected terminal error on second settle, got %v", err)
	}
}

func TestSettleAuction_recordsVolumeOnce(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.clock.Advance(time.Hour)

	if err := h.engine.SettleAuction(testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(h.volume.records) != 1 {
		t.Fatalf("expected one volume record, got %d", len(h.volume.records))
	}
	if h.volume.records[0].contract != testContract || h.volume.records[0].amount != 60 {
		t.Errorf("unexpected volume record %+v", h.volume.records[0])
	}
}
