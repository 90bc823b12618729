package marketplace

import (
	"errors"
	"testing"
	"time"

	"github.com/TickStack/marketplace-engine/internal/entity"
)

func TestListFixedPrice_rejectsNonOwner(t *testing.T) {
	t.Parallel()

	h := newTestHarness()

	if err := h.engine.ListFixedPrice(testBuyer, testContract, 1, 100); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestListFixedPrice_rejectsWithoutApproval(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.registry.approvals[testSeller+":"+testOperator] = false

	if err := h.engine.ListFixedPrice(testSeller, testContract, 1, 100); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestListFixedPrice_createsActiveListing(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	listing, err := h.engine.GetListing(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !listing.Active {
		t.Error("expected listing to be active")
	}
	if listing.SaleType != entity.FixedPriceSale {
		t.Errorf("expected fixed price sale, got %s", listing.SaleType)
	}
	if listing.Price != 100 {
		t.Errorf("expected price 100, got %d", listing.Price)
	}
	if listing.Key != entity.CreateListingKey(testContract, 1) {
		t.Error("listing key mismatch")
	}
}

func TestListFixedPrice_relistingOverwrites(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)
	h.listFixedPrice(t, 200)

	listing, err := h.engine.GetListing(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listing.Price != 200 {
		t.Errorf("expected overwritten price 200, got %d", listing.Price)
	}
}

func TestListFixedPrice_rejectsOverwriteOfActiveAuction(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.engine.ListFixedPrice(testSeller, testContract, 1, 100); !errors.Is(err, ErrAuctionActive) {
		t.Fatalf("expected ErrAuctionActive, got %v", err)
	}

	// The bidder's escrow is untouched and cancellation still refunds it.
	if h.engine.Escrow() != 10 {
		t.Errorf("expected escrow 10, got %d", h.engine.Escrow())
	}

	if err := h.engine.CancelListing(testSeller, testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.gateway.paidTo(testBidderA); got != 10 {
		t.Errorf("expected bidder refunded 10, got %d", got)
	}

	// Once the auction is cancelled the asset can be listed at a fixed price.
	if err := h.engine.ListFixedPrice(testSeller, testContract, 1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateAuction_rejectsOverwriteOfActiveAuction(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := h.engine.CreateAuction(testSeller, testContract, 1, 20, 60, time.Hour, 5)
	if !errors.Is(err, ErrAuctionActive) {
		t.Fatalf("expected ErrAuctionActive, got %v", err)
	}

	auction, err := h.engine.GetAuctionInfo(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auction.ReservePrice != 50 {
		t.Errorf("expected original reserve 50, got %d", auction.ReservePrice)
	}
	if auction.HighestBidder != testBidderA || auction.HighestBid != 10 {
		t.Errorf("expected bid retained, got (%s, %d)", auction.HighestBidder, auction.HighestBid)
	}
}

func TestCreateAuction_rejectsExcessiveDuration(t *testing.T) {
	t.Parallel()

	h := newTestHarness()

	err := h.engine.CreateAuction(testSeller, testContract, 1, 10, 50, 31*24*time.Hour, 5)
	if !errors.Is(err, ErrInvalidTime) {
		t.Errorf("expected ErrInvalidTime, got %v", err)
	}
}

func TestCreateAuction_createsListingAndAuction(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	listing, err := h.engine.GetListing(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.SaleType != entity.AuctionSale {
		t.Errorf("expected auction sale, got %s", listing.SaleType)
	}

	auction, err := h.engine.GetAuctionInfo(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auction.Status != entity.AuctionActive {
		t.Errorf("expected active auction, got %s", auction.Status)
	}
	if auction.EndTime != auction.StartTime+3600 {
		t.Errorf("expected end %d, got %d", auction.StartTime+3600, auction.EndTime)
	}
	if auction.ReservePrice != 50 || auction.MinIncrement != 5 {
		t.Errorf("unexpected auction terms: %+v", auction)
	}
}

func TestCancelListing_rejectsNonSeller(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	if err := h.engine.CancelListing(testBuyer, testContract, 1); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestCancelListing_secondCancelFails(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.listFixedPrice(t, 100)

	if err := h.engine.CancelListing(testSeller, testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.engine.CancelListing(testSeller, testContract, 1); !errors.Is(err, ErrItemNotListed) {
		t.Errorf("expected ErrItemNotListed on second cancel, got %v", err)
	}
}

func TestCancelListing_auctionRefundsAllBidders(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.engine.PlaceBid(testBidderB, testContract, 1, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.engine.CancelListing(testSeller, testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bidder A was refunded 10 on outbid and 30 on cancellation, bidder B 20.
	if got := h.gateway.paidTo(testBidderA); got != 40 {
		t.Errorf("expected bidder A paid 40 in total, got %d", got)
	}
	if got := h.gateway.paidTo(testBidderB); got != 20 {
		t.Errorf("expected bidder B paid 20 in total, got %d", got)
	}

	if h.engine.Escrow() != 0 {
		t.Errorf("expected empty escrow, got %d", h.engine.Escrow())
	}

	auction, err := h.engine.GetAuctionInfo(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auction.Status != entity.AuctionCancelled {
		t.Errorf("expected cancelled auction, got %s", auction.Status)
	}

	listing, err := h.engine.GetListing(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.Active {
		t.Error("expected listing to be inactive")
	}
}

func TestCancelListing_refundFailureAbortsAndIsRetryable(t *testing.T) {
	t.Parallel()

	h := newTestHarness()
	h.createAuction(t, 10, 50, time.Hour, 5)

	if err := h.engine.PlaceBid(testBidderA, testContract, 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.engine.PlaceBid(testBidderB, testContract, 1, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.gateway.failFor[testBidderB] = errors.New("recipient rejects funds")

	if err := h.engine.CancelListing(testSeller, testContract, 1); !errors.Is(err, ErrRefundFailed) {
		t.Fatalf("expected ErrRefundFailed, got %v", err)
	}

	listing, err := h.engine.GetListing(testContract, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !listing.Active {
		t.Error("expected listing to stay active after failed cancellation")
	}

	// Retry once the recipient accepts funds again; bidder B must be refunded
	// exactly once overall.
	delete(h.gateway.failFor, testBidderB)

	if err := h.engine.CancelListing(testSeller, testContract, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := h.gateway.paidTo(testBidderB); got != 20 {
		t.Errorf("expected bidder B paid 20 exactly once, got %d", got)
	}
}
