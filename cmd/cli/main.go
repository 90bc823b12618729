package main

import (
	"fmt"
	"os"
	"time"

	"github.com/TickStack/marketplace-engine/internal/config"
	"github.com/TickStack/marketplace-engine/internal/config/di"
	"github.com/TickStack/marketplace-engine/internal/dev"
	"github.com/TickStack/marketplace-engine/internal/marketplace"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	container *di.Container
	engine    *marketplace.Engine
)

func main() {
	config.Init("cli")

	container, _ = di.NewContainer()
	engine = container.GetEngine()

	if err := engine.Restore(container.GetListingRepo(), container.GetAuctionRepo(), container.GetEscrowRepo()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to restore engine state")
	}

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "update-fee",
				Usage:  "Update the platform fee (basis points)",
				Action: updateFee,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "bps", Usage: "fee in basis points, max 1000"},
				},
			},
			{
				Name:   "emergency-withdraw",
				Usage:  "Sweep stranded engine balances to the platform owner",
				Action: emergencyWithdraw,
			},
			{
				Name:   "settle",
				Usage:  "Settle an ended auction",
				Action: settle,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Usage: "asset contract"},
					&cli.Uint64Flag{Name: "tokenId", Usage: "asset token id"},
				},
			},
			{
				Name:   "listing",
				Usage:  "Show a listing",
				Action: showListing,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Usage: "asset contract"},
					&cli.Uint64Flag{Name: "tokenId", Usage: "asset token id"},
				},
			},
			{
				Name:   "auction",
				Usage:  "Show an auction",
				Action: showAuction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Usage: "asset contract"},
					&cli.Uint64Flag{Name: "tokenId", Usage: "asset token id"},
				},
			},
			{
				Name:   "volume",
				Usage:  "Show todays volume for a contract",
				Action: showVolume,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Usage: "asset contract"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("CLI failure")
	}

	container.GetElastic().Persist()
}

func updateFee(c *cli.Context) error {
	return engine.UpdatePlatformFee(config.Get().Market.Owner, c.Uint64("bps"))
}

func emergencyWithdraw(c *cli.Context) error {
	amount, err := engine.EmergencyWithdraw(config.Get().Market.Owner)
	if err != nil {
		return err
	}

	fmt.Printf("withdrew %d\n", amount)
	return nil
}

func settle(c *cli.Context) error {
	return engine.SettleAuction(c.String("contract"), c.Uint64("tokenId"))
}

func showListing(c *cli.Context) error {
	listing, err := engine.GetListing(c.String("contract"), c.Uint64("tokenId"))
	if err != nil {
		return err
	}

	dev.Dump(listing)
	return nil
}

func showAuction(c *cli.Context) error {
	auction, err := engine.GetAuctionInfo(c.String("contract"), c.Uint64("tokenId"))
	if err != nil {
		return err
	}

	dev.Dump(auction)
	return nil
}

func showVolume(c *cli.Context) error {
	vol, err := container.GetVolumeService().GetTodaysVolume(c.String("contract"), time.Now().Unix())
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d (%d trades)\n", vol.Contract, vol.Amount, vol.Trades)
	return nil
}
