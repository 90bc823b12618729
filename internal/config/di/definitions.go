package di

import (
	"time"

	"github.com/TickStack/marketplace-engine/internal/api"
	"github.com/TickStack/marketplace-engine/internal/config"
	"github.com/TickStack/marketplace-engine/internal/daemon"
	"github.com/TickStack/marketplace-engine/internal/elastic_search"
	"github.com/TickStack/marketplace-engine/internal/marketplace"
	"github.com/TickStack/marketplace-engine/internal/payment"
	"github.com/TickStack/marketplace-engine/internal/registry"
	"github.com/TickStack/marketplace-engine/internal/repository"
	"github.com/TickStack/marketplace-engine/internal/volume"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var Definitions = []di.Def{
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "cache",
		Build: func(ctn di.Container) (interface{}, error) {
			return cache.New(5*time.Minute, 10*time.Minute), nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			client, err := registry.NewClient(
				config.Get().Registry.Url,
				config.Get().Registry.Timeout,
				config.Get().Registry.Debug,
			)
			if err != nil {
				return nil, err
			}

			return registry.NewProvider(client), nil
		},
	},
	{
		Name: "verifier",
		Build: func(ctn di.Container) (interface{}, error) {
			client, err := registry.NewClient(
				config.Get().Registry.Url,
				config.Get().Registry.Timeout,
				config.Get().Registry.Debug,
			)
			if err != nil {
				return nil, err
			}

			return registry.NewVerifier(client), nil
		},
	},
	{
		Name: "payments",
		Build: func(ctn di.Container) (interface{}, error) {
			return payment.NewGateway(
				config.Get().Payments.Url,
				config.Get().Payments.Timeout,
				config.Get().Payments.Debug,
			)
		},
	},
	{
		Name: "listing.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewListingRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "auction.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewAuctionRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "escrow.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewEscrowRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "volume.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewVolumeRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "volume.service",
		Build: func(ctn di.Container) (interface{}, error) {
			return volume.NewService(
				ctn.Get("elastic").(elastic_search.Index),
				ctn.Get("volume.repo").(repository.VolumeRepository),
				ctn.Get("cache").(*cache.Cache),
			), nil
		},
	},
	{
		Name: "engine",
		Build: func(ctn di.Container) (interface{}, error) {
			return marketplace.NewEngine(
				config.Get().Market,
				ctn.Get("registry").(registry.AssetRegistry),
				ctn.Get("verifier").(registry.Verifier),
				ctn.Get("payments").(payment.Gateway),
				ctn.Get("volume.service").(volume.Service),
				ctn.Get("elastic").(elastic_search.Index),
			), nil
		},
	},
	{
		Name: "daemon",
		Build: func(ctn di.Container) (interface{}, error) {
			return daemon.NewDaemon(
				ctn.Get("elastic").(elastic_search.Index),
				ctn.Get("engine").(*marketplace.Engine),
				ctn.Get("listing.repo").(repository.ListingRepository),
				ctn.Get("auction.repo").(repository.AuctionRepository),
				ctn.Get("escrow.repo").(repository.EscrowRepository),
			), nil
		},
	},
	{
		Name: "api",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("engine").(*marketplace.Engine),
				ctn.Get("volume.service").(volume.Service),
				ctn.Get("volume.repo").(repository.VolumeRepository),
			), nil
		},
	},
}

type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetListingRepo() repository.ListingRepository {
	return c.ctn.Get("listing.repo").(repository.ListingRepository)
}

func (c *Container) GetAuctionRepo() repository.AuctionRepository {
	return c.ctn.Get("auction.repo").(repository.AuctionRepository)
}

func (c *Container) GetEscrowRepo() repository.EscrowRepository {
	return c.ctn.Get("escrow.repo").(repository.EscrowRepository)
}

func (c *Container) GetVolumeRepo() repository.VolumeRepository {
	return c.ctn.Get("volume.repo").(repository.VolumeRepository)
}

func (c *Container) GetVolumeService() volume.Service {
	return c.ctn.Get("volume.service").(volume.Service)
}

func (c *Container) GetEngine() *marketplace.Engine {
	return c.ctn.Get("engine").(*marketplace.Engine)
}

func (c *Container) GetDaemon() *daemon.Daemon {
	return c.ctn.Get("daemon").(*daemon.Daemon)
}

func (c *Container) GetApi() api.Server {
	return c.ctn.Get("api").(api.Server)
}
