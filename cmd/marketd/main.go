package main

import (
	"fmt"
	"net/http"

	"github.com/TickStack/marketplace-engine/internal/config"
	"github.com/TickStack/marketplace-engine/internal/config/di"
	"github.com/TickStack/marketplace-engine/internal/event"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var container *di.Container

func main() {
	config.Init("marketd")
	container, _ = di.NewContainer()

	go health()
	go serve()

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Marketplace Started")

	event.AddEventListener(event.ListedEvent, persist)
	event.AddEventListener(event.AuctionCreatedEvent, persist)
	event.AddEventListener(event.BidPlacedEvent, persist)
	event.AddEventListener(event.AuctionSettledEvent, persist)
	event.AddEventListener(event.ListingCancelledEvent, persist)

	container.GetDaemon().Execute()
}

func persist(msg interface{}) {
	container.GetElastic().BatchPersist()
}

func serve() {
	if err := http.ListenAndServe(":"+config.Get().ApiPort, container.GetApi().Router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start api server")
	}
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start health server")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
