package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/TickStack/marketplace-engine/internal/marketplace"
	"github.com/TickStack/marketplace-engine/internal/repository"
	"github.com/TickStack/marketplace-engine/internal/volume"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	engine     *marketplace.Engine
	volume     volume.Service
	volumeRepo repository.VolumeRepository
}

func NewServer(engine *marketplace.Engine, volumeService volume.Service, volumeRepo repository.VolumeRepository) Server {
	return Server{engine, volumeService, volumeRepo}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/listing/{contract}/{tokenId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listing/{contract}/{tokenId}/id", s.handleGetListingId).Methods("GET")
	r.HandleFunc("/listing/{contract}/{tokenId}", s.handleCreateListing).Methods("POST")
	r.HandleFunc("/listing/{contract}/{tokenId}/cancel", s.handleCancelListing).Methods("POST")
	r.HandleFunc("/listing/{contract}/{tokenId}/buy", s.handleBuyItem).Methods("POST")

	r.HandleFunc("/auction/{contract}/{tokenId}", s.handleGetAuction).Methods("GET")
	r.HandleFunc("/auction/{contract}/{tokenId}", s.handleCreateAuction).Methods("POST")
	r.HandleFunc("/auction/{contract}/{tokenId}/bid", s.handlePlaceBid).Methods("POST")
	r.HandleFunc("/auction/{contract}/{tokenId}/settle", s.handleSettleAuction).Methods("POST")

	r.HandleFunc("/volume/{contract}", s.handleGetTodaysVolume).Methods("GET")
	r.HandleFunc("/volume/{contract}/{day}", s.handleGetVolume).Methods("GET")

	r.NotFoundHandler = notFoundHandler()

	return r
}

type mutateRequest struct {
	Caller     string `json:"caller"`
	Price      uint64 `json:"price"`
	Payment    uint64 `json:"payment"`
	StartPrice uint64 `json:"startPrice"`
	Reserve    uint64 `json:"reserve"`
	Duration   int64  `json:"duration"`
	Increment  uint64 `json:"increment"`
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "Ticket Marketplace")
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := assetParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	listing, err := s.engine.GetListing(contract, tokenId)
	if err != nil {
		http.Error(w, "Listing not available", http.StatusNotFound)
		return
	}

	writeJson(w, listing)
}

func (s Server) handleGetListingId(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := assetParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	writeJson(w, map[string]string{"id": s.engine.GetListingID(contract, tokenId)})
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, body, err := mutateParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	writeResult(w, s.engine.ListFixedPrice(body.Caller, contract, tokenId, body.Price))
}

func (s Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, body, err := mutateParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	duration := time.Duration(body.Duration) * time.Second
	writeResult(w, s.engine.CreateAuction(body.Caller, contract, tokenId, body.StartPrice, body.Reserve, duration, body.Increment))
}

func (s Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, body, err := mutateParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	writeResult(w, s.engine.CancelListing(body.Caller, contract, tokenId))
}

func (s Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, body, err := mutateParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	writeResult(w, s.engine.BuyItem(body.Caller, contract, tokenId, body.Payment))
}

func (s Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, body, err := mutateParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	writeResult(w, s.engine.PlaceBid(body.Caller, contract, tokenId, body.Payment))
}

func (s Server) handleSettleAuction(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := assetParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	writeResult(w, s.engine.SettleAuction(contract, tokenId))
}

func (s Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := assetParams(r)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	auction, err := s.engine.GetAuctionInfo(contract, tokenId)
	if err != nil {
		http.Error(w, "Auction not available", http.StatusNotFound)
		return
	}

	writeJson(w, auction)
}

func (s Server) handleGetTodaysVolume(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]

	vol, err := s.volume.GetTodaysVolume(contract, time.Now().Unix())
	if err != nil {
		if errors.Is(err, repository.ErrVolumeNotFound) {
			writeJson(w, map[string]uint64{"amount": 0, "trades": 0})
			return
		}
		http.Error(w, "Volume not available", http.StatusInternalServerError)
		return
	}

	writeJson(w, vol)
}

func (s Server) handleGetVolume(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]
	day, err := strconv.ParseInt(mux.Vars(r)["day"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	vol, err := s.volume.GetVolume(contract, day)
	if err != nil {
		http.Error(w, "Volume not available", http.StatusNotFound)
		return
	}

	writeJson(w, vol)
}

func assetParams(r *http.Request) (string, uint64, error) {
	contract, ok := mux.Vars(r)["contract"]
	if !ok {
		return "", 0, errors.New("invalid parameters")
	}

	tokenId, err := strconv.ParseUint(mux.Vars(r)["tokenId"], 10, 64)

	return contract, tokenId, err
}

func mutateParams(r *http.Request) (string, uint64, mutateRequest, error) {
	contract, tokenId, err := assetParams(r)
	if err != nil {
		return "", 0, mutateRequest{}, err
	}

	var body mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", 0, mutateRequest{}, err
	}
	if body.Caller == "" {
		return "", 0, mutateRequest{}, errors.New("missing caller")
	}

	return contract, tokenId, body, nil
}

func writeResult(w http.ResponseWriter, err error) {
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Api: Operation rejected")
		writeError(w, err)
		return
	}

	writeJson(w, map[string]bool{"ok": true})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity

	switch {
	case errors.Is(err, marketplace.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, marketplace.ErrItemNotListed):
		status = http.StatusNotFound
	case errors.Is(err, marketplace.ErrReentrantCall):
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJson(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
}
