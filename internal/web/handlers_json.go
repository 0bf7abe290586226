package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vitos/crypto_mining_pool/internal/domain"
	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedCoin):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type coinView struct {
	domain.Coin
	PremiumHashrate float64 `json:"premium_hashrate"`
	BlocksPerDay    int     `json:"blocks_per_day"`
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	views := make([]coinView, 0, len(domain.SupportedSymbols))
	for _, sym := range domain.SupportedSymbols {
		c, _ := domain.LookupCoin(sym)
		views = append(views, coinView{
			Coin:            c,
			PremiumHashrate: domain.SimulatedHashrate(sym, true),
			BlocksPerDay:    domain.BlocksPerDay(sym),
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	symbols := domain.SupportedSymbols
	if q := r.URL.Query().Get("symbols"); q != "" {
		symbols = strings.Split(q, ",")
	}

	prices := s.cache.GetPrices(r.Context(), symbols)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"prices": prices})
}

func (s *Server) handleNetworkStats(w http.ResponseWriter, r *http.Request) {
	coin := domain.NormalizeSymbol(r.PathValue("coin"))
	stats, ok := s.cache.GetNetworkStats(r.Context(), coin)
	if !ok {
		s.writeError(w, http.StatusNotFound, "network stats unavailable for "+coin)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req domain.EstimateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.estimator.Estimate(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type calculatorRequest struct {
	Coin     string  `json:"cryptocurrency"`
	Hashrate float64 `json:"hashrate"`
	Period   string  `json:"time_period"`
}

func (s *Server) handleEarningsCalculator(w http.ResponseWriter, r *http.Request) {
	req := calculatorRequest{Coin: "BTC", Period: "day"}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmp, err := s.estimator.CompareTiers(r.Context(), req.Coin, req.Hashrate, req.Period)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cmp)
}

type profitabilityRequest struct {
	Coin            string  `json:"cryptocurrency"`
	Hashrate        float64 `json:"hashrate"`
	PowerWatts      float64 `json:"power_consumption"`
	ElectricityCost float64 `json:"electricity_cost"`
}

func (s *Server) handleProfitability(w http.ResponseWriter, r *http.Request) {
	req := profitabilityRequest{Coin: "BTC", ElectricityCost: 0.1}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.estimator.Profitability(r.Context(), req.Coin, req.Hashrate, req.PowerWatts, req.ElectricityCost)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetPoolStats(w http.ResponseWriter, r *http.Request) {
	coin := domain.NormalizeSymbol(r.PathValue("coin"))
	stats, ok := s.pool.Get(coin)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no pool stats for "+coin)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

type poolUpdateRequest struct {
	ActiveMiners int     `json:"active_miners"`
	PoolHashrate float64 `json:"pool_hashrate"`
}

func (s *Server) handleUpdatePoolStats(w http.ResponseWriter, r *http.Request) {
	coin := domain.NormalizeSymbol(r.PathValue("coin"))
	if !domain.IsSupported(coin) {
		s.writeError(w, http.StatusBadRequest, "unsupported cryptocurrency")
		return
	}

	var req poolUpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stats, err := s.pool.Update(r.Context(), coin, req.ActiveMiners, req.PoolHashrate)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	s.hub.Serve(w, r, s.cache.CachedPrices())
}
