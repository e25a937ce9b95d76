package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"portfolio/record"
	"portfolio/remote"
	"portfolio/synthetic"
)

type resource[T record.Record] struct {
	repo *Repository[T]
}

func mountResource[T record.Record](router chi.Router, pattern string, repo *Repository[T], withDelete bool) {
	h := &resource[T]{repo: repo}
	router.Route(pattern, func(r chi.Router) {
		r.Get("/", h.listHandler)
		r.Post("/", h.createHandler)
		r.Get("/{id}", h.getHandler)
		r.Put("/{id}", h.updateHandler)
		if withDelete {
			r.Delete("/{id}", h.deleteHandler)
		}
	})
}

func (h *resource[T]) listHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List()
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *resource[T]) getHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Get(id)
	if err != nil {
		h.repoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *resource[T]) createHandler(w http.ResponseWriter, r *http.Request) {
	var draft T
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		errMessage := fmt.Sprintf("error unmarshalling request body: %v", err)
		log.Debug().Str("kind", h.repo.Kind).Msg(errMessage)
		writeError(w, http.StatusBadRequest, errMessage)
		return
	}

	item, err := h.repo.Create(draft)
	if err != nil {
		h.internalError(w, err)
		return
	}
	log.Debug().Str("kind", h.repo.Kind).Int64("id", item.GetID()).Msg("record created")
	writeJSON(w, http.StatusCreated, item)
}

func (h *resource[T]) updateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch record.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("error unmarshalling request body: %v", err))
		return
	}

	item, err := h.repo.Update(id, patch)
	if err != nil {
		h.repoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *resource[T]) deleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(id); err != nil {
		h.repoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *resource[T]) repoError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.internalError(w, err)
}

func (h *resource[T]) internalError(w http.ResponseWriter, err error) {
	log.Err(err).Str("kind", h.repo.Kind).Msg("repository error")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (a *Api) getTrendsHandler(w http.ResponseWriter, r *http.Request) {
	trends, err := a.Trends.List()
	if err != nil {
		log.Err(err).Msg("failed to list market trends")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	location := r.URL.Query().Get("location")
	if location == "" {
		writeJSON(w, http.StatusOK, trends)
		return
	}

	filtered := []record.MarketTrend{}
	for _, t := range trends {
		if t.Location == location {
			filtered = append(filtered, t)
		}
	}
	writeJSON(w, http.StatusOK, filtered)
}

func (a *Api) getTrendHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	trend, err := a.Trends.Get(id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Err(err).Int64("id", id).Msg("failed to get market trend")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// scrapeHandler records a new monthly point for every tracked location.
func (a *Api) scrapeHandler(w http.ResponseWriter, r *http.Request) {
	trends, err := a.Trends.List()
	if err != nil {
		log.Err(err).Msg("failed to list market trends")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	for _, t := range trends {
		if len(t.TimeSeries) == 0 {
			continue
		}
		last := t.TimeSeries[len(t.TimeSeries)-1]
		drift := synthetic.MinDrift + (synthetic.MaxDrift-synthetic.MinDrift)*rand.Float64()
		next := record.TrendPoint{
			Date:           last.Date.AddDate(0, 1, 0),
			MedianPrice:    last.MedianPrice * (1 + drift),
			InventoryCount: last.InventoryCount,
		}
		patch := record.Patch{"time_series": append(t.TimeSeries, next)}
		if _, err := a.Trends.Update(t.ID, patch); err != nil {
			log.Err(err).Str("location", t.Location).Msg("failed to record market point")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"locations":  len(trends),
		"scraped_at": time.Now().UTC(),
	})
}

func (a *Api) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if a.Down.Load() {
		status = "down"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid id: %q", raw))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, remote.ErrResponse{
		HTTPStatusCode: status,
		Message:        message,
	})
}
