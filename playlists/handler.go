/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playlists

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
)

// cacheControl lets a shared cache keep responses for an hour.
const cacheControl = "s-maxage=3600, stale-while-revalidate"

type moodsResponse struct {
	Moods []Mood `json:"moods"`
}

type playlistsResponse struct {
	Playlists []Playlist `json:"playlists"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves GET ?action=moods|browse|search. Every outcome, including
// backend failures, is a 200 with a JSON body; failures carry an "error" key.
type Handler struct {
	svc     *Service
	timeout time.Duration
}

// NewHandler wraps svc with permissive CORS so the page can be hosted elsewhere.
func NewHandler(svc *Service, timeout time.Duration) http.Handler {
	h := &Handler{
		svc:     svc,
		timeout: timeout,
	}

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}).Handler(h)
}

// ParseLimit clamps limit to [1,MaxLimit], defaulting to DefaultLimit.
func ParseLimit(raw string) int {
	if raw == "" {
		return DefaultLimit
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}

	return max(1, min(MaxLimit, n))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	q := r.URL.Query()

	action := q.Get("action")
	if action == "" {
		action = "moods"
	}
	limit := ParseLimit(q.Get("limit"))

	var result any

	switch action {
	case "moods":
		moods, err := h.svc.Moods(ctx)
		if err != nil {
			result = h.fail(err)
			break
		}
		result = moodsResponse{Moods: moods}

	case "browse":
		mood := q.Get("mood")
		if mood == "" {
			mood = DefaultMood
		}

		playlists, err := h.svc.Browse(ctx, mood, limit)
		if err != nil {
			result = h.fail(err)
			break
		}
		result = playlistsResponse{Playlists: playlists}

	case "search":
		query := q.Get("q")
		if query == "" {
			result = errorResponse{Error: "Missing 'q' parameter for search"}
			break
		}

		playlists, err := h.svc.Search(ctx, query, limit)
		if err != nil {
			result = h.fail(err)
			break
		}
		result = playlistsResponse{Playlists: playlists}

	default:
		result = errorResponse{Error: fmt.Sprintf("Unknown action: %s", action)}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)

	_ = json.NewEncoder(w).Encode(result)
}

func (h *Handler) fail(err error) errorResponse {
	h.svc.logf("API: Error: %v", err)

	return errorResponse{Error: err.Error()}
}
