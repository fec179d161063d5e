package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/service"
	"github.com/aussiebroadwan/kurdforest/pkg/errutil"
	"github.com/aussiebroadwan/kurdforest/pkg/httpx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

// maxBodyBytes bounds watchlist request bodies.
const maxBodyBytes = 1 << 16

// WatchlistHandler serves the JSON watchlist API.
type WatchlistHandler struct {
	WatchlistService *service.WatchlistService
}

// CheckResponse reports watchlist membership.
type CheckResponse struct {
	InWatchlist bool `json:"inWatchlist"`
}

// WatchlistRequest identifies a title by provider id. Clients send either
// externalId or tmdbId, as string or number.
type WatchlistRequest struct {
	ExternalID     flexString `json:"externalId"`
	TMDBID         flexString `json:"tmdbId"`
	MediaType      string     `json:"mediaType"`
	MediaTypeAlias string     `json:"media_type"`
}

func (req WatchlistRequest) externalID() string {
	if req.ExternalID != "" {
		return string(req.ExternalID)
	}
	return string(req.TMDBID)
}

func (req WatchlistRequest) mediaType() string {
	if req.MediaType != "" {
		return req.MediaType
	}
	return req.MediaTypeAlias
}

// flexString decodes a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// WatchlistItem is one entry of the list response.
type WatchlistItem struct {
	ExternalID  string              `json:"externalId"`
	MediaType   string              `json:"mediaType"`
	Title       string              `json:"title"`
	Overview    string              `json:"overview"`
	PosterPath  string              `json:"posterPath"`
	ReleaseDate string              `json:"releaseDate"`
	VoteAverage float64             `json:"voteAverage"`
	Genres      []domain.Genre      `json:"genres"`
	Cast        []domain.CastMember `json:"cast"`
	AddedAt     time.Time           `json:"addedAt"`
}

// ListResponse is the body of GET /api/watchlist.
type ListResponse struct {
	Items []WatchlistItem `json:"items"`
}

// EpisodeItem is one episode of a season listing.
type EpisodeItem struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
}

// EpisodesResponse is the body of GET /api/episodes/{id}/{season}.
type EpisodesResponse struct {
	Episodes []EpisodeItem `json:"episodes"`
}

func decodeWatchlistRequest(w http.ResponseWriter, r *http.Request) (WatchlistRequest, error) {
	var req WatchlistRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.ExternalID = flexString(r.FormValue("externalId"))
	req.TMDBID = flexString(r.FormValue("tmdbId"))
	req.MediaType = r.FormValue("mediaType")
	req.MediaTypeAlias = r.FormValue("media_type")
	return req, nil
}

// writeServiceError maps a watchlist failure onto a JSON error response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, unauthorized string) {
	switch {
	case errors.Is(err, service.ErrAuth):
		httpx.WriteError(w, http.StatusUnauthorized, unauthorized)
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		errutil.LogError(slogx.FromContext(r.Context()), "watchlist request failed", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Server error.")
	}
}

// HandleCheck godoc
//
//	@Summary		Check watchlist membership
//	@Description	Anonymous callers and titles never added by anyone report false.
//	@Tags			Watchlist
//	@Produce		json
//	@Param			externalId	path		string		true	"Provider id"
//	@Success		200			{object}	CheckResponse
//	@Failure		404			{object}	httpx.ErrorResponse	"Session user no longer exists"
//	@Failure		500			{object}	httpx.ErrorResponse
//	@Router			/api/watchlist/check/{externalId} [get]
func (h *WatchlistHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	in, err := h.WatchlistService.Check(r.Context(), SessionFromContext(r.Context()), r.PathValue("externalId"))
	if err != nil {
		writeServiceError(w, r, err, "You must be logged in.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, CheckResponse{InWatchlist: in})
}

// HandleAdd godoc
//
//	@Summary		Add to watchlist
//	@Description	Caches the title from the metadata provider on first use.
//	@Tags			Watchlist
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		WatchlistRequest	true	"Title to add"
//	@Success		200		{object}	httpx.MessageResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		409		{object}	httpx.ErrorResponse	"Item already in watchlist."
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/watchlist/add [post]
func (h *WatchlistHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "You must be logged in to add to your watchlist.")
		return
	}

	req, err := decodeWatchlistRequest(w, r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.WatchlistService.Add(r.Context(), sess, req.externalID(), req.mediaType()); err != nil {
		writeServiceError(w, r, err, "You must be logged in to add to your watchlist.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.MessageResponse{Success: true, Message: "Added to watchlist."})
}

// HandleRemove godoc
//
//	@Summary	Remove from watchlist
//	@Tags		Watchlist
//	@Accept		json,x-www-form-urlencoded
//	@Produce	json
//	@Param		request	body		WatchlistRequest	true	"Title to remove"
//	@Success	200		{object}	httpx.MessageResponse
//	@Failure	401		{object}	httpx.ErrorResponse
//	@Failure	404		{object}	httpx.ErrorResponse	"Item not found."
//	@Failure	500		{object}	httpx.ErrorResponse
//	@Router		/api/watchlist/remove [post]
func (h *WatchlistHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "You must be logged in to remove from your watchlist.")
		return
	}

	req, err := decodeWatchlistRequest(w, r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.WatchlistService.Remove(r.Context(), sess, req.externalID()); err != nil {
		writeServiceError(w, r, err, "You must be logged in to remove from your watchlist.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.MessageResponse{Success: true, Message: "Removed from watchlist."})
}

// HandleList godoc
//
//	@Summary	List watchlist
//	@Tags		Watchlist
//	@Produce	json
//	@Success	200	{object}	ListResponse	"Oldest first"
//	@Failure	401	{object}	httpx.ErrorResponse
//	@Router		/api/watchlist [get]
func (h *WatchlistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.WatchlistService.List(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "You must be logged in to view your watchlist.")
		return
	}

	items := make([]WatchlistItem, 0, len(entries))
	for _, e := range entries {
		m := e.Movie
		items = append(items, WatchlistItem{
			ExternalID:  m.ExternalID,
			MediaType:   string(m.MediaType),
			Title:       m.Title,
			Overview:    m.Overview,
			PosterPath:  m.PosterPath,
			ReleaseDate: m.ReleaseDate,
			VoteAverage: m.VoteAverage,
			Genres:      m.Genres,
			Cast:        m.Cast,
			AddedAt:     e.AddedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, ListResponse{Items: items})
}

// HandleEpisodes godoc
//
//	@Summary	List a season's episodes
//	@Tags		Watchlist
//	@Produce	json
//	@Param		id		path		string	true	"Provider show id"
//	@Param		season	path		int		true	"Season number"
//	@Success	200		{object}	EpisodesResponse
//	@Failure	500		{object}	httpx.ErrorResponse	"Error fetching episodes"
//	@Router		/api/episodes/{id}/{season} [get]
func (h *WatchlistHandler) HandleEpisodes(w http.ResponseWriter, r *http.Request) {
	season, err := strconv.Atoi(r.PathValue("season"))
	if err != nil || season < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid season number.")
		return
	}

	episodes, err := h.WatchlistService.Episodes(r.Context(), r.PathValue("id"), season)
	if err != nil {
		errutil.LogError(slogx.FromContext(r.Context()), "failed to fetch episodes", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Error fetching episodes")
		return
	}

	resp := EpisodesResponse{Episodes: make([]EpisodeItem, 0, len(episodes))}
	for _, e := range episodes {
		resp.Episodes = append(resp.Episodes, EpisodeItem{
			EpisodeNumber: e.EpisodeNumber,
			Name:          e.Name,
			Overview:      e.Overview,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
