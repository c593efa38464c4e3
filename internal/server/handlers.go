package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"tubarchive/internal/blocking"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"

	"github.com/go-chi/chi/v5"
)

const defaultRunLimit = 20

// handleListChannels lists registered channels.
func (a *api) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, _, err := a.cs.GetAllChannels()
	if err != nil {
		serverError(w, err)
		return
	}
	if channels == nil {
		channels = []*models.Channel{}
	}
	writeJSON(w, channels)
}

// handleGetChannel returns one channel by channel ID.
func (a *api) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	c, found, err := a.cs.GetChannelModel(consts.QChanChannelID, chi.URLParam(r, "id"))
	if err != nil {
		serverError(w, err)
		return
	}
	if !found {
		http.Error(w, "channel not found", http.StatusNotFound)
		return
	}
	writeJSON(w, c)
}

// handleChannelVideos lists the registry rows of a channel's videos.
func (a *api) handleChannelVideos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, found, err := a.cs.GetChannelModel(consts.QChanChannelID, id); err != nil {
		serverError(w, err)
		return
	} else if !found {
		http.Error(w, "channel not found", http.StatusNotFound)
		return
	}

	videos, err := a.vs.GetChannelVideos(id)
	if err != nil {
		serverError(w, err)
		return
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	writeJSON(w, videos)
}

// handleGetVideo returns one video row.
func (a *api) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	v, found, err := a.vs.GetVideo(chi.URLParam(r, "id"))
	if err != nil {
		serverError(w, err)
		return
	}
	if !found {
		http.Error(w, "video not found", http.StatusNotFound)
		return
	}
	writeJSON(w, v)
}

// handleListRuns lists recent archive passes, newest first.
func (a *api) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := a.rs.LatestRuns(limit)
	if err != nil {
		serverError(w, err)
		return
	}
	if runs == nil {
		runs = []*models.Run{}
	}
	writeJSON(w, runs)
}

type blockedJSON struct {
	Domain           string `json:"domain"`
	Context          string `json:"context"`
	BlockedAt        string `json:"blocked_at"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

// handleListBlocked lists active bot detection blocks.
func (a *api) handleListBlocked(w http.ResponseWriter, r *http.Request) {
	b := blocking.New(a.db)
	if err := b.Load(); err != nil {
		serverError(w, err)
		return
	}
	active := b.Active()
	out := make([]blockedJSON, 0, len(active))
	for _, b := range active {
		out = append(out, blockedJSON{
			Domain:           b.Domain,
			Context:          string(b.Context),
			BlockedAt:        b.BlockedAt.UTC().Format(http.TimeFormat),
			RemainingSeconds: int64(b.Remaining.Seconds()),
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Pl.E("Failed to encode response: %v", err)
	}
}

func serverError(w http.ResponseWriter, err error) {
	logger.Pl.E("Status request failed: %v", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
