// Package youtube lists channels and uploads through the YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"
	"tubarchive/internal/parsing"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// ErrChannelNotFound is returned when the API knows no channel by the given ID or handle.
var ErrChannelNotFound = errors.New("channel not found")

var (
	channelParts  = []string{"snippet", "contentDetails"}
	playlistParts = []string{"snippet", "contentDetails"}
	videoParts    = []string{"snippet", "statistics", "contentDetails"}
)

// Client wraps a YouTube Data API service.
type Client struct {
	svc *ytapi.Service
}

// New returns a client authenticating with apiKey.
//
// Extra options are appended after the key, e.g. option.WithEndpoint.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("a YouTube Data API key is required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	svc, err := ytapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Channel retrieves a channel by ID ("UC...") or handle ("@name").
func (c *Client) Channel(ctx context.Context, channelID string) (*models.ChannelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.HTTPClientTimeout)
	defer cancel()

	call := c.svc.Channels.List(channelParts).MaxResults(1)
	if strings.HasPrefix(channelID, "@") {
		call = call.ForHandle(channelID)
	} else {
		call = call.Id(channelID)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %q: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	ch := resp.Items[0]
	info := &models.ChannelInfo{ID: ch.Id}
	if ch.Snippet != nil {
		info.Name = ch.Snippet.Title
		info.Description = ch.Snippet.Description
		if ch.Snippet.PublishedAt != "" {
			if t, err := parsing.ParseTimestamp(ch.Snippet.PublishedAt); err == nil {
				info.PublishedAt = t
			}
		}
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		info.UploadsPlaylist = ch.ContentDetails.RelatedPlaylists.Uploads
	}

	logger.Pl.D(2, "Resolved channel %q (%s) with upload playlist %q", info.Name, info.ID, info.UploadsPlaylist)
	return info, nil
}

// ListUploads returns one page of an upload playlist with full video metadata.
//
// Items keep the playlist order. Entries the videos endpoint does not return
// (private or deleted uploads) are left out of the page.
func (c *Client) ListUploads(ctx context.Context, playlistID, pageToken string) (*models.UploadPage, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.HTTPClientTimeout)
	defer cancel()

	call := c.svc.PlaylistItems.List(playlistParts).
		PlaylistId(playlistID).
		MaxResults(consts.UploadsPageSize)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist %q: %w", playlistID, err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, pi := range resp.Items {
		if id := playlistVideoID(pi); id != "" {
			ids = append(ids, id)
		}
	}

	page := &models.UploadPage{NextPageToken: resp.NextPageToken}
	if len(ids) == 0 {
		return page, nil
	}

	vresp, err := c.svc.Videos.List(videoParts).
		Id(ids...).
		MaxResults(int64(len(ids))).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get %d videos from playlist %q: %w", len(ids), playlistID, err)
	}

	byID := make(map[string]*ytapi.Video, len(vresp.Items))
	for _, v := range vresp.Items {
		byID[v.Id] = v
	}

	page.Items = make([]models.ItemMetadata, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			logger.Pl.D(2, "Upload %q is listed but unavailable, skipping", id)
			continue
		}
		page.Items = append(page.Items, metadataFromVideo(v))
	}
	return page, nil
}

// playlistVideoID extracts the video ID from a playlist entry.
func playlistVideoID(pi *ytapi.PlaylistItem) string {
	if pi.ContentDetails != nil && pi.ContentDetails.VideoId != "" {
		return pi.ContentDetails.VideoId
	}
	if pi.Snippet != nil && pi.Snippet.ResourceId != nil {
		return pi.Snippet.ResourceId.VideoId
	}
	return ""
}
