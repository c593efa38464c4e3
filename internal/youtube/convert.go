package youtube

import (
	"tubarchive/internal/models"

	ytapi "google.golang.org/api/youtube/v3"
)

// metadataFromVideo converts an API video resource.
func metadataFromVideo(v *ytapi.Video) models.ItemMetadata {
	meta := models.ItemMetadata{ID: v.Id}

	if s := v.Snippet; s != nil {
		meta.Title = s.Title
		meta.ChannelID = s.ChannelId
		meta.ChannelName = s.ChannelTitle
		meta.PublishedAt = s.PublishedAt
		meta.Description = s.Description
		meta.Tags = s.Tags
		meta.CategoryID = s.CategoryId
		meta.Thumbnail = bestThumbnail(s.Thumbnails)
	}

	if cd := v.ContentDetails; cd != nil {
		meta.Duration = cd.Duration
		meta.CaptionsAvailable = cd.Caption == "true"
	}

	// Hidden like counts, disabled comments and the retired dislike count are
	// omitted by the API and decode as zero, so zero is reported as unknown for those.
	if st := v.Statistics; st != nil {
		meta.Views = count(st.ViewCount)
		meta.Favorites = count(st.FavoriteCount)
		meta.Comments = nonZero(st.CommentCount)
		meta.Likes = nonZero(st.LikeCount)
		meta.Dislikes = nonZero(st.DislikeCount)
	}
	return meta
}

// bestThumbnail returns the highest resolution thumbnail URL available.
func bestThumbnail(t *ytapi.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*ytapi.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

func count(n uint64) *int64 {
	v := int64(n)
	return &v
}

func nonZero(n uint64) *int64 {
	if n == 0 {
		return nil
	}
	return count(n)
}
