package models

import "time"

// PodcastChannel is an imported podcast feed.
type PodcastChannel struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Link          string     `json:"link"`
	Description   string     `json:"description"`
	Copyright     *string    `json:"copyright,omitempty"`
	Language      *string    `json:"language,omitempty"`
	Author        *string    `json:"author,omitempty"`
	OwnerEmail    *string    `json:"owner_email,omitempty"`
	OwnerName     *string    `json:"owner_name,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	LastBuildDate *time.Time `json:"last_build_date,omitempty"`
}

// PodcastEpisode is one episode of a channel. The guid is globally unique
// across all channels, so re-imports cannot duplicate episodes.
type PodcastEpisode struct {
	ID          int       `json:"id"`
	ChannelID   int       `json:"channel_id"`
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Link        *string   `json:"link,omitempty"`
	PubDate     time.Time `json:"pub_date"`
	DurationSec int       `json:"duration_sec"`
	Explicit    bool      `json:"explicit"`
	ImageURL    *string   `json:"image_url,omitempty"`
	MediaURL    string    `json:"media_url"`
	MediaType   *string   `json:"media_type,omitempty"`
	MediaLength int64     `json:"media_length"`
}

// PodcastChannelExport is a channel denormalized for client consumption.
type PodcastChannelExport struct {
	PodcastChannel
	Categories      []string         `json:"categories"`
	Episodes        []PodcastEpisode `json:"episodes"`
	EpisodeCount    int              `json:"episode_count"`
	EarliestPubDate *time.Time       `json:"earliest_pub_date,omitempty"`
	LatestPubDate   *time.Time       `json:"latest_pub_date,omitempty"`
}
