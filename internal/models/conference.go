package models

import "time"

// Session is a conference session. IDs come from the upstream schedule
// provider (or an admin) and are opaque strings.
type Session struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	RoomID           *int      `json:"room_id,omitempty"`
	IsServiceSession bool      `json:"is_service_session"`
	IsPlenumSession  bool      `json:"is_plenum_session"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Speaker is a conference speaker.
type Speaker struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Bio            *string `json:"bio,omitempty"`
	Tagline        *string `json:"tagline,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	IsTopSpeaker   bool    `json:"is_top_speaker"`
}

// Room is a conference room with an auto-assigned id.
type Room struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// Category is a session category (track, level, ...).
type Category struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	SortOrder int     `json:"sort_order"`
	Type      *string `json:"type,omitempty"`
}

// SessionSpeaker links a speaker to a session.
type SessionSpeaker struct {
	SessionID string `json:"session_id"`
	SpeakerID string `json:"speaker_id"`
}

// SessionCategory links a category to a session.
type SessionCategory struct {
	SessionID  string `json:"session_id"`
	CategoryID int    `json:"category_id"`
}

// ConferenceData is the denormalized dataset served to clients for initial
// population and periodic refresh.
type ConferenceData struct {
	Sessions   []SessionWithRelations `json:"sessions"`
	Speakers   []Speaker              `json:"speakers"`
	Rooms      []Room                 `json:"rooms"`
	Categories []Category             `json:"categories"`
}

// SessionWithRelations is a session joined with its speaker and category ids.
type SessionWithRelations struct {
	Session
	SpeakerIDs  []string `json:"speaker_ids"`
	CategoryIDs []int    `json:"category_ids"`
}
