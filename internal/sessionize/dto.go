package sessionize

import (
	"strings"
	"time"
)

// GridResponse is the Sessionize GridSmart payload: one grid per day.
type GridResponse []DateGrid

// DateGrid is one conference day.
type DateGrid struct {
	Date  string `json:"date"`
	Rooms []Room `json:"rooms"`
}

// Room is a room with its sessions for one day.
type Room struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Sessions []Session `json:"sessions"`
}

// Session is one scheduled session.
type Session struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	StartsAt    Time          `json:"startsAt"`
	EndsAt      Time          `json:"endsAt"`
	RoomID      int           `json:"roomId"`
	IsServiceS  bool          `json:"isServiceSession"`
	IsPlenum    bool          `json:"isPlenumSession"`
	Speakers    []SessionRef  `json:"speakers"`
	Categories  []CategoryRef `json:"categories"`
}

// SessionRef is a speaker reference embedded in a session.
type SessionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRef is a category reference embedded in a session.
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Speaker is one entry of the Speakers payload.
type Speaker struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Bio            *string `json:"bio"`
	TagLine        *string `json:"tagLine"`
	ProfilePicture *string `json:"profilePicture"`
	IsTopSpeaker   bool    `json:"isTopSpeaker"`
}

// Time decodes Sessionize timestamps, which come either with an offset
// (RFC3339) or as bare local time ("2006-01-02T15:04:05").
type Time struct {
	time.Time
}

// UnmarshalJSON tries RFC3339 first, then the bare layout.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}
