package conference

import "errors"

var (
	// ErrSessionNotFound is returned when a referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSpeakerNotFound is returned when a referenced speaker does not exist.
	ErrSpeakerNotFound = errors.New("speaker not found")
	// ErrCategoryNotFound is returned when a referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrRoomNotFound is returned when a referenced room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrDuplicateRelation is returned when a session↔speaker or
	// session↔category pair already exists.
	ErrDuplicateRelation = errors.New("relation already exists")
)
