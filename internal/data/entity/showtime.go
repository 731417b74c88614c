package entity

import "fmt"

// Showtime identifies the screening a selection session belongs to.
type Showtime struct {
	ID       string
	CinemaID string
	RoomID   string
}

// Group is the real-time channel group for the showtime.
func (s Showtime) Group() string {
	return fmt.Sprintf("showtime-%s", s.ID)
}
