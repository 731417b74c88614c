package request

type CreateSessionRequest struct {
	ShowtimeID string `json:"showtime_id" validate:"required,max=64"`
	CinemaID   string `json:"cinema_id" validate:"required,max=64"`
	RoomID     string `json:"room_id" validate:"required,max=64"`
}

type StartPaymentRequest struct {
	Provider string `json:"provider" validate:"required,max=32"`
}
