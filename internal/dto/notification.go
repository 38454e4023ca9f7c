package dto

import "time"

type NotificationResponseDTO struct {
	ID        int       `json:"id" example:"3"`
	Title     string    `json:"title" example:"Withdrawal approved"`
	Body      string    `json:"body"`
	Read      bool      `json:"read" example:"false"`
	CreatedAt time.Time `json:"created_at"`
}
