package models

import "time"

type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	RoundUpUnit int       `json:"round_up_unit"`
	CreatedAt   time.Time `json:"created_at"`
}
