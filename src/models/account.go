package models

import "time"

type Account struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	InstitutionCode    string    `json:"institution_code"`
	AccountNumber      string    `json:"account_number"`
	AccountPasswordEnc string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}
