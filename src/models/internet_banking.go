package models

import "time"

// InternetBanking holds a user's encrypted internet-banking login for one
// institution. The password ciphertext is produced by the account-registration
// subsystem and only ever decrypted transiently while building a provider call.
type InternetBanking struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	InstitutionCode    string    `json:"institution_code"`
	BankingID          string    `json:"banking_id"`
	BankingPasswordEnc string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}
