package dto

import "time"

type BalanceResponse struct {
	Points int `json:"points"`
	Bids   int `json:"bids"`
}

type TransactionLogResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	TransactionType string    `json:"transaction_type"`
	Amount          int       `json:"amount"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}
