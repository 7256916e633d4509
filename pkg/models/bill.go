package models

import "time"

type Bill struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"` // e.g. "C-11"
	Status    string    `json:"status"`
	Title     string    `json:"title,omitempty"`
	KeyVote   bool      `json:"key_vote"`
	UpdatedAt time.Time `json:"updated_at"`
}
