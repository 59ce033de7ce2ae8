package models

import "time"

// User represents an application user (provisioned from Firebase claims)
type User struct {
	ID          int64     `json:"id"`
	FirebaseUID string    `json:"-"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Picture     string    `json:"picture"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
