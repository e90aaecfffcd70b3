package users

import "time"

// User mirrors the identity provider's record for notification addressing.
// The id is the provider's opaque subject, not a locally generated uuid.
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);index;not null" json:"email"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for User
func (User) TableName() string {
	return "users"
}
