package domain

import "time"

// User is a registered account. Email is the login field.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	FirstName    string    `json:"first_name" gorm:"size:150;not null"`
	LastName     string    `json:"last_name" gorm:"size:150;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsStaff      bool      `json:"-" gorm:"not null;default:false"`
	IsActive     bool      `json:"-" gorm:"not null;default:true"`
	DateJoined   time.Time `json:"-" gorm:"autoCreateTime"`
}

func (User) TableName() string { return "users" }

// AuthToken is the opaque API token of a user. Only the hash is stored,
// the raw key is handed out once.
type AuthToken struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;uniqueIndex"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (AuthToken) TableName() string { return "auth_tokens" }
