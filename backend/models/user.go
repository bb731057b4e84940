package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleStudent  = "student"
	RoleEducator = "educator"
)

// User is the local projection of an identity provider user. The role is not stored;
// it travels in the token claims.
type User struct {
	ID              string                      `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name            string                      `json:"name"`
	Email           string                      `gorm:"index" json:"email"`
	ImageURL        string                      `json:"imageUrl"`
	EnrolledCourses datatypes.JSONSlice[string] `json:"enrolledCourses"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// Identity is the authenticated requester as described by a verified token.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	ImageURL string
	Role     string
}

func (i Identity) IsEducator() bool {
	return i.Role == RoleEducator
}

// Anonymous reports whether no user is attached.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

func (i Identity) AsUser() User {
	return User{ID: i.UserID, Name: i.Name, Email: i.Email, ImageURL: i.ImageURL}
}
