package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserProfile holds display data for an identity issued by the external
// identity provider. ID is the provider's user id, not a local key.
type UserProfile struct {
	ID          string                          `gorm:"size:128;primaryKey" json:"id"`
	Email       string                          `gorm:"not null;size:255" json:"email"`
	Name        string                          `gorm:"size:255" json:"name"`
	Phone       string                          `gorm:"size:50" json:"phone"`
	Occupation  string                          `gorm:"size:255" json:"occupation"`
	Bio         string                          `gorm:"type:text" json:"bio"`
	PhotoURL    string                          `gorm:"column:photo_url;size:2048" json:"photoURL"`
	SocialLinks datatypes.JSONType[SocialLinks] `gorm:"type:jsonb" json:"socialLinks"`
	IsActive    bool                            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time                       `json:"createdAt"`
	UpdatedAt   time.Time                       `json:"updatedAt"`
}

type SocialLinks struct {
	Facebook string `json:"facebook,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Dribbble string `json:"dribbble,omitempty"`
	GitHub   string `json:"github,omitempty"`
}
