package dto

// UpdateProfileRequest is a partial update: nil fields are left untouched.
type UpdateProfileRequest struct {
	Name        *string            `json:"name"`
	Email       *string            `json:"email"`
	Phone       *string            `json:"phone"`
	Occupation  *string            `json:"occupation"`
	Bio         *string            `json:"bio"`
	PhotoURL    *string            `json:"photoURL"`
	SocialLinks *SocialLinksUpdate `json:"socialLinks"`
}

type SocialLinksUpdate struct {
	Facebook *string `json:"facebook"`
	Twitter  *string `json:"twitter"`
	LinkedIn *string `json:"linkedin"`
	Dribbble *string `json:"dribbble"`
	GitHub   *string `json:"github"`
}
