package structs

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Photo     string `json:"photo" validate:"max=2048"`
	UserBio   string `json:"userBio" validate:"max=1000"`
}

// UpdateUserRequest carries optional profile fields; nil means unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Photo     *string `json:"photo" validate:"omitempty,max=2048"`
	UserBio   *string `json:"userBio" validate:"omitempty,max=1000"`
}

type UpdateCreditsRequest struct {
	Amount int `json:"amount" validate:"required"`
}
