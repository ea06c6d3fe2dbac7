package structs

import "github.com/google/uuid"

type CreateGroupRequest struct {
	Name      string      `json:"name" validate:"required,min=1,max=100"`
	MemberIds []uuid.UUID `json:"memberIds"`
}

type RenameGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type AddMemberRequest struct {
	UserId uuid.UUID `json:"userId" validate:"required"`
}

type AddMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}
