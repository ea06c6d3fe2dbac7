package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	Id          uuid.UUID  `json:"id" bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name        string     `json:"name" bun:"name,notnull"`
	CreatedById uuid.UUID  `json:"createdById" bun:"created_by_id,type:uuid,notnull"`
	CreatedBy   *User      `json:"createdBy,omitempty" bun:"rel:belongs-to,join:created_by_id=id"`
	Members     []*User    `json:"members,omitempty" bun:"m2m:group_members,join:Group=User"`
	Messages    []*Message `json:"messages,omitempty" bun:"rel:has-many,join:id=group_id"`
	CreatedAt   time.Time  `json:"createdAt" bun:"created_at,notnull,default:now()"`
	UpdatedAt   time.Time  `json:"updatedAt" bun:"updated_at,notnull,default:now()"`
}

// GroupMember is the join table behind Group.Members. It must be registered
// with the bun DB before any m2m query runs.
type GroupMember struct {
	bun.BaseModel `bun:"table:group_members,alias:gm"`

	GroupId  uuid.UUID `bun:"group_id,pk,type:uuid"`
	Group    *Group    `bun:"rel:belongs-to,join:group_id=id,on_delete:cascade"`
	UserId   uuid.UUID `bun:"user_id,pk,type:uuid"`
	User     *User     `bun:"rel:belongs-to,join:user_id=id,on_delete:cascade"`
	JoinedAt time.Time `bun:"joined_at,notnull,default:now()"`
}

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:msg"`

	Id        uuid.UUID `json:"id" bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	GroupId  uuid.UUID `json:"groupId" bun:"group_id,type:uuid,notnull"`
	SenderId  uuid.UUID `json:"senderId" bun:"sender_id,type:uuid,notnull"`
	Sender    *User     `json:"sender,omitempty" bun:"rel:belongs-to,join:sender_id=id"`
	Text      string    `json:"text" bun:"text,notnull"`
	CreatedAt time.Time `json:"createdAt" bun:"created_at,notnull,default:now()"`
}

// HasMember reports whether userID is in the loaded member set.
func (g *Group) HasMember(userID uuid.UUID) bool {
	for _, m := range g.Members {
		if m != nil && m.Id == userID {
			return true
		}
	}
	return false
}
