package tables

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Id                   uuid.UUID  `json:"id" bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email                string     `json:"email" bun:"email,unique,notnull"`
	FirstName            string     `json:"firstName" bun:"first_name,notnull,default:''"`
	LastName             string     `json:"lastName" bun:"last_name,notnull,default:''"`
	Photo                string     `json:"photo" bun:"photo,notnull,default:''"`
	UserBio              string     `json:"userBio" bun:"user_bio,notnull,default:''"`
	PasswordHash         string     `json:"-" bun:"password_hash,notnull"`
	IsEmailVerified      bool       `json:"isEmailVerified" bun:"is_email_verified,notnull,default:false"`
	VerificationToken    *string    `json:"-" bun:"verification_token,unique,nullzero"`
	VerificationExpires  *time.Time `json:"-" bun:"verification_expires,nullzero"`
	ResetPasswordToken   *string    `json:"-" bun:"reset_password_token,unique,nullzero"`
	ResetPasswordExpires *time.Time `json:"-" bun:"reset_password_expires,nullzero"`
	CreditBalance        int        `json:"creditBalance" bun:"credit_balance,notnull,default:0"`
	CreatedAt            time.Time  `json:"createdAt" bun:"created_at,notnull,default:now()"`
	UpdatedAt            time.Time  `json:"updatedAt" bun:"updated_at,notnull,default:now()"`
}

// DisplayName joins first and last name the way session payloads expect.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Sanitized returns a copy without secrets, safe to serialize or cache.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.VerificationToken = nil
	c.VerificationExpires = nil
	c.ResetPasswordToken = nil
	c.ResetPasswordExpires = nil
	return &c
}
