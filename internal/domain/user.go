package domain

import "time"

type UserStatus string

const (
	UserActive  UserStatus = "ACTIVE"
	UserBlocked UserStatus = "BLOCKED"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserBlocked
}

type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Status         UserStatus `json:"status"`
	DisabledPermit bool       `json:"disabled_permit"`
	Created        time.Time  `json:"created"`
	Changed        time.Time  `json:"changed"`
}

type UserCreateUpdateDTO struct {
	Email          string `json:"email" binding:"required,email"`
	DisabledPermit bool   `json:"disabled_permit"`
}

type UserStatusUpdateDTO struct {
	Status UserStatus `json:"status" binding:"required"`
}
