package model

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `db:"id"`
	Username string    `db:"username"`
	PassHash []byte    `db:"pass_hash"`
}
