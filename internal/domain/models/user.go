package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID
	Username string
	PassHash []byte
}

type Credentials struct {
	Username string
	Password string
}
