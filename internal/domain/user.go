package domain

import "context"

// User is resolved by the external auth collaborator; the core only ever
// reads it for confirmation emails and booking ownership.
type User struct {
	ID    int
	Name  string
	Email string
}

type UserRepository interface {
	GetById(ctx context.Context, id int) (*User, error)
}
