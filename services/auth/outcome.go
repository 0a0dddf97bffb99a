package auth

import "github.com/tech-arch1tect/rememberme/services/user"

const (
	SourceSession  = "session"
	SourcePassword = "password"
)

// Outcome is the result of one login attempt. A zero Outcome is
// unauthenticated.
type Outcome struct {
	User   *user.User
	Source string
}

func Authenticated(u *user.User, source string) Outcome {
	return Outcome{User: u, Source: source}
}

func Unauthenticated() Outcome {
	return Outcome{}
}

func (o Outcome) Authenticated() bool {
	return o.User != nil
}
