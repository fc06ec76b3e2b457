package models

import "time"

// User carries only what the engine needs: identity and a display name for
// leaderboard match history. Accounts themselves live in the surrounding
// application.
type User struct {
	ID        int       `json:"id" db:"id"`
	Nickname  *string   `json:"nickname,omitempty" db:"nickname"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DisplayName prefers the nickname, falling back to first/last name.
func (u *User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}
