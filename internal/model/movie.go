package model

import "time"

// Movie is one entry in a user's watchlist.
//
// Year is kept as text, the way users type it into the form ("1999"), rather
// than as an integer. UserID is the owner; a movie is only ever visible to,
// and editable by, the user who added it.
type Movie struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Title     string    `json:"title"     db:"title"`
	Year      string    `json:"year"      db:"year"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
