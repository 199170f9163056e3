// Package model defines the records exchanged with the squad REST API.
//
// Every listable record implements Entity so list state can be patched by
// identity key without knowing the concrete type.
package model

import "time"

// Entity is a record with a stable identity key.
type Entity interface {
	Key() string
}

// User is the authenticated actor and the row type of the members screen.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	YOB       int       `json:"YOB"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Key implements Entity.
func (u User) Key() string { return u.ID }

// Player is a squad member managed from the admin players screen.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"playerName"`
	Image       string    `json:"image,omitempty"`
	Cost        int64     `json:"cost"`
	IsCaptain   bool      `json:"isCaptain"`
	Information string    `json:"information,omitempty"`
	TeamID      string    `json:"team"`
	TeamName    string    `json:"teamName,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Key implements Entity.
func (p Player) Key() string { return p.ID }

// Team groups players.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"teamName"`
	PlayerCount int    `json:"playerCount"`
}

// Key implements Entity.
func (t Team) Key() string { return t.ID }

// Comment is a member's rating of a player.
type Comment struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"playerId"`
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author,omitempty"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Key implements Entity.
func (c Comment) Key() string { return c.ID }

// Credentials are the sign-in form values.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up form.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	YOB      int    `json:"YOB"`
}

// Credentials returns the subset needed to sign in after sign-up.
func (r Registration) Credentials() Credentials {
	return Credentials{Username: r.Username, Password: r.Password}
}

// AuthResult is what a successful sign-in returns.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfilePatch holds the editable profile fields. Nil fields are untouched.
type ProfilePatch struct {
	Name *string `json:"name,omitempty"`
	YOB  *int    `json:"YOB,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.YOB == nil
}

// ApplyTo returns u with the patch merged in.
func (p ProfilePatch) ApplyTo(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.YOB != nil {
		u.YOB = *p.YOB
	}
	return u
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PlayerDraft is the create/edit form for a player.
type PlayerDraft struct {
	Name        string `json:"playerName"`
	Image       string `json:"image,omitempty"`
	Cost        int64  `json:"cost"`
	IsCaptain   bool   `json:"isCaptain"`
	Information string `json:"information,omitempty"`
	TeamID      string `json:"team"`
}

// TeamDraft is the create/edit form for a team.
type TeamDraft struct {
	Name string `json:"teamName"`
}

// CommentDraft is the create/edit form for a comment.
type CommentDraft struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// MemberDraft is unused by the API (members are created through sign-up)
// but keeps the members resource on the same generic shape.
type MemberDraft = ProfilePatch
