package model

import "time"

type User struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	ProfilePicture *string   `db:"profile_picture" json:"profile_picture,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type Event struct {
	ID              int       `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	Place           string    `db:"place" json:"place"`
	Content         string    `db:"content,omitempty" json:"content,omitempty"`
	Status          string    `db:"status" json:"status"`
	TotalCost       int       `db:"total_cost" json:"total_cost"`
	MaxParticipants *int      `db:"max_participants" json:"max_participants,omitempty"`
	IsPublic        bool      `db:"is_public" json:"is_public"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type EventParticipant struct {
	ID               int       `db:"id" json:"id"`
	EventID          int       `db:"event_id" json:"event_id"`
	UserID           int       `db:"user_id" json:"user_id"`
	PaidAmount       int       `db:"paid_amount" json:"paid_amount"`
	AttendanceStatus string    `db:"attendance_status" json:"attendance_status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ParticipantWithUser is a participant row joined with the user's display name.
type ParticipantWithUser struct {
	EventParticipant
	UserName string `db:"user_name" json:"user_name"`
}
