package dto

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"kaiginote/internal/model"
)

// CurrentUserKey is the gin context key under which the auth middleware
// stores the resolved *model.User.
const CurrentUserKey = "currentUser"

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound        = "EVENT_NOT_FOUND"
	UserNotFound         = "USER_NOT_FOUND"
	ParticipantNotFound  = "PARTICIPANT_NOT_FOUND"
	EmailTaken           = "EMAIL_TAKEN"
	ParticipantDuplicate = "PARTICIPANT_DUPLICATE"
	BadCredentials       = "BAD_CREDENTIALS"
	TokenInvalid         = "TOKEN_INVALID"
	NotPermitted         = "NOT_PERMITTED"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `form:"username" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Password       *string `json:"password,omitempty" validate:"omitempty,min=8"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

type UserResponse struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func FromUser(u *model.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CreateEventRequest struct {
	Title           string    `json:"title"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required"`
	Place           string    `json:"place" validate:"required,max=255"`
	Content         string    `json:"content"`
	Status          string    `json:"status"`
	TotalCost       int       `json:"total_cost" validate:"gte=0"`
	MaxParticipants *int      `json:"max_participants,omitempty" validate:"omitempty,gt=0"`
	IsPublic        *bool     `json:"is_public,omitempty"`
}

type UpdateEventRequest struct {
	Title           *string    `json:"title,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Place           *string    `json:"place,omitempty" validate:"omitempty,max=255"`
	Content         *string    `json:"content,omitempty"`
	Status          *string    `json:"status,omitempty"`
	TotalCost       *int       `json:"total_cost,omitempty" validate:"omitempty,gte=0"`
	MaxParticipants *int       `json:"max_participants,omitempty" validate:"omitempty,gt=0"`
	IsPublic        *bool      `json:"is_public,omitempty"`
}

type EventWithParticipants struct {
	model.Event
	Participants []model.ParticipantWithUser `json:"participants"`
}

type CreateParticipantRequest struct {
	UserID     int `json:"user_id" validate:"required,gt=0"`
	PaidAmount int `json:"paid_amount" validate:"gte=0"`
}

type UpdateParticipantRequest struct {
	PaidAmount *int `json:"paid_amount,omitempty" validate:"omitempty,gte=0"`
}

// EventNotificationMessage is published to RabbitMQ after an event is created
// and consumed by the notification worker.
type EventNotificationMessage struct {
	EventID int    `json:"event_id"`
	Action  string `json:"action"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func errorResponse(c *ginext.Context, status int, code, desc string) {
	c.JSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func BadResponseError(c *ginext.Context, code, desc string) {
	errorResponse(c, http.StatusBadRequest, code, desc)
}

func ValidationError(c *ginext.Context, desc string) {
	errorResponse(c, http.StatusUnprocessableEntity, FieldIncorrect, desc)
}

func NotFoundError(c *ginext.Context, code, desc string) {
	errorResponse(c, http.StatusNotFound, code, desc)
}

func ConflictError(c *ginext.Context, code, desc string) {
	errorResponse(c, http.StatusConflict, code, desc)
}

// UnauthorizedError carries the challenge header required on every 401.
func UnauthorizedError(c *ginext.Context, desc string) {
	c.Header("WWW-Authenticate", "Bearer")
	errorResponse(c, http.StatusUnauthorized, TokenInvalid, desc)
}

func BadCredentialsError(c *ginext.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	errorResponse(c, http.StatusUnauthorized, BadCredentials, "Incorrect email or password")
}

func ForbiddenError(c *ginext.Context) {
	errorResponse(c, http.StatusForbidden, NotPermitted, "Not enough permissions")
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func UserNotFoundError(c *ginext.Context) {
	NotFoundError(c, UserNotFound, "User not found")
}

func ParticipantNotFoundError(c *ginext.Context) {
	NotFoundError(c, ParticipantNotFound, "Participant not found")
}

func EmailTakenError(c *ginext.Context) {
	ConflictError(c, EmailTaken, "Email already registered")
}

func ParticipantDuplicateError(c *ginext.Context) {
	ConflictError(c, ParticipantDuplicate, "User is already a participant in this event")
}

func InternalServerError(c *ginext.Context) {
	errorResponse(c, http.StatusInternalServerError, ServiceUnavailable, InternalError)
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Status: "ok",
		Data:   data,
	})
}

func NoContentResponse(c *ginext.Context) {
	c.Status(http.StatusNoContent)
}
