package service

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"

	"kaiginote/internal/dto"
	"kaiginote/internal/model"
	"kaiginote/internal/repo"
	"kaiginote/internal/security"
	"kaiginote/pkg/validator"
)

// currentUser returns the user resolved by the auth middleware.
func currentUser(ctx *ginext.Context) (*model.User, bool) {
	v, ok := ctx.Get(dto.CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse register request")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash password")
		dto.InternalServerError(ctx)
		return
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			dto.EmailTakenError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to create user in DB")
		dto.InternalServerError(ctx)
		return
	}

	user.ID = int(id)
	s.log.Info().Int64("user_id", id).Msg("user registered successfully")

	dto.SuccessCreatedResponse(ctx, dto.FromUser(user))
}

func (s *service) Login(ctx *ginext.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid form data")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	// Unknown email and wrong password take the same path so the response
	// never reveals which one it was.
	user, err := s.repo.GetUserByEmail(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, repo.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("failed to look up user for login")
			dto.InternalServerError(ctx)
			return
		}
		dto.BadCredentialsError(ctx)
		return
	}
	if !security.VerifyPassword(req.Password, user.PasswordHash) {
		dto.BadCredentialsError(ctx)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to issue access token")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("user_id", user.ID).Msg("user logged in")

	dto.SuccessResponse(ctx, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Logout is a stateless acknowledgment: tokens are not revoked server-side.
func (s *service) Logout(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, gin.H{"message": "Logged out successfully"})
}
