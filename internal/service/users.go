package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"kaiginote/internal/dto"
	"kaiginote/internal/repo"
	"kaiginote/internal/security"
	"kaiginote/pkg/validator"
)

func (s *service) GetUsers(ctx *ginext.Context) {
	offset, limit := parsePagination(ctx)

	users, err := s.repo.GetAllUsers(ctx, offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list users")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.FromUser(&users[i]))
	}

	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetMe(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Could not validate credentials")
		return
	}
	dto.SuccessResponse(ctx, dto.FromUser(user))
}

func (s *service) GetUser(ctx *ginext.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			dto.UserNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to get user")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.FromUser(user))
}

func (s *service) UpdateUser(ctx *ginext.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			dto.UserNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to get user for update")
		dto.InternalServerError(ctx)
		return
	}

	me, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Could not validate credentials")
		return
	}
	if user.ID != me.ID {
		dto.ForbiddenError(ctx)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = req.ProfilePicture
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to hash password")
			dto.InternalServerError(ctx)
			return
		}
		user.PasswordHash = hash
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			dto.EmailTakenError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to update user")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("user_id", user.ID).Msg("user updated")

	dto.SuccessResponse(ctx, dto.FromUser(user))
}
