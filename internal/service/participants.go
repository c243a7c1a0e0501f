package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"kaiginote/internal/dto"
	"kaiginote/internal/model"
	"kaiginote/internal/repo"
	"kaiginote/pkg/validator"
)

func (s *service) ListParticipants(ctx *ginext.Context) {
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to get event")
		dto.InternalServerError(ctx)
		return
	}

	participants, err := s.repo.GetParticipantsByEventID(ctx, eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get participants")
		dto.InternalServerError(ctx)
		return
	}
	if participants == nil {
		participants = []model.ParticipantWithUser{}
	}

	dto.SuccessResponse(ctx, participants)
}

func (s *service) AddParticipant(ctx *ginext.Context) {
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	participant := &model.EventParticipant{
		EventID:          int(eventID),
		UserID:           req.UserID,
		PaidAmount:       req.PaidAmount,
		AttendanceStatus: "pending",
	}

	id, err := s.repo.AddParticipantTx(ctx, participant)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEventNotFound):
			dto.EventNotFoundError(ctx)
		case errors.Is(err, repo.ErrUserNotFound):
			dto.UserNotFoundError(ctx)
		case errors.Is(err, repo.ErrDuplicateParticipant):
			dto.ParticipantDuplicateError(ctx)
		default:
			s.log.Error().Err(err).Msg("failed to add participant")
			dto.InternalServerError(ctx)
		}
		return
	}

	participant.ID = int(id)
	s.log.Info().
		Int64("participant_id", id).
		Int64("event_id", eventID).
		Msg("participant added")

	dto.SuccessCreatedResponse(ctx, participant)
}

func (s *service) UpdateParticipant(ctx *ginext.Context) {
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	participantID, ok := parseIDParam(ctx, "pid")
	if !ok {
		return
	}

	var req dto.UpdateParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	participant, err := s.repo.GetParticipant(ctx, eventID, participantID)
	if err != nil {
		if errors.Is(err, repo.ErrParticipantNotFound) {
			dto.ParticipantNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to get participant for update")
		dto.InternalServerError(ctx)
		return
	}

	// attendance_status is stored but not yet updatable through the API.
	if req.PaidAmount != nil {
		participant.PaidAmount = *req.PaidAmount
	}

	if err := s.repo.UpdateParticipant(ctx, participant); err != nil {
		if errors.Is(err, repo.ErrParticipantNotFound) {
			dto.ParticipantNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to update participant")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("participant_id", participant.ID).Msg("participant updated")

	dto.SuccessResponse(ctx, participant)
}

func (s *service) DeleteParticipant(ctx *ginext.Context) {
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	participantID, ok := parseIDParam(ctx, "pid")
	if !ok {
		return
	}

	if err := s.repo.DeleteParticipant(ctx, eventID, participantID); err != nil {
		if errors.Is(err, repo.ErrParticipantNotFound) {
			dto.ParticipantNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to delete participant")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Int64("participant_id", participantID).
		Int64("event_id", eventID).
		Msg("participant removed")

	dto.NoContentResponse(ctx)
}
