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

const defaultEventTitle = "未入力"

func (s *service) ListEvents(ctx *ginext.Context) {
	offset, limit := parsePagination(ctx)

	params := repo.ListEventsParams{
		Keyword: ctx.Query("keyword"),
		Status:  ctx.Query("status"),
		Offset:  offset,
		Limit:   limit,
	}

	events, err := s.repo.ListEvents(ctx, params)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	dto.SuccessResponse(ctx, events)
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	event := &model.Event{
		Title:           req.Title,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Place:           req.Place,
		Content:         req.Content,
		Status:          req.Status,
		TotalCost:       req.TotalCost,
		MaxParticipants: req.MaxParticipants,
		IsPublic:        true,
	}
	if event.Title == "" {
		event.Title = defaultEventTitle
	}
	if event.Status == "" {
		event.Status = "planned"
	}
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}

	event.ID = int(id)
	s.log.Info().Int64("event_id", id).Msg("event created successfully")

	s.notifyEventCreated(event)

	dto.SuccessCreatedResponse(ctx, event)
}

func (s *service) GetEvent(ctx *ginext.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to get event")
		dto.InternalServerError(ctx)
		return
	}

	participants, err := s.repo.GetParticipantsByEventID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get event participants")
		dto.InternalServerError(ctx)
		return
	}
	if participants == nil {
		participants = []model.ParticipantWithUser{}
	}

	dto.SuccessResponse(ctx, dto.EventWithParticipants{
		Event:        *event,
		Participants: participants,
	})
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to get event for update")
		dto.InternalServerError(ctx)
		return
	}

	// Partial update: only fields present in the payload are applied.
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Place != nil {
		event.Place = *req.Place
	}
	if req.Content != nil {
		event.Content = *req.Content
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if req.TotalCost != nil {
		event.TotalCost = *req.TotalCost
	}
	if req.MaxParticipants != nil {
		event.MaxParticipants = req.MaxParticipants
	}
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to update event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("event_id", event.ID).Msg("event updated")

	dto.SuccessResponse(ctx, event)
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to delete event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("event_id", id).Msg("event deleted")

	dto.NoContentResponse(ctx)
}
