package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"kaiginote/internal/dto"
	"kaiginote/internal/model"
	"kaiginote/internal/notify"
	"kaiginote/internal/rabbit"
	"kaiginote/internal/repo"
	"kaiginote/internal/security"
)

const defaultListLimit = 100

type Service interface {
	Register(ctx *ginext.Context)
	Login(ctx *ginext.Context)
	Logout(ctx *ginext.Context)

	GetUsers(ctx *ginext.Context)
	GetMe(ctx *ginext.Context)
	GetUser(ctx *ginext.Context)
	UpdateUser(ctx *ginext.Context)

	ListEvents(ctx *ginext.Context)
	CreateEvent(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)

	ListParticipants(ctx *ginext.Context)
	AddParticipant(ctx *ginext.Context)
	UpdateParticipant(ctx *ginext.Context)
	DeleteParticipant(ctx *ginext.Context)
}

type service struct {
	repo    repo.Repository
	log     *zerolog.Logger
	tokens  *security.TokenManager
	discord *notify.Discord
	rbt     *rabbit.Client
}

// NewService wires the handlers. rbt may be nil; notifications then fall back
// to in-process dispatch.
func NewService(repo repo.Repository, logger *zerolog.Logger, tokens *security.TokenManager, discord *notify.Discord, rbt *rabbit.Client) Service {
	return &service{
		repo:    repo,
		log:     logger,
		tokens:  tokens,
		discord: discord,
		rbt:     rbt,
	}
}

func parseIDParam(ctx *ginext.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func parsePagination(ctx *ginext.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(ctx.DefaultQuery("skip", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}
	return offset, limit
}

// notifyEventCreated dispatches the created-event notification without
// touching the request path: one attempt, failures only logged.
func (s *service) notifyEventCreated(event *model.Event) {
	if s.rbt != nil {
		msg := dto.EventNotificationMessage{EventID: event.ID, Action: notify.ActionCreated}
		payload, err := json.Marshal(msg)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to marshal notification message")
			return
		}
		if err := s.rbt.Publish(payload); err != nil {
			s.log.Warn().Err(err).Msg("failed to publish notification message")
		}
		return
	}

	e := *event
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.discord.Send(sendCtx, &e, notify.ActionCreated); err != nil {
			s.log.Warn().Err(err).Int("event_id", e.ID).Msg("failed to send discord notification")
		}
	}()
}
