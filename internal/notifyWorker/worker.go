package notifyWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"kaiginote/internal/dto"
	"kaiginote/internal/notify"
	"kaiginote/internal/rabbit"
	"kaiginote/internal/repo"
)

// Reader consumes event notification messages and performs the single
// Discord webhook attempt for each one.
type Reader struct {
	RMQ     *rabbit.Client
	repo    repo.Repository
	discord *notify.Discord
	done    chan struct{}
	cancel  context.CancelFunc
}

func NewReader(rmq *rabbit.Client, repo repo.Repository, discord *notify.Discord) *Reader {
	return &Reader{
		RMQ:     rmq,
		repo:    repo,
		discord: discord,
		done:    make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("notification worker started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.EventNotificationMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("Failed to unmarshal notification message: %s", string(body))
				return err
			}

			zlog.Logger.Info().
				Int("event_id", msg.EventID).
				Str("action", msg.Action).
				Msg("received notification message")

			event, err := r.repo.GetEventByID(cctx, int64(msg.EventID))
			if err != nil {
				// Event may have been deleted between publish and consume.
				zlog.Logger.Warn().
					Err(err).
					Int("event_id", msg.EventID).
					Msg("skipping notification for missing event")
				return nil
			}

			if err := r.discord.Send(cctx, event, msg.Action); err != nil {
				zlog.Logger.Warn().Err(err).Msg("failed to send discord notification")
			}

			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification worker stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
