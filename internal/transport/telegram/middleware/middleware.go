package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.String("command", commandOf(c.Message())),
			)

			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			return next(c)
		}
	}
}

// commandOf never logs arguments, they may carry the api key.
func commandOf(msg *tele.Message) string {
	if msg == nil {
		return ""
	}
	for _, e := range msg.Entities {
		if e.Type == tele.EntityCommand && e.Offset == 0 && e.Length <= len(msg.Text) {
			return msg.Text[:e.Length]
		}
	}
	return ""
}
