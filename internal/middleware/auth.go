package middleware

import (
	"vocabsheet/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgError         = "Something went wrong. Please try again later."
	msgNotAuthorized = "Send /start and the password first."
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			authorized, err := authService.Status(userID)
			if err != nil {
				logger.Error("Failed to check authorization in middleware", zap.Error(err))
				return c.Send(msgError)
			}

			if !authorized {
				logger.Info("Rejected unauthorized request",
					zap.Int64("user_id", userID),
					zap.String("text", c.Text()),
				)
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: msgNotAuthorized, ShowAlert: true})
				}
				return c.Send(msgNotAuthorized)
			}

			return next(c)
		}
	}
}
