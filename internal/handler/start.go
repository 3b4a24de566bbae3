package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const msgAskPassword = "Hi! This is a private vocabulary bot. Send the password to continue:"

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	authorized, err := h.authService.Status(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgError)
	}

	h.ResetState(userID)

	if !authorized {
		return c.Send(msgAskPassword)
	}

	if c.Callback() != nil {
		if err := c.Edit(msgMainMenu, mainMenuMarkup()); err != nil {
			if handleErr := h.handleEditError(err, c, userID); handleErr == nil {
				return nil
			}
			return c.Send(msgMainMenu, mainMenuMarkup())
		}
		return c.Respond()
	}
	return c.Send(msgMainMenu, mainMenuMarkup())
}
