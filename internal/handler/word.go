package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vocabsheet/internal/domain"
	"vocabsheet/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	authorized, err := h.authService.Status(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgError)
	}

	// Not authorized yet: the text is a password attempt
	if !authorized {
		if err := h.authService.Login(userID, text); err != nil {
			if errors.Is(err, service.ErrWrongPassword) {
				return c.Send("Wrong password")
			}
			h.logger.Error("Failed to authorize user", zap.Error(err))
			return c.Send(msgError)
		}

		h.ResetState(userID)
		return c.Send("✅ Access granted!\n\n"+msgMainMenu, mainMenuMarkup())
	}

	// User is authorized, handle based on state
	state := h.GetState(userID)

	switch state.State {
	case domain.StateWaitingDays:
		days, err := parseDays(text)
		if err != nil {
			return c.Send("Send a whole number of days, e.g. 3")
		}
		return h.scheduleWord(c, state.CurrentWord, days)

	default:
		// Idle or waiting for a word: every text is a word to add
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingWord})
		return h.addWord(c, text)
	}
}

// handleAdd handles /add <word>
func (h *Handler) handleAdd(c tele.Context) error {
	word := strings.TrimSpace(c.Message().Payload)
	if word == "" {
		return h.askForWord(c)
	}
	return h.addWord(c, word)
}

// handleAddWordButton switches the user into word input mode
func (h *Handler) handleAddWordButton(c tele.Context) error {
	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}
	return h.askForWord(c)
}

func (h *Handler) askForWord(c tele.Context) error {
	h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingWord})

	cancelMarkup := &tele.ReplyMarkup{}
	cancelMarkup.Inline(cancelMarkup.Row(btnCancel))
	return c.Send("Send me a word and I will look it up", cancelMarkup)
}

// addWord enriches and stores a word, replying with the stored record
func (h *Handler) addWord(c tele.Context, word string) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	// Lookups can be slow; let the user know we're on it
	if err := c.Notify(tele.Typing); err != nil {
		h.logger.Debug("Failed to send typing action", zap.Error(err))
	}

	rec, added, err := h.vocabService.SmartAdd(ctx, word, domain.Record{}, h.translate)
	if err != nil {
		h.logger.Error("Failed to add word",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("word", word),
		)
		return c.Send("Could not save the word. Please try again.")
	}

	if !added {
		return c.Send("Already in your list:\n\n" + formatRecord(rec))
	}

	h.logger.Info("Word added via bot",
		zap.Int64("user_id", userID),
		zap.String("word", rec.Word),
	)
	return c.Send("✅ Saved!\n\n" + formatRecord(rec) + "\n\nSend the next word or go back to /start")
}

// handleSchedule handles /schedule <word> <days>
func (h *Handler) handleSchedule(c tele.Context) error {
	word, days, err := parseScheduleArgs(c.Message().Payload)
	if err != nil {
		return c.Send("Usage: /schedule <word> <days>")
	}
	return h.scheduleWord(c, word, days)
}

func (h *Handler) scheduleWord(c tele.Context, word string, days int) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	found, err := h.reviewService.ScheduleNext(ctx, word, days)
	if err != nil {
		h.logger.Error("Failed to schedule review",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("word", word),
		)
		return c.Send(msgError)
	}

	h.ResetState(userID)

	if !found {
		return c.Send(fmt.Sprintf("%q is not in your list", word))
	}

	next := domain.CivilDate(h.now()).AddDate(0, 0, days)
	return c.Send(fmt.Sprintf("📅 %s: next review %s", word, domain.FormatDate(next)), mainMenuMarkup())
}

// parseScheduleArgs splits "<word...> <days>"; the word may contain spaces
func parseScheduleArgs(payload string) (string, int, error) {
	fields := strings.Fields(payload)
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("expected word and days")
	}

	days, err := parseDays(fields[len(fields)-1])
	if err != nil {
		return "", 0, err
	}
	return strings.Join(fields[:len(fields)-1], " "), days, nil
}

func parseDays(s string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid days: %w", err)
	}
	if days < 0 {
		return 0, fmt.Errorf("days must be non-negative")
	}
	return days, nil
}

// formatRecord renders a record for a chat message
func formatRecord(rec domain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 %s", rec.Word)
	if rec.POS != "" {
		fmt.Fprintf(&b, " (%s)", rec.POS)
	}
	if rec.Meaning != "" {
		fmt.Fprintf(&b, "\n🔄 %s", rec.Meaning)
	}
	if rec.Example != "" {
		fmt.Fprintf(&b, "\n💬 %s", rec.Example)
	}
	if len(rec.Synonyms) > 0 {
		fmt.Fprintf(&b, "\n🔗 %s", rec.SynonymsString())
	}
	return b.String()
}
