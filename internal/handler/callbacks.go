package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"vocabsheet/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// maxDueShown limits the due list to what fits one message
const maxDueShown = 10

// maxCallbackData is Telegram's limit on callback data, in bytes
const maxCallbackData = 64

var scheduleChoices = []int{1, 3, 7, 14}

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// reply edits the message behind a callback, or sends a new one for commands
func (h *Handler) reply(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() != nil {
		if err := c.Edit(text, markup); err != nil {
			if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
				return nil
			}
			return c.Send(text, markup)
		}
		return c.Respond()
	}
	return c.Send(text, markup)
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Info("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Handle specific button callbacks by Unique first
	switch callback.Unique {
	case "add_word":
		return h.handleAddWordButton(c)
	case "due", "back_to_due":
		return h.handleDue(c)
	case "stats":
		return h.handleStats(c)
	case "cancel":
		return h.handleCancel(c)
	case "back", "main_menu":
		return h.handleStart(c)
	}

	// Handle by Data prefix (dynamic buttons)
	switch {
	case strings.HasPrefix(data, "word_"):
		return h.handleWordSelection(c, strings.TrimPrefix(data, "word_"))
	case strings.HasPrefix(data, "days_"):
		return h.handleDaysSelection(c, strings.TrimPrefix(data, "days_"))
	}

	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleDue lists the words due for review today
func (h *Handler) handleDue(c tele.Context) error {
	userID := c.Sender().ID

	lock := h.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := requestContext()
	defer cancel()

	now := h.now()
	due, err := h.reviewService.DueReviews(ctx, now)
	if err != nil {
		h.logger.Error("Failed to load due reviews", zap.Error(err), zap.Int64("user_id", userID))
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Failed to load reviews"})
		}
		return c.Send(msgError)
	}

	if len(due) == 0 {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{
				Text:      "Nothing to review today 🎉",
				ShowAlert: true,
			})
		}
		return c.Send("Nothing to review today 🎉", mainMenuMarkup())
	}

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for i, rec := range due {
		if i == maxDueShown {
			break
		}
		if data, ok := wordCallbackData(rec.Word); ok {
			rows = append(rows, markup.Row(markup.Data(rec.Word, data)))
		}
	}
	rows = append(rows, markup.Row(btnBack))
	markup.Inline(rows...)

	return h.reply(c, formatDueList(due, now), markup)
}

// handleWordSelection shows a due word and asks when to review it next
func (h *Handler) handleWordSelection(c tele.Context, word string) error {
	userID := c.Sender().ID

	h.SetState(userID, &domain.StateData{
		State:       domain.StateWaitingDays,
		CurrentWord: word,
	})

	markup := &tele.ReplyMarkup{}
	choices := tele.Row{}
	for _, d := range scheduleChoices {
		choices = append(choices, markup.Data(fmt.Sprintf("+%dd", d), fmt.Sprintf("days_%d", d)))
	}
	markup.Inline(
		choices,
		markup.Row(btnBackToDue, btnCancel),
	)

	text := fmt.Sprintf("📝 %s\n\nWhen should it come back? Pick a button or send a number of days.", word)
	return h.reply(c, text, markup)
}

// handleDaysSelection schedules the selected word
func (h *Handler) handleDaysSelection(c tele.Context, daysStr string) error {
	userID := c.Sender().ID

	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid choice"})
	}

	state := h.GetState(userID)
	if state.State != domain.StateWaitingDays || state.CurrentWord == "" {
		return c.Respond(&tele.CallbackResponse{Text: "Pick a word first"})
	}

	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}
	return h.scheduleWord(c, state.CurrentWord, days)
}

// handleStats shows table counters
func (h *Handler) handleStats(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	stats, err := h.statsService.Summary(ctx)
	if err != nil {
		h.logger.Error("Failed to load stats", zap.Error(err))
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Failed to load stats"})
		}
		return c.Send(msgError)
	}

	text := fmt.Sprintf("📊 Words: %d\n📚 Due: %d (overdue: %d)\n❔ No review date: %d",
		stats.Total, stats.Due, stats.Overdue, stats.Undated)

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnBack))
	return h.reply(c, text, markup)
}

// handleCancel cancels current operation and resets state
func (h *Handler) handleCancel(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.reply(c, msgMainMenu, mainMenuMarkup())
}

// wordCallbackData builds the callback data for a word button; words too
// long for Telegram's limit get no button.
func wordCallbackData(word string) (string, bool) {
	data := "word_" + word
	// telebot prefixes button data with a one-byte marker
	if len(data)+1 > maxCallbackData {
		return "", false
	}
	return data, true
}

// formatDueList renders due records, oldest first as stored
func formatDueList(due []domain.Record, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 Due for review (%d):\n", len(due))

	for i, rec := range due {
		if i == maxDueShown {
			fmt.Fprintf(&b, "\n…and %d more", len(due)-maxDueShown)
			break
		}

		label := rec.ReviewDate
		if date, err := domain.ParseDate(rec.ReviewDate); err == nil {
			label = domain.DueLabel(date, now)
		}

		fmt.Fprintf(&b, "\n%d. %s", i+1, rec.Word)
		if rec.Meaning != "" {
			fmt.Fprintf(&b, " - %s", rec.Meaning)
		}
		fmt.Fprintf(&b, " (%s)", label)
	}
	return b.String()
}
