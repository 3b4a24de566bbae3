package handler

import (
	"context"
	"sync"
	"time"

	"vocabsheet/internal/domain"
	"vocabsheet/internal/middleware"
	"vocabsheet/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// requestTimeout bounds the remote work done for one update
const requestTimeout = 90 * time.Second

const (
	msgError    = "Something went wrong. Please try again later."
	msgMainMenu = "🏠 Main menu\n\nChoose an action:"
)

// Handler manages all bot interactions
type Handler struct {
	bot           *tele.Bot
	authService   *service.AuthService
	vocabService  *service.VocabService
	reviewService *service.ReviewService
	statsService  *service.StatsService
	translate     bool
	now           func() time.Time
	logger        *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex

	// Per-user locks so double-tapped buttons are handled one at a time
	callbackLocks map[int64]*sync.Mutex
	callbackMux   sync.Mutex
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	authService *service.AuthService,
	vocabService *service.VocabService,
	reviewService *service.ReviewService,
	statsService *service.StatsService,
	translate bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:           bot,
		authService:   authService,
		vocabService:  vocabService,
		reviewService: reviewService,
		statsService:  statsService,
		translate:     translate,
		now:           time.Now,
		logger:        logger,
		states:        make(map[int64]*domain.StateData),
		callbackLocks: make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Open to everyone: /start and plain text (password entry)
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle(tele.OnText, h.handleText)

	// Everything else requires an authorized user
	authed := h.bot.Group()
	authed.Use(middleware.AuthMiddleware(h.authService, h.logger))

	authed.Handle("/add", h.handleAdd)
	authed.Handle("/due", h.handleDue)
	authed.Handle("/schedule", h.handleSchedule)
	authed.Handle("/stats", h.handleStats)

	// Callback queries (inline buttons)
	authed.Handle(&btnAddWord, h.handleAddWordButton)
	authed.Handle(&btnDue, h.handleDue)
	authed.Handle(&btnStats, h.handleStats)
	authed.Handle(&btnCancel, h.handleCancel)
	authed.Handle(&btnBack, h.handleStart)
	authed.Handle(&btnBackToDue, h.handleDue)
	authed.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for dynamic data
	authed.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// userLock returns the per-user callback lock
func (h *Handler) userLock(userID int64) *sync.Mutex {
	h.callbackMux.Lock()
	defer h.callbackMux.Unlock()

	lock, exists := h.callbackLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		h.callbackLocks[userID] = lock
	}
	return lock
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// Inline keyboard buttons
var (
	btnAddWord = tele.Btn{
		Unique: "add_word",
		Text:   "➕ Add word",
	}
	btnDue = tele.Btn{
		Unique: "due",
		Text:   "📚 Due reviews",
	}
	btnStats = tele.Btn{
		Unique: "stats",
		Text:   "📊 Stats",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Cancel",
	}
	btnBack = tele.Btn{
		Unique: "back",
		Text:   "🏠 Back",
	}
	btnBackToDue = tele.Btn{
		Unique: "back_to_due",
		Text:   "◀️ Due list",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnAddWord),
		menu.Row(btnDue, btnStats),
	)
	return menu
}
