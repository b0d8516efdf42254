package httpapi

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pathakanu/reminderbot/internal/datetime"
	"github.com/pathakanu/reminderbot/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReminderStore is the persistence the HTTP layer exposes.
type ReminderStore interface {
	Create(ctx context.Context, r *model.Reminder) error
	ListActive(ctx context.Context, userID string) ([]model.Reminder, error)
	ListCompleted(ctx context.Context, userID string) ([]model.Reminder, error)
	Update(ctx context.Context, id uint, patch model.ReminderPatch) (*model.Reminder, error)
	Delete(ctx context.Context, id uint) error
	Snooze(ctx context.Context, id uint, minutes int) (*model.Reminder, error)
	Complete(ctx context.Context, id uint) (*model.Reminder, error)
}

// CommandHandler runs a chat command and sends the reply.
type CommandHandler interface {
	HandleCommand(ctx context.Context, text, userID string) error
}

// SignatureVerifier checks Twilio webhook signatures.
type SignatureVerifier interface {
	ValidSignature(fullURL string, form url.Values, signature string) bool
}

// TwilioWebhook wires the optional WhatsApp channel.
type TwilioWebhook struct {
	Verifier SignatureVerifier
	Handler  CommandHandler
	// PublicURL is the externally visible webhook URL Twilio signs. When
	// empty it is rebuilt from the request.
	PublicURL string
}

// Options configures the router.
type Options struct {
	Store       ReminderStore
	Dates       *datetime.Normalizer
	Logger      *log.Logger
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Twilio      *TwilioWebhook
}

type server struct {
	store  ReminderStore
	dates  *datetime.Normalizer
	logger *log.Logger
	twilio *TwilioWebhook
}

// NewRouter builds the HTTP routes around the reminder store.
func NewRouter(opts Options) *gin.Engine {
	s := &server{
		store:  opts.Store,
		dates:  opts.Dates,
		logger: opts.Logger,
		twilio: opts.Twilio,
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(opts.Logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	router.POST("/webhook", s.webhook)
	if s.twilio != nil {
		router.POST("/twilio/webhook", s.twilioWebhook)
	}

	reminders := router.Group("/reminders")
	reminders.POST("", s.createReminder)
	reminders.GET("/:userId", s.listReminders)
	reminders.GET("/:userId/history", s.listHistory)
	reminders.PATCH("/:id", s.updateReminder)
	reminders.DELETE("/:id", s.deleteReminder)
	reminders.POST("/:id/snooze", s.snoozeReminder)
	reminders.POST("/:id/complete", s.completeReminder)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
