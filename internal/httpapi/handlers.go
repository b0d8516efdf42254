package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pathakanu/reminderbot/internal/datetime"
	"github.com/pathakanu/reminderbot/internal/model"
	"github.com/pathakanu/reminderbot/internal/store"
)

type createReminderRequest struct {
	Text       string `json:"text" binding:"required"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Recurrence string `json:"recurrence"`
	Priority   string `json:"priority"`
	UserID     string `json:"userId" binding:"required"`
}

type updateReminderRequest struct {
	Text       *string `json:"text"`
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	Recurrence *string `json:"recurrence"`
	Priority   *string `json:"priority"`
}

type snoozeRequest struct {
	Minutes int `json:"minutes" binding:"required,min=-525600,max=525600"`
}

func (s *server) createReminder(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	reminder := &model.Reminder{
		Text:       strings.TrimSpace(req.Text),
		Date:       s.dates.Resolve(req.Date, req.Time),
		Recurrence: datetime.ParseRecurrence(req.Recurrence),
		Priority:   strings.ToLower(strings.TrimSpace(req.Priority)),
		UserID:     req.UserID,
	}
	if err := s.store.Create(c.Request.Context(), reminder); err != nil {
		s.logger.Printf("http: create reminder: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reminder"})
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (s *server) listReminders(c *gin.Context) {
	reminders, err := s.store.ListActive(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.logger.Printf("http: list reminders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reminders"})
		return
	}
	c.JSON(http.StatusOK, nonNil(reminders))
}

func (s *server) listHistory(c *gin.Context) {
	reminders, err := s.store.ListCompleted(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.logger.Printf("http: list history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get completed reminders"})
		return
	}
	c.JSON(http.StatusOK, nonNil(reminders))
}

func (s *server) updateReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	var req updateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var patch model.ReminderPatch
	if req.Text != nil && strings.TrimSpace(*req.Text) != "" {
		text := strings.TrimSpace(*req.Text)
		patch.Text = &text
	}
	if req.Date != nil || req.Time != nil {
		date := s.dates.Resolve(deref(req.Date), deref(req.Time))
		patch.Date = &date
	}
	if req.Recurrence != nil {
		recurrence := datetime.ParseRecurrence(*req.Recurrence)
		patch.Recurrence = &recurrence
	}
	if req.Priority != nil && strings.TrimSpace(*req.Priority) != "" {
		priority := strings.ToLower(strings.TrimSpace(*req.Priority))
		patch.Priority = &priority
	}

	reminder, err := s.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.storeError(c, "update reminder", "Failed to update reminder", err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (s *server) deleteReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, "delete reminder", "Failed to delete reminder", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) snoozeReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	var req snoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	reminder, err := s.store.Snooze(c.Request.Context(), id, req.Minutes)
	if err != nil {
		s.storeError(c, "snooze reminder", "Failed to snooze reminder", err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (s *server) completeReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	reminder, err := s.store.Complete(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "complete reminder", "Failed to complete reminder", err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (s *server) webhook(c *gin.Context) {
	body, _ := c.GetRawData()
	s.logger.Printf("http: webhook received: %s", body)
	c.String(http.StatusOK, "Webhook received")
}

func (s *server) storeError(c *gin.Context, op, message string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}
	s.logger.Printf("http: %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func reminderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder id"})
		return 0, false
	}
	return uint(id), true
}

func nonNil(reminders []model.Reminder) []model.Reminder {
	if reminders == nil {
		return []model.Reminder{}
	}
	return reminders
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
