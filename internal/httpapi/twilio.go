package httpapi

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pathakanu/reminderbot/internal/twilio"
)

type twiml struct {
	XMLName xml.Name `xml:"Response"`
}

// twilioWebhook accepts inbound WhatsApp messages. The reply goes out through
// the Twilio REST sender, so the TwiML answer is always empty.
func (s *server) twilioWebhook(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		s.logger.Printf("twilio webhook: parse error: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	fullURL := s.twilio.PublicURL
	if fullURL == "" {
		fullURL = requestURL(c.Request)
	}
	if !s.twilio.Verifier.ValidSignature(fullURL, c.Request.PostForm, c.GetHeader(twilio.SignatureHeader)) {
		s.logger.Printf("twilio webhook: invalid signature for %s", fullURL)
		c.Status(http.StatusForbidden)
		return
	}

	from := twilio.SenderID(c.Request.PostForm.Get("From"))
	body := strings.TrimSpace(c.Request.PostForm.Get("Body"))
	if from != "" && body != "" {
		if err := s.twilio.Handler.HandleCommand(c.Request.Context(), body, from); err != nil {
			s.logger.Printf("twilio webhook: %v", err)
		}
	}

	c.XML(http.StatusOK, twiml{})
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
