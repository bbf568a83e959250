package session

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// flashCookie holds the one-shot notification for the next rendered page
const flashCookie = "crm_flash"

// Flash is a one-shot user-visible message with a display category
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"` // "success", "error", "info"
}

// SetFlash queues a flash message for the next page
func SetFlash(c *gin.Context, message, category string) {
	payload, err := json.Marshal(Flash{Message: message, Category: category})
	if err != nil {
		return
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	c.SetCookie(flashCookie, encoded, 300, "/", "", false, true)
}

// PopFlash consumes and returns the pending flash message, if any
func PopFlash(c *gin.Context) *Flash {
	encoded, err := c.Cookie(flashCookie)
	if err != nil || encoded == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil
	}
	return &f
}
