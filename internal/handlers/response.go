package handlers

import (
	"log"

	"storefront/internal/apperr"

	"github.com/gin-gonic/gin"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Object  any      `json:"object,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, object any) {
	c.JSON(status, envelope{Success: true, Message: message, Object: object})
}

// respondError writes err as a failure envelope. Internal errors are logged
// and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
	}
	c.AbortWithStatusJSON(e.Kind.Status(), envelope{
		Success: false,
		Message: e.Message,
		Errors:  e.Fields,
	})
}
