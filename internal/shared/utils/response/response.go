// Package response defines the uniform JSON envelope every handler replies
// with, success and error alike.
package response

import "github.com/gin-gonic/gin"

// Envelope is the wire shape of every API reply. Data carries the payload
// on success; Errors carries validation or failure details.
type Envelope struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

// RespondJSON writes the envelope with the given HTTP status code. Status is
// "success" or "error".
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, Envelope{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
