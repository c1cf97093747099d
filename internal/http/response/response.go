package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeValidation       = "validation_failed"
	CodePredictionFailed = "prediction_failed"
	CodeBadRequest       = "bad_request"
	CodeModelUnavailable = "model_unavailable"
)

type APIError struct {
	Message  string            `json:"message"`
	Code     string            `json:"code,omitempty"`
	Messages []string          `json:"messages,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondValidation writes a 422 listing the user-facing messages and the
// offending fields.
func RespondValidation(c *gin.Context, messages []string, fields map[string]string) {
	msg := "invalid submission"
	if len(messages) > 0 {
		msg = messages[0]
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorEnvelope{
		Error: APIError{
			Message:  msg,
			Code:     CodeValidation,
			Messages: messages,
			Fields:   fields,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
