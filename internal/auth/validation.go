package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// bindCredentials decodes the JSON body and trims the email before the
// binding tags are checked, so padded addresses still validate.
func bindCredentials(c *gin.Context) (*CredentialsRequest, error) {
	if c.Request.Body == nil {
		return nil, io.EOF
	}

	var req CredentialsRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// bindingMessage turns a gin binding error into a client-facing message.
func bindingMessage(err error) string {
	if errors.Is(err, io.EOF) {
		return "request body is required"
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" should not be empty")
		case "email":
			msgs = append(msgs, field+" must be an email")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
