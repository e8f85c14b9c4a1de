package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type errorItem struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

type errorResponse struct {
	Status bool        `json:"status"`
	Errors []errorItem `json:"errors"`
}

// fieldMessage is the client-facing name and message for one request field.
type fieldMessage struct {
	param string
	msg   string
}

func badRequest(c *gin.Context, items ...errorItem) {
	c.JSON(http.StatusBadRequest, errorResponse{Status: false, Errors: items})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, errorResponse{
		Status: false,
		Errors: []errorItem{{Msg: errInternalServer}},
	})
}

// bindingErrors itemizes a ShouldBind error, one entry per failing field
// keyed by its Go field name in fields. Anything that is not a validation
// error (malformed JSON, wrong types) becomes a single generic item.
func bindingErrors(err error, fields map[string]fieldMessage) []errorItem {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []errorItem{{Msg: errInvalidBody}}
	}

	items := make([]errorItem, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true

		fm, ok := fields[fe.Field()]
		if !ok {
			fm = fieldMessage{param: fe.Field(), msg: "Invalid value"}
		}
		items = append(items, errorItem{Msg: fm.msg, Param: fm.param, Location: "body"})
	}
	return items
}
