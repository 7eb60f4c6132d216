package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/purchase-request-api/internal/service"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
	"github.com/noah-isme/purchase-request-api/pkg/response"
)

const (
	actorHeader  = "X-Actor"
	defaultActor = "operator"
)

// actorFromContext names who triggered the request for audit entries.
func actorFromContext(c *gin.Context) string {
	if actor := strings.TrimSpace(c.GetHeader(actorHeader)); actor != "" {
		return actor
	}
	return defaultActor
}

func int64Param(c *gin.Context, name string) (int64, error) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return value, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return value, nil
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

// respondError attaches structured detail for confirmation prompts and row errors.
func respondError(c *gin.Context, err error) {
	var confirmErr *service.ConfirmationError
	if errors.As(err, &confirmErr) {
		response.Error(c, err, map[string]interface{}{"confirmation": confirmErr.Prompt})
		return
	}
	var draftErr *service.DraftValidationError
	if errors.As(err, &draftErr) {
		response.Error(c, err, map[string]interface{}{"rowErrors": draftErr.Rows})
		return
	}
	response.Error(c, err)
}

// bodyConfirmer answers the confirmation dialog with the flag sent by the client.
type bodyConfirmer bool

func (b bodyConfirmer) Confirm(ctx context.Context, message, title string) bool {
	return bool(b)
}
