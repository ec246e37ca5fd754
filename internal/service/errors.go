package service

import (
	"net/http"

	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// ToErrorResponse renders any error as the public error body
func ToErrorResponse(err error) *models.ErrorResponse {
	appErr := mapError(err)
	return &models.ErrorResponse{
		Error:   http.StatusText(appErr.StatusCode),
		Message: appErr.Message,
		Type:    string(appErr.Type),
	}
}

// StatusCode is the HTTP status matching err after mapping
func StatusCode(err error) int {
	return apperrors.GetStatusCode(mapError(err))
}
