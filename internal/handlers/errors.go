package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutralink/directory/internal/services"
	apperrors "github.com/nutralink/directory/pkg/errors"
	"github.com/nutralink/directory/pkg/logger"
	"github.com/nutralink/directory/pkg/response"
)

// mapServiceError translates service sentinels into API errors.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var inputErr *services.InputError
	if errors.As(err, &inputErr) {
		return apperrors.NewBadRequest(inputErr.Error())
	}

	switch {
	case errors.Is(err, services.ErrCompanyNotFound):
		return apperrors.NewNotFound("company")
	case errors.Is(err, services.ErrSavedCompanyNotFound):
		return apperrors.NewNotFound("saved company")
	case errors.Is(err, services.ErrTemplateNotFound):
		return apperrors.NewNotFound("email template")
	case errors.Is(err, services.ErrCompanySlugTaken),
		errors.Is(err, services.ErrCompanyAlreadySaved),
		errors.Is(err, services.ErrTemplateNameTaken):
		return apperrors.ErrConflict.WithMessage(err.Error())
	case errors.Is(err, services.ErrForbidden):
		return apperrors.ErrForbidden
	case errors.Is(err, services.ErrInvalidInput):
		return apperrors.NewBadRequest(err.Error())
	}
	return apperrors.ErrInternalServer.WithInternal(err)
}

// writeServiceError maps err and writes it, logging unexpected failures.
func writeServiceError(c *gin.Context, err error) {
	mapped := mapServiceError(err)
	if appErr := apperrors.FromError(mapped); appErr.StatusCode >= 500 {
		logger.WithModule("api").Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Error(c, mapped)
}

var errBadQuery = apperrors.NewBadRequest("q must be at most 500 characters")
