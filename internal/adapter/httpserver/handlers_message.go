package httpserver

import (
	"net/http"

	apperrors "github.com/cleroux/pi-xmas-hat/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

const missingMessageBody = "Missing message"

func (s *Server) registerMessageRoutes(limiter echo.MiddlewareFunc) {
	s.echo.PUT("/message", s.handleSetMessage, limiter)
}

// handleSetMessage blocks until the message has finished scrolling.
func (s *Server) handleSetMessage(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return writeText(c, http.StatusBadRequest, missingMessageBody)
	}
	values, ok := form["message"]
	if !ok || len(values) == 0 {
		return writeText(c, http.StatusBadRequest, missingMessageBody)
	}

	if err := s.panel.ShowMessage(c.Request().Context(), values[0]); err != nil {
		return apperrors.DisplayError("failed to show message", err)
	}

	return writeText(c, http.StatusOK, okBody)
}
