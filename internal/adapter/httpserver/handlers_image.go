package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cleroux/pi-xmas-hat/internal/domain"
	apperrors "github.com/cleroux/pi-xmas-hat/internal/platform/errors"
	"github.com/cleroux/pi-xmas-hat/internal/render"
	"github.com/labstack/echo/v4"
)

const (
	invalidIDBody = "Invalid ID"
	okBody        = "OK"

	// presetExpires lets browsers treat preset renders as stale immediately.
	presetExpires = "Sun, 10 Jan 2021 00:00:00 GMT"
)

func (s *Server) registerImageRoutes(limiter echo.MiddlewareFunc) {
	s.echo.PUT("/image", s.handleSetImage, limiter)
	s.echo.GET("/image", s.handleGetImage)
	s.echo.GET("/image/:id", s.handleGetPreset)
}

func (s *Server) handleSetImage(c echo.Context) error {
	id, ok := parsePresetID(c.FormValue("image"))
	if !ok {
		return writeText(c, http.StatusBadRequest, invalidIDBody)
	}

	if err := s.panel.ShowPreset(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrInvalidPreset) {
			return writeText(c, http.StatusBadRequest, invalidIDBody)
		}
		return apperrors.DisplayError("failed to show preset", err).WithField("preset", id)
	}

	return writeText(c, http.StatusOK, okBody)
}

func (s *Server) handleGetImage(c echo.Context) error {
	svg, err := s.panel.CurrentSVG(c.Request().Context())
	if err != nil {
		return apperrors.DisplayError("failed to read display", err)
	}
	return writeSVG(c, svg)
}

func (s *Server) handleGetPreset(c echo.Context) error {
	id, ok := parsePresetID(c.Param("id"))
	if !ok {
		return writeText(c, http.StatusBadRequest, invalidIDBody)
	}

	svg, err := s.panel.PresetSVG(id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPreset) {
			return writeText(c, http.StatusBadRequest, invalidIDBody)
		}
		return apperrors.InternalError("failed to render preset", err).WithField("preset", id)
	}

	c.Response().Header().Set("Expires", presetExpires)
	return writeSVG(c, svg)
}

// parsePresetID accepts a decimal integer. Range checks belong to the catalog.
func parsePresetID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeText(c echo.Context, status int, body string) error {
	if err := c.String(status, body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func writeSVG(c echo.Context, svg string) error {
	if err := c.Blob(http.StatusOK, render.ContentType, []byte(svg)); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}
