package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"knowledgebase/internal/domain"
	"knowledgebase/pkg/auth"
)

// Gin context keys shared with the server middleware.
const (
	CtxKeyUserID = "user_id"
	CtxKeyRoles  = "roles"
	CtxKeyClaims = "claims"
)

// Response is the uniform HTTP response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OK writes a 200 response with the given payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "ok", Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail maps a domain error onto the HTTP status taxonomy and writes the
// envelope. Unknown errors become opaque 500s.
func Fail(c *gin.Context, err error) {
	status, message := classify(err)
	c.JSON(status, Response{Code: status, Message: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrAnnouncementNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrCategoryInUse),
		errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(CtxKeyUserID)
}

// Actor returns the authenticated principal as a minimal domain user carrying
// the id and roles from the token, or nil for anonymous requests.
func Actor(c *gin.Context) *domain.User {
	claims, ok := c.Get(CtxKeyClaims)
	if !ok {
		return nil
	}
	cl, ok := claims.(*auth.Claims)
	if !ok {
		return nil
	}
	return &domain.User{ID: cl.UserID, Roles: cl.Roles}
}
