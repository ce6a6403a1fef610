package handler

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"users-api/internal/usecase/user"
	pkgerrors "users-api/pkg/errors"
)

// Media types accepted by PATCH
const (
	MIMEJSONPatch  = "application/json-patch+json"
	MIMEMergePatch = "application/merge-patch+json"
)

// PaginationHeader is the response header carrying list metadata
const PaginationHeader = "X-Pagination"

// AllowedCollectionMethods is advertised by OPTIONS on the collection
const AllowedCollectionMethods = "GET, POST, OPTIONS"

// UsersPath is the collection path used in Location headers and page links
const UsersPath = "/api/users"

var offered = []string{binding.MIMEJSON, binding.MIMEXML}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Service
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	XMLName       xml.Name   `json:"-" xml:"user"`
	ID            uuid.UUID  `json:"id" xml:"id"`
	Login         string     `json:"login" xml:"login"`
	FullName      string     `json:"fullName" xml:"fullName"`
	GamesPlayed   int        `json:"gamesPlayed" xml:"gamesPlayed"`
	CurrentGameID *uuid.UUID `json:"currentGameId" xml:"currentGameId,omitempty"`
}

// UserListResponse is the XML envelope for a page of users; JSON clients get a bare array
type UserListResponse struct {
	XMLName xml.Name       `xml:"users"`
	Users   []UserResponse `xml:"user"`
}

// IDResponse is the XML form of a created user's ID; JSON clients get a bare string
type IDResponse struct {
	XMLName xml.Name  `xml:"id"`
	ID      uuid.UUID `xml:",chardata"`
}

// Pagination is the JSON document sent in the X-Pagination header
type Pagination struct {
	PreviousPageLink *string `json:"previousPageLink"`
	NextPageLink     *string `json:"nextPageLink"`
	TotalCount       int64   `json:"totalCount"`
	PageSize         int     `json:"pageSize"`
	CurrentPage      int     `json:"currentPage"`
	TotalPages       int     `json:"totalPages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// GetUser handles GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := parseID(c)

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	dto := toResponse(resp)
	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  offered,
		JSONData: dto,
		XMLData:  dto,
	})
}

// HeadUser handles HEAD /api/users/:id
func (h *UserHandler) HeadUser(c *gin.Context) {
	id := parseID(c)

	if _, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id}); err != nil {
		var notFound *pkgerrors.NotFoundError
		if errors.As(err, &notFound) {
			c.Status(http.StatusNotFound)
			return
		}
		h.log.Error("Gin HeadUser failed", zap.Stringer("id", id), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	payload, ok := h.bindFields(c)
	if !ok {
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), payload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.created(c, resp.ID)
}

// ReplaceUser handles PUT /api/users/:id
func (h *UserHandler) ReplaceUser(c *gin.Context) {
	id := parseID(c)

	payload, ok := h.bindFields(c)
	if !ok {
		return
	}

	resp, err := h.uc.ReplaceUser(c.Request.Context(), user.ReplaceUserRequest{ID: id, User: payload})
	if err != nil {
		h.handleError(c, err)
		return
	}

	if resp.Created {
		h.created(c, resp.ID)
		return
	}
	c.Status(http.StatusNoContent)
}

// PatchUser handles PATCH /api/users/:id
func (h *UserHandler) PatchUser(c *gin.Context) {
	id := parseID(c)

	contentType := c.ContentType()
	var decode func([]byte) (user.Patch, error)
	switch contentType {
	case MIMEJSONPatch, binding.MIMEJSON:
		decode = user.NewJSONPatch
	case MIMEMergePatch:
		decode = user.NewMergePatch
	default:
		h.unsupportedMediaType(c, contentType)
		return
	}

	raw, ok := h.readBody(c)
	if !ok {
		return
	}

	var patch user.Patch
	if !isNull(raw) {
		p, err := decode(raw)
		if err != nil {
			h.log.Warn("Invalid patch document", zap.Stringer("id", id), zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_body",
				Message: err.Error(),
			})
			return
		}
		patch = p
	}

	if err := h.uc.PatchUser(c.Request.Context(), user.PatchUserRequest{ID: id, Patch: patch}); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := parseID(c)

	if err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id}); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	pageNumber := queryInt(c, "pageNumber", 1)
	pageSize := queryInt(c, "pageSize", user.DefaultPageSize)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		PageNumber: pageNumber,
		PageSize:   pageSize,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i := range resp.Users {
		users[i] = toResponse(&resp.Users[i])
	}

	header, err := json.Marshal(h.pagination(c, resp.Pagination))
	if err != nil {
		h.handleError(c, pkgerrors.NewInternalError("failed to encode pagination", err))
		return
	}
	c.Header(PaginationHeader, string(header))

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  offered,
		JSONData: users,
		XMLData:  UserListResponse{Users: users},
	})
}

// Options handles OPTIONS /api/users
func (h *UserHandler) Options(c *gin.Context) {
	c.Header("Allow", AllowedCollectionMethods)
	c.Status(http.StatusOK)
}

// created writes 201 with the new resource's Location and its ID as the body
func (h *UserHandler) created(c *gin.Context, id uuid.UUID) {
	c.Header("Location", fmt.Sprintf("%s/%s", UsersPath, id))
	c.Negotiate(http.StatusCreated, gin.Negotiate{
		Offered:  offered,
		JSONData: id,
		XMLData:  IDResponse{ID: id},
	})
}

// bindFields decodes a JSON user payload; a literal null decodes to nil
func (h *UserHandler) bindFields(c *gin.Context) (*user.UserFields, bool) {
	if contentType := c.ContentType(); !isJSON(contentType) {
		h.unsupportedMediaType(c, contentType)
		return nil, false
	}

	raw, ok := h.readBody(c)
	if !ok {
		return nil, false
	}

	var payload *user.UserFields
	if err := json.Unmarshal(raw, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			h.handleError(c, pkgerrors.NewValidationError(typeErr.Field, typeErr.Field+" has an invalid type"))
			return nil, false
		}
		h.log.Warn("Invalid user payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: err.Error(),
		})
		return nil, false
	}
	return payload, true
}

func (h *UserHandler) readBody(c *gin.Context) ([]byte, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		h.log.Warn("Failed to read request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: "failed to read request body",
		})
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: "request body is required",
		})
		return nil, false
	}
	return raw, true
}

func (h *UserHandler) unsupportedMediaType(c *gin.Context, contentType string) {
	h.log.Warn("Unsupported media type", zap.String("content_type", contentType), zap.String("method", c.Request.Method))
	c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{
		Error:   "unsupported_media_type",
		Message: fmt.Sprintf("content type %q is not supported", contentType),
	})
}

// pagination builds the X-Pagination document with absolute page links
func (h *UserHandler) pagination(c *gin.Context, p *user.Pagination) Pagination {
	out := Pagination{
		TotalCount:  p.TotalCount,
		PageSize:    p.PageSize,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
	}
	if p.HasPrevious {
		link := pageLink(c, p.CurrentPage-1, p.PageSize)
		out.PreviousPageLink = &link
	}
	if p.HasNext {
		link := pageLink(c, p.CurrentPage+1, p.PageSize)
		out.NextPageLink = &link
	}
	return out
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var (
		validationErr *pkgerrors.ValidationError
		badRequestErr *pkgerrors.BadRequestError
		notFoundErr   *pkgerrors.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Error(),
			Errors:  validationErr.Fields,
		})
	case errors.As(err, &badRequestErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: badRequestErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})
	default:
		h.log.Error("Gin request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func toResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Login:         u.Login,
		FullName:      u.FullName,
		GamesPlayed:   u.GamesPlayed,
		CurrentGameID: u.CurrentGameID,
	}
}

// parseID reads the :id path parameter; anything unparsable is the empty ID
func parseID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func pageLink(c *gin.Context, pageNumber, pageSize int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s?pageNumber=%d&pageSize=%d", scheme, c.Request.Host, UsersPath, pageNumber, pageSize)
}

func isJSON(contentType string) bool {
	return contentType == binding.MIMEJSON || strings.HasSuffix(contentType, "+json")
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
