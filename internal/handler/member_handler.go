package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"safe-return-server/internal/model"
	"safe-return-server/internal/model/requestresponse"
	"safe-return-server/internal/ports"
	"safe-return-server/internal/service"
	"strconv"
	"time"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type MemberHandler struct {
	memberService ports.MemberService
	presignTTL    time.Duration
}

func NewMemberHandler(memberService ports.MemberService, presignTTL time.Duration) *MemberHandler {
	return &MemberHandler{memberService: memberService, presignTTL: presignTTL}
}

// SignUp godoc
// @Summary Регистрация участника
// @Tags Members
// @Accept json
// @Produce json
// @Param body body requestresponse.SignUpRequest true "Тело запроса"
// @Success 201 {object} requestresponse.MemberResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /members [post]
func (h *MemberHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный JSON")
		return
	}

	member, err := h.memberService.SignUp(r.Context(), req.ID, req.Password, req.Name, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			sendErrorResponse(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, model.ErrAlreadyExists):
			sendErrorResponse(w, http.StatusConflict, "логин уже занят")
		default:
			log.Printf("[MemberHandler] %v", err)
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusCreated, requestresponse.MemberResponseFromModel(member))
}

// GetMe godoc
// @Summary Профиль текущего участника
// @Tags Members
// @Produce json
// @Param Authorization header string true "Bearer <access>"
// @Success 200 {object} requestresponse.MemberResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /members/me [get]
func (h *MemberHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberService.GetMe(r.Context())
	if err != nil {
		h.handleMemberError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.MemberResponseFromModel(member))
}

// ProfileImageUploadURL godoc
// @Summary Ссылка для загрузки изображения профиля
// @Tags Members
// @Produce json
// @Param Authorization header string true "Bearer <access>"
// @Success 200 {object} requestresponse.ProfileImageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /members/me/profile-image [post]
func (h *MemberHandler) ProfileImageUploadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.memberService.ProfileImageUploadURL(r.Context())
	if err != nil {
		h.handleMemberError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.ProfileImageResponse{URL: url, ExpiresIn: int(h.presignTTL.Seconds())})
}

// ProfileImageURL godoc
// @Summary Ссылка на изображение профиля
// @Tags Members
// @Produce json
// @Param Authorization header string true "Bearer <access>"
// @Success 200 {object} requestresponse.ProfileImageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /members/me/profile-image [get]
func (h *MemberHandler) ProfileImageURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.memberService.ProfileImageURL(r.Context())
	if err != nil {
		h.handleMemberError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.ProfileImageResponse{URL: url, ExpiresIn: int(h.presignTTL.Seconds())})
}

// ListMembers godoc
// @Summary Список участников
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Bearer <access>"
// @Param cursor query string false "Курсор следующей страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} requestresponse.ListMembersResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/members [get]
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			sendErrorResponse(w, http.StatusBadRequest, "некорректный limit")
			return
		}
		limit = min(parsed, maxListLimit)
	}

	members, nextCursor, err := h.memberService.ListMembers(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		log.Printf("[MemberHandler] %v", err)
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	var resp requestresponse.ListMembersResponse
	resp.Data.Members = make([]requestresponse.MemberResponse, 0, len(members))
	for _, member := range members {
		resp.Data.Members = append(resp.Data.Members, requestresponse.MemberResponseFromModel(member))
	}
	resp.Data.NextCursor = nextCursor

	writeJSON(w, http.StatusOK, resp)
}

func (h *MemberHandler) handleMemberError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		sendErrorResponse(w, http.StatusNotFound, "не найдено")
	default:
		log.Printf("[MemberHandler] %v", err)
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
