package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/mem"
	"go.uber.org/zap"

	"hitbuilder/internal/server/core/application"
	"hitbuilder/internal/server/core/model"
)

type handler struct {
	service HitService
	logger  zap.SugaredLogger
}

type hitRequest struct {
	Hit string `json:"hit"`
}

type parameterRequest struct {
	Name string `json:"name"`
}

type patchRequest struct {
	Name  *string `json:"name"`  // новое имя, игнорируется для обязательных параметров
	Value *string `json:"value"` // новое значение
}

type healthResponse struct {
	Store  string  `json:"store"`
	Memory *memory `json:"memory,omitempty"`
}

type memory struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"usedPercent"`
}

// createFromQuery создает сессию из строки запроса и перенаправляет на нее,
// чтобы адрес страницы больше не содержал исходный хит.
func (h *handler) createFromQuery(ginCtx *gin.Context) {
	snapshot, err := h.service.CreateHit(ginCtx.Request.Context(), ginCtx.Request.URL.RawQuery)
	if err != nil {
		h.fail(ginCtx, err)
		return
	}

	ginCtx.Redirect(http.StatusSeeOther, "/hits/"+snapshot.ID)
}

func (h *handler) create(ginCtx *gin.Context) {
	var request hitRequest
	if !h.bindOptional(ginCtx, &request) {
		return
	}

	snapshot, err := h.service.CreateHit(ginCtx.Request.Context(), request.Hit)
	if err != nil {
		h.fail(ginCtx, err)
		return
	}

	ginCtx.Header("Location", "/hits/"+snapshot.ID)
	ginCtx.JSON(http.StatusCreated, snapshot)
}

func (h *handler) get(ginCtx *gin.Context) {
	snapshot, err := h.service.GetHit(ginCtx.Request.Context(), ginCtx.Param("id"))
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) delete(ginCtx *gin.Context) {
	err := h.service.DeleteHit(ginCtx.Request.Context(), ginCtx.Param("id"))
	if err != nil {
		h.fail(ginCtx, err)
		return
	}

	ginCtx.Status(http.StatusNoContent)
}

func (h *handler) replacePayload(ginCtx *gin.Context) {
	var request hitRequest

	err := ginCtx.ShouldBindJSON(&request)
	if err != nil {
		h.badRequest(ginCtx, err)
		return
	}

	snapshot, err := h.service.ReplacePayload(ginCtx.Request.Context(), ginCtx.Param("id"), request.Hit)
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) addParameter(ginCtx *gin.Context) {
	var request parameterRequest
	if !h.bindOptional(ginCtx, &request) {
		return
	}

	snapshot, err := h.service.AddParameter(ginCtx.Request.Context(), ginCtx.Param("id"), request.Name)
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) updateParameter(ginCtx *gin.Context) {
	paramID, ok := h.paramID(ginCtx)
	if !ok {
		return
	}

	var request patchRequest

	err := ginCtx.ShouldBindJSON(&request)
	if err != nil {
		h.badRequest(ginCtx, err)
		return
	}

	snapshot, err := h.service.UpdateParameter(ginCtx.Request.Context(), ginCtx.Param("id"), paramID,
		model.Patch{Name: request.Name, Value: request.Value})
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) removeParameter(ginCtx *gin.Context) {
	paramID, ok := h.paramID(ginCtx)
	if !ok {
		return
	}

	snapshot, err := h.service.RemoveParameter(ginCtx.Request.Context(), ginCtx.Param("id"), paramID)
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) generateClientID(ginCtx *gin.Context) {
	snapshot, err := h.service.GenerateClientID(ginCtx.Request.Context(), ginCtx.Param("id"))
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) validate(ginCtx *gin.Context) {
	snapshot, err := h.service.ValidateHit(ginCtx.Request.Context(), ginCtx.Param("id"))
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) send(ginCtx *gin.Context) {
	snapshot, err := h.service.SendHit(ginCtx.Request.Context(), ginCtx.Param("id"))
	h.respond(ginCtx, snapshot, err)
}

func (h *handler) hitTypes(ginCtx *gin.Context) {
	ginCtx.JSON(http.StatusOK, h.service.HitTypes())
}

func (h *handler) properties(ginCtx *gin.Context) {
	token, ok := strings.CutPrefix(ginCtx.GetHeader("Authorization"), "Bearer ")
	if !ok {
		token = ""
	}

	properties, err := h.service.Properties(ginCtx.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		h.fail(ginCtx, err)
		return
	}

	ginCtx.JSON(http.StatusOK, properties)
}

func (h *handler) ping(ginCtx *gin.Context) {
	err := h.service.Ping(ginCtx.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to ping store", "error", err)
		ginCtx.Status(http.StatusInternalServerError)
		return
	}

	ginCtx.Status(http.StatusOK)
}

func (h *handler) health(ginCtx *gin.Context) {
	response := healthResponse{Store: "ok"}
	status := http.StatusOK

	err := h.service.Ping(ginCtx.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to ping store", "error", err)
		response.Store = "unavailable"
		status = http.StatusServiceUnavailable
	}

	vm, err := mem.VirtualMemoryWithContext(ginCtx.Request.Context())
	if err != nil {
		h.logger.Warnw("failed to read host memory", "error", err)
	} else {
		response.Memory = &memory{
			Total:       vm.Total,
			Available:   vm.Available,
			UsedPercent: vm.UsedPercent,
		}
	}

	ginCtx.JSON(status, response)
}

func (h *handler) bindOptional(ginCtx *gin.Context, obj any) bool {
	if ginCtx.Request.ContentLength == 0 {
		return true
	}

	err := ginCtx.ShouldBindJSON(obj)
	if err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(ginCtx, err)
		return false
	}

	return true
}

func (h *handler) paramID(ginCtx *gin.Context) (int64, bool) {
	paramID, err := strconv.ParseInt(ginCtx.Param("pid"), 10, 64)
	if err != nil {
		h.badRequest(ginCtx, err)
		return 0, false
	}

	return paramID, true
}

func (h *handler) respond(ginCtx *gin.Context, snapshot model.Snapshot, err error) {
	if err != nil {
		h.fail(ginCtx, err)
		return
	}

	ginCtx.JSON(http.StatusOK, snapshot)
}

func (h *handler) badRequest(ginCtx *gin.Context, err error) {
	h.logger.Infow("bad request", "uri", ginCtx.Request.RequestURI, "error", err)
	ginCtx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *handler) fail(ginCtx *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("request failed", "uri", ginCtx.Request.RequestURI, "error", err)
	}

	ginCtx.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
