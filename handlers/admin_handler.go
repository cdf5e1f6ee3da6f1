package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"imposter/models"
	"imposter/services"

	"github.com/gin-gonic/gin"
)

type SnapshotReader interface {
	Get(ctx context.Context, code string) (*models.Room, error)
}

type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.GameRecord, error)
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type RoomSummary struct {
	Code      string       `json:"code"`
	Phase     models.Phase `json:"phase"`
	Players   int          `json:"players"`
	Connected int          `json:"connected"`
	Host      string       `json:"host"`
	CreatedAt int64        `json:"created_at"`
}

// AdminHandler serves the read-only operator API. Snapshots and history are
// optional and answer 503 when their backend is not configured.
type AdminHandler struct {
	admin     *services.AdminService
	store     *services.RoomStore
	registry  services.ConnectionRegistry
	snapshots SnapshotReader
	history   HistoryReader
}

func NewAdminHandler(admin *services.AdminService, store *services.RoomStore, registry services.ConnectionRegistry, snapshots SnapshotReader, history HistoryReader) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		store:     store,
		registry:  registry,
		snapshots: snapshots,
		history:   history,
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.admin.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAdminDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) ListRooms(c *gin.Context) {
	rooms := h.store.Rooms()
	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := RoomSummary{
			Code:      room.Code,
			Phase:     room.Phase,
			Players:   len(room.Players),
			Connected: len(h.registry.Players(room.Code)),
			CreatedAt: room.CreatedAt,
		}
		if host := room.Host(); host != nil {
			summary.Host = host.Name
		}
		summaries = append(summaries, summary)
	}
	c.JSON(http.StatusOK, gin.H{"rooms": summaries})
}

func (h *AdminHandler) GetMirror(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Redis mirror is not configured"})
		return
	}

	room, err := h.snapshots.Get(c.Request.Context(), services.NormalizeRoomCode(c.Param("code")))
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *AdminHandler) ListGames(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Game history is not configured"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultHistoryLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	games, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}
