package handlers

import (
	"net/http"
	"strings"

	"imposter/models"
	"imposter/services"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type RoomHandler struct {
	store    *services.RoomStore
	registry services.ConnectionRegistry
	baseURL  string
}

func NewRoomHandler(store *services.RoomStore, registry services.ConnectionRegistry, baseURL string) *RoomHandler {
	return &RoomHandler{
		store:    store,
		registry: registry,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// GetRoom returns the same redacted snapshot players see.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.store.GetRoom(services.NormalizeRoomCode(c.Param("code")))
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":      room.Redacted(),
		"connected": len(h.registry.Players(room.Code)),
	})
}

// GetRoomQR renders a PNG that opens the join screen for the room.
func (h *RoomHandler) GetRoomQR(c *gin.Context) {
	room, err := h.store.GetRoom(services.NormalizeRoomCode(c.Param("code")))
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	png, err := qrcode.Encode(h.JoinURL(room.Code), qrcode.Medium, qrSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *RoomHandler) JoinURL(code string) string {
	return h.baseURL + "/?room=" + code
}

func (h *RoomHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":   models.Categories,
		"difficulties": models.Difficulties,
		"defaults":     models.DefaultSettings(),
	})
}
