package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/app"
	"github.com/dkeye/Pointing/internal/core"
	"github.com/dkeye/Pointing/internal/domain"
)

// RoomDeleter is the durable side of administrative eviction.
type RoomDeleter interface {
	DeleteRoom(ctx context.Context, id domain.RoomID) error
}

// Controller exposes the room operations over gin. It only calls the
// core API with validated primitives and maps error kinds onto statuses;
// it never touches room state directly.
type Controller struct {
	Registry *app.Registry
	Deleter  RoomDeleter
}

type createRoomRequest struct {
	Name      string `json:"name" binding:"required"`
	OwnerName string `json:"owner_name" binding:"required"`
}

type joinRequest struct {
	Name     string `json:"name" binding:"required"`
	Observer bool   `json:"is_observer"`
}

type voteRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Value         string `json:"value" binding:"required"`
}

type adminRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

func (ctl *Controller) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad payload")
		return
	}
	svc, owner, err := ctl.Registry.Create(domain.RoomName(req.Name), req.OwnerName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": svc.Snapshot(), "owner": owner})
}

func (ctl *Controller) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": ctl.Registry.List()})
}

func (ctl *Controller) GetRoom(c *gin.Context) {
	svc, err := ctl.Registry.Get(domain.RoomID(c.Param("room_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": svc.Snapshot()})
}

func (ctl *Controller) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad payload")
		return
	}
	svc, err := ctl.Registry.Get(domain.RoomID(c.Param("room_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := svc.Join(req.Name, req.Observer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": p})
}

func (ctl *Controller) Leave(c *gin.Context) {
	svc, err := ctl.Registry.Get(domain.RoomID(c.Param("room_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := svc.Leave(domain.ParticipantID(c.Param("participant_id"))); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *Controller) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad payload")
		return
	}
	svc, err := ctl.Registry.Get(domain.RoomID(c.Param("room_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := svc.SubmitVote(domain.ParticipantID(req.ParticipantID), domain.VoteValue(req.Value)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *Controller) Reveal(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad payload")
		return
	}
	svc, err := ctl.Registry.Get(domain.RoomID(c.Param("room_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := svc.Reveal(domain.ParticipantID(req.ParticipantID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (ctl *Controller) Reset(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad payload")
		return
	}
	svc, err := ctl.Registry.Get(domain.RoomID(c.Param("room_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := svc.Reset(domain.ParticipantID(req.ParticipantID)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteRoom is the administrative eviction. The durable record is
// removed fire-and-forget; the in-memory registry is authoritative.
func (ctl *Controller) DeleteRoom(c *gin.Context) {
	id := domain.RoomID(c.Param("room_id"))
	if _, err := ctl.Registry.Get(id); err != nil {
		writeError(c, err)
		return
	}
	ctl.Registry.Evict(id)
	if ctl.Deleter != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ctl.Deleter.DeleteRoom(ctx, id); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").
					Str("room", string(id)).Msg("durable room delete failed")
			}
		}()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": msg, "code": http.StatusBadRequest}})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, core.ErrRoomNotFound), errors.Is(err, core.ErrParticipantNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrRoundRevealed):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": gin.H{"message": err.Error(), "code": status}})
}
