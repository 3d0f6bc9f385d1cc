package leaderboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/middleware"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/pkg/responses"
	"github.com/nexclash/nexclash/pkg/validator"
)

// Controller handles leaderboard HTTP requests.
type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// GetLeaderboard godoc
// @Summary Tournament leaderboard
// @Tags Leaderboard
// @Produce json
// @Param id path int true "Tournament ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} responses.PaginatedResponse{data=[]Entry}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{id}/leaderboard [get]
func (lc *Controller) GetLeaderboard(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid tournament id")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	entries, total, err := lc.service.Standings(uint(id), page, limit)
	if err != nil {
		if errors.Is(err, tournament.ErrNotFound) {
			responses.NotFound(c, "Tournament")
			return
		}
		responses.InternalServerError(c, "")
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", entries, total, page, limit)
}

// RefreshMyScore godoc
// @Summary Refresh my leaderboard entry
// @Description Pulls recent matches and recomputes the caller's score for this tournament.
// @Tags Leaderboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=Entry}
// @Failure 404 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse
// @Router /tournaments/{id}/leaderboard/refresh [post]
func (lc *Controller) RefreshMyScore(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	id, perr := strconv.ParseUint(c.Param("id"), 10, 32)
	if perr != nil {
		responses.BadRequest(c, "Invalid tournament id")
		return
	}

	entry, err := lc.service.Refresh(c.Request.Context(), uint(id), playerID)
	if err != nil {
		switch {
		case errors.Is(err, tournament.ErrNotFound):
			responses.NotFound(c, "Tournament registration")
		case errors.Is(err, identity.ErrUnverified):
			responses.SendError(c, http.StatusUnprocessableEntity, "Link and verify a Steam account first")
		case errors.Is(err, ErrNeverRefreshed):
			responses.SendError(c, http.StatusServiceUnavailable, "Match provider is unavailable, try again later")
		default:
			responses.InternalServerError(c, "")
		}
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Scores refreshed", entry)
}

// Disqualify godoc
// @Summary Disqualify or reinstate a player
// @Description Sets the disqualification flag on a leaderboard entry. Admin only; score refreshes never change the flag.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Param playerId path int true "Player ID"
// @Param request body DisqualifyRequest true "Flag and reason"
// @Success 200 {object} responses.SuccessResponse{data=Entry}
// @Failure 404 {object} responses.ErrorResponse
// @Router /admin/tournaments/{id}/leaderboard/{playerId}/disqualify [put]
func (lc *Controller) Disqualify(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid tournament id")
		return
	}
	playerID, err := strconv.ParseUint(c.Param("playerId"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid player id")
		return
	}
	var req DisqualifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	entry, err := lc.service.Disqualify(uint(id), uint(playerID), req.Disqualified, req.Reason)
	if err != nil {
		if errors.Is(err, tournament.ErrNotFound) {
			responses.NotFound(c, "Leaderboard entry")
			return
		}
		responses.InternalServerError(c, "")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Disqualification updated", entry)
}
