package solo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/middleware"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/pkg/responses"
)

// Controller handles solo pool HTTP requests.
type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Register godoc
// @Summary Register for a tournament's solo pool
// @Description Reserves a slot and adds the caller to the waiting pool with their current bracket snapshot. In team tournaments the seat is booked in the caller's bracket.
// @Tags Solo
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 201 {object} responses.SuccessResponse{data=RegistrationResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /tournaments/{id}/solo-registrations [post]
func (sc *Controller) Register(c *gin.Context) {
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

	reg, err := sc.service.Register(c.Request.Context(), uint(id), playerID)
	if err != nil {
		switch {
		case errors.Is(err, tournament.ErrNotFound):
			responses.NotFound(c, "Tournament")
		case errors.Is(err, tournament.ErrNotOpen),
			errors.Is(err, tournament.ErrDeadlinePassed),
			errors.Is(err, tournament.ErrBracketMissing),
			errors.Is(err, ErrPaidEntry):
			responses.BadRequest(c, err.Error())
		case errors.Is(err, identity.ErrUnverified):
			responses.SendError(c, http.StatusUnprocessableEntity, "Link and verify a Steam account before registering")
		case errors.Is(err, tournament.ErrCapacityExceeded),
			errors.Is(err, tournament.ErrAlreadyRegistered):
			responses.Conflict(c, err.Error())
		default:
			responses.InternalServerError(c, "")
		}
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Registered for tournament", FilterRegistrationRecord(reg))
}

// MyRegistration godoc
// @Summary My solo registration
// @Tags Solo
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=RegistrationResponse}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{id}/solo-registrations/me [get]
func (sc *Controller) MyRegistration(c *gin.Context) {
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

	reg, err := sc.service.MyRegistration(uint(id), playerID)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	if reg == nil {
		responses.NotFound(c, "Registration")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", FilterRegistrationRecord(reg))
}

// GetPool godoc
// @Summary Solo tournament waiting pool
// @Tags Solo
// @Produce json
// @Param id path int true "Tournament ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} responses.PaginatedResponse{data=[]RegistrationResponse}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{id}/pool [get]
func (sc *Controller) GetPool(c *gin.Context) {
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

	regs, total, err := sc.service.Pool(uint(id), page, limit)
	if err != nil {
		if errors.Is(err, tournament.ErrNotFound) {
			responses.NotFound(c, "Tournament")
			return
		}
		responses.InternalServerError(c, "")
		return
	}
	pool := make([]RegistrationResponse, 0, len(regs))
	for i := range regs {
		pool = append(pool, FilterRegistrationRecord(&regs[i]))
	}
	responses.SendPaginated(c, http.StatusOK, "", pool, total, page, limit)
}

// RemoveRegistration godoc
// @Summary Remove a solo registration
// @Description Drops a player from the pool and releases their slot. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Param playerId path int true "Player ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /admin/tournaments/{id}/solo-registrations/{playerId} [delete]
func (sc *Controller) RemoveRegistration(c *gin.Context) {
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

	if err := sc.service.Remove(c.Request.Context(), uint(id), uint(playerID)); err != nil {
		if errors.Is(err, tournament.ErrNotFound) {
			responses.NotFound(c, "Registration")
			return
		}
		responses.InternalServerError(c, "")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Registration removed", nil)
}
