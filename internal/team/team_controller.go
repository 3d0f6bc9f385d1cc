package team

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

// Controller handles team HTTP requests.
type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// CreateTeam godoc
// @Summary Create a team for a tournament
// @Description Reserves a slot in the captain's bracket and creates a forming team with a shareable join code.
// @Tags Teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTeamRequest true "Tournament to register for"
// @Success 201 {object} responses.SuccessResponse{data=TeamResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /teams [post]
func (tc *Controller) CreateTeam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	team, members, err := tc.service.Create(c.Request.Context(), req.TournamentID, playerID)
	if err != nil {
		tc.writeRegistrationError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team created", FilterTeamRecord(team, members, true))
}

// JoinTeam godoc
// @Summary Join a team by code
// @Description Reserves a slot in the joiner's bracket and adds them to the team. The fifth member completes the team.
// @Tags Teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body JoinTeamRequest true "Join code"
// @Success 200 {object} responses.SuccessResponse{data=TeamResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /teams/join [post]
func (tc *Controller) JoinTeam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	team, members, err := tc.service.Join(c.Request.Context(), req.Code, playerID)
	if err != nil {
		tc.writeRegistrationError(c, err)
		return
	}
	msg := "Joined team"
	if team.Status == StatusFull {
		msg = "Joined team, roster complete"
	}
	responses.SendSuccess(c, http.StatusOK, msg, FilterTeamRecord(team, members, true))
}

// MyTeam godoc
// @Summary My team in a tournament
// @Tags Teams
// @Produce json
// @Security BearerAuth
// @Param tournament_id query int true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=TeamResponse}
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/me [get]
func (tc *Controller) MyTeam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	tournamentID, perr := strconv.ParseUint(c.Query("tournament_id"), 10, 32)
	if perr != nil {
		responses.BadRequest(c, "Invalid tournament_id")
		return
	}

	team, members, err := tc.service.MyTeam(uint(tournamentID), playerID)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	if team == nil {
		responses.NotFound(c, "Team")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", FilterTeamRecord(team, members, true))
}

// DisbandTeam godoc
// @Summary Disband a forming team
// @Description Removes a still-forming team and releases its reserved bracket slots. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /admin/teams/{id} [delete]
func (tc *Controller) DisbandTeam(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid team id")
		return
	}

	if err := tc.service.Disband(c.Request.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, tournament.ErrNotFound):
			responses.NotFound(c, "Team")
		case errors.Is(err, ErrTeamLocked):
			responses.Conflict(c, err.Error())
		default:
			responses.InternalServerError(c, "")
		}
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team disbanded", nil)
}

func (tc *Controller) writeRegistrationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tournament.ErrNotFound):
		responses.NotFound(c, "Tournament")
	case errors.Is(err, ErrInvalidCode):
		responses.NotFound(c, "Team")
	case errors.Is(err, tournament.ErrNotOpen),
		errors.Is(err, tournament.ErrDeadlinePassed),
		errors.Is(err, tournament.ErrWrongKind),
		errors.Is(err, tournament.ErrBracketMissing):
		responses.BadRequest(c, err.Error())
	case errors.Is(err, identity.ErrUnverified):
		responses.SendError(c, http.StatusUnprocessableEntity, "Link and verify a Steam account before registering")
	case errors.Is(err, tournament.ErrCapacityExceeded),
		errors.Is(err, tournament.ErrAlreadyRegistered),
		errors.Is(err, ErrTeamFull),
		errors.Is(err, ErrAlreadyMember):
		responses.Conflict(c, err.Error())
	default:
		responses.InternalServerError(c, "")
	}
}
