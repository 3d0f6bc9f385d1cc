package tournament

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nexclash/nexclash/internal/bracket"
	"github.com/nexclash/nexclash/pkg/responses"
	"github.com/nexclash/nexclash/pkg/validator"
)

// Controller handles tournament HTTP requests.
type Controller struct {
	repo Repository
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// GetTournaments godoc
// @Summary List tournaments
// @Tags Tournaments
// @Produce json
// @Param kind query string false "Filter by kind (team|solo)"
// @Param status query string false "Filter by status (upcoming|active|ended)"
// @Param game query string false "Filter by game"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} responses.PaginatedResponse{data=[]Tournament}
// @Router /tournaments [get]
func (tc *Controller) GetTournaments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filters := map[string]interface{}{}
	if kind := c.Query("kind"); kind != "" {
		filters["kind"] = kind
	}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if game := c.Query("game"); game != "" {
		filters["game"] = game
	}

	tournaments, total, err := tc.repo.GetTournaments(filters, page, limit)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", tournaments, total, page, limit)
}

// GetTournamentByID godoc
// @Summary Tournament details with bracket capacity
// @Tags Tournaments
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=Tournament}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{id} [get]
func (tc *Controller) GetTournamentByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid tournament id")
		return
	}
	t, err := tc.repo.GetTournamentByID(uint(id))
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	if t == nil {
		responses.NotFound(c, "Tournament")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", t)
}

// CreateTournament godoc
// @Summary Create a tournament (admin)
// @Description Creates a tournament with its bracket capacity before registration opens.
// @Tags Tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTournamentRequest true "Tournament definition"
// @Success 201 {object} responses.SuccessResponse{data=Tournament}
// @Failure 400 {object} responses.ErrorResponse
// @Router /admin/tournaments [post]
func (tc *Controller) CreateTournament(c *gin.Context) {
	var req CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	kind := Kind(req.Kind)
	if kind == KindTeam {
		if len(req.Brackets) == 0 {
			responses.BadRequest(c, "Team tournaments require bracket capacity")
			return
		}
		seen := map[string]bool{}
		for _, b := range req.Brackets {
			if seen[b.Tier] {
				responses.BadRequest(c, "Duplicate bracket tier: "+b.Tier)
				return
			}
			seen[b.Tier] = true
		}
	} else if len(req.Brackets) > 0 {
		responses.BadRequest(c, "Solo tournaments use a single shared pool, no brackets")
		return
	}
	if req.RegistrationDeadline.After(req.EndAt) {
		responses.BadRequest(c, "Registration deadline must be before the tournament ends")
		return
	}

	game := req.Game
	if game == "" {
		game = "dota2"
	}
	t := &Tournament{
		Name:                 req.Name,
		Game:                 game,
		Kind:                 kind,
		Status:               StatusUpcoming,
		PrizePool:            req.PrizePool,
		Entry:                req.Entry,
		EntryFee:             req.EntryFee,
		Rules:                req.Rules,
		StartAt:              req.StartAt,
		EndAt:                req.EndAt,
		RegistrationDeadline: req.RegistrationDeadline,
		TotalSlots:           req.TotalSlots,
	}
	for _, b := range req.Brackets {
		t.Brackets = append(t.Brackets, BracketSlots{
			Tier:       bracket.Tier(b.Tier),
			SlotsTotal: b.SlotsTotal,
		})
	}

	if err := tc.repo.CreateTournament(t); err != nil {
		responses.InternalServerError(c, "Could not create tournament")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Tournament created", t)
}

// UpdateStatus godoc
// @Summary Update tournament status (admin)
// @Tags Tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /admin/tournaments/{id}/status [put]
func (tc *Controller) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid tournament id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	if err := tc.repo.UpdateStatus(uint(id), Status(req.Status)); err != nil {
		if errors.Is(err, ErrNotFound) {
			responses.NotFound(c, "Tournament")
			return
		}
		responses.InternalServerError(c, "")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Status updated", nil)
}

// ResetRegistrations godoc
// @Summary Wipe all registrations for a tournament (admin)
// @Description Deletes teams, solo registrations and leaderboard entries, and zeroes all slot counters.
// @Tags Tournaments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /admin/tournaments/{id}/registrations [delete]
func (tc *Controller) ResetRegistrations(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid tournament id")
		return
	}
	if err := tc.repo.ResetRegistrations(uint(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			responses.NotFound(c, "Tournament")
			return
		}
		responses.InternalServerError(c, "")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Registrations reset", nil)
}
