package identity

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexclash/nexclash/config"
	"github.com/nexclash/nexclash/internal/middleware"
	"github.com/nexclash/nexclash/pkg/opendota"
	"github.com/nexclash/nexclash/pkg/responses"
	"github.com/nexclash/nexclash/pkg/token"
	"github.com/nexclash/nexclash/pkg/validator"
	"github.com/nexclash/nexclash/utils"
)

const (
	otpLength      = 6
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
)

// Controller handles identity and sign-in HTTP requests.
type Controller struct {
	repo      Repository
	service   *Service
	appConfig *config.Config
}

func NewController(repo Repository, service *Service, appConfig *config.Config) *Controller {
	return &Controller{repo: repo, service: service, appConfig: appConfig}
}

// RequestOTP godoc
// @Summary Request a phone sign-in code
// @Description Sends a one-time code to the given phone number.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body OTPRequest true "Phone number in E.164 format"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /auth/request-otp [post]
func (ic *Controller) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	code, err := utils.GenerateOTP(otpLength)
	if err != nil {
		responses.InternalServerError(c, "Could not generate code")
		return
	}
	hash, err := utils.HashOTP(code)
	if err != nil {
		responses.InternalServerError(c, "Could not generate code")
		return
	}

	otp := &OTP{
		Phone:     req.Phone,
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := ic.repo.SaveOTP(otp); err != nil {
		responses.InternalServerError(c, "Could not store code")
		return
	}

	// SMS delivery is handled by an external gateway; in development the
	// code is logged instead.
	if ic.appConfig.App.Env == "development" {
		log.Printf("OTP for %s: %s", req.Phone, code)
	}

	responses.SendSuccess(c, http.StatusOK, "OTP sent", gin.H{"expires_in_seconds": int(otpTTL.Seconds())})
}

// VerifyOTP godoc
// @Summary Verify a sign-in code
// @Description Verifies the one-time code and returns a token pair, creating the player on first sign-in.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Phone and code"
// @Success 200 {object} responses.SuccessResponse{data=AuthResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/verify-otp [post]
func (ic *Controller) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	otp, err := ic.repo.GetLatestOTP(req.Phone)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	if otp == nil {
		responses.Unauthorized(c, "Code expired or not requested")
		return
	}
	if otp.Attempt >= otpMaxAttempts {
		responses.Unauthorized(c, "Too many attempts, request a new code")
		return
	}

	if !utils.CheckOTP(otp.CodeHash, req.Code) {
		otp.Attempt++
		if err := ic.repo.UpdateOTP(otp); err != nil {
			log.Printf("identity: failed to record OTP attempt: %v", err)
		}
		responses.Unauthorized(c, "Invalid code")
		return
	}

	otp.Verified = true
	if err := ic.repo.UpdateOTP(otp); err != nil {
		responses.InternalServerError(c, "")
		return
	}

	player, err := ic.repo.GetPlayerByPhone(req.Phone)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	if player == nil {
		player = &Player{Phone: req.Phone, Name: req.Name, Role: RolePlayer, PhoneVerified: true}
		if err := ic.repo.CreatePlayer(player); err != nil {
			responses.InternalServerError(c, "Could not create account")
			return
		}
	} else if !player.PhoneVerified {
		player.PhoneVerified = true
		if err := ic.repo.UpdatePlayer(player); err != nil {
			responses.InternalServerError(c, "")
			return
		}
	}

	auth, err := ic.issueTokens(player)
	if err != nil {
		responses.InternalServerError(c, "Could not issue tokens")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Signed in", auth)
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} responses.SuccessResponse{data=AuthResponse}
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/refresh-token [post]
func (ic *Controller) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	claims, err := token.ValidateJWT(req.RefreshToken, ic.appConfig.JWT.RefreshTokenSecret)
	if err != nil {
		responses.Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	stored, err := ic.repo.GetRefreshToken(claims.ID)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	if stored == nil || stored.Revoked || stored.PlayerID != claims.PlayerID {
		responses.Unauthorized(c, "Refresh token revoked")
		return
	}

	player, err := ic.repo.GetPlayerByID(claims.PlayerID)
	if err != nil || player == nil {
		responses.Unauthorized(c, "Account not found")
		return
	}

	// Rotate: revoke the used token before issuing a new pair.
	if err := ic.repo.RevokeRefreshToken(claims.ID); err != nil {
		responses.InternalServerError(c, "")
		return
	}
	auth, err := ic.issueTokens(player)
	if err != nil {
		responses.InternalServerError(c, "Could not issue tokens")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Token refreshed", auth)
}

// GetProfile godoc
// @Summary Current player profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=PlayerResponse}
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/me [get]
func (ic *Controller) GetProfile(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	player, err := ic.repo.GetPlayerByID(playerID)
	if err != nil {
		responses.InternalServerError(c, "")
		return
	}
	if player == nil {
		responses.NotFound(c, "Player")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", FilterPlayerRecord(player))
}

// LinkSteam godoc
// @Summary Link a Steam account
// @Description Attaches a verified Steam64 id to the player and fetches their rank.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LinkSteamRequest true "Steam64 id"
// @Success 200 {object} responses.SuccessResponse{data=PlayerResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /auth/link-steam [post]
func (ic *Controller) LinkSteam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	var req LinkSteamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	player, err := ic.service.LinkSteam(c.Request.Context(), playerID, req.SteamID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSteamTaken):
			responses.Conflict(c, "This Steam account is already linked to another player")
		case errors.Is(err, opendota.ErrNotFound):
			responses.BadRequest(c, "Steam account has no Dota 2 history")
		default:
			responses.BadRequest(c, err.Error())
		}
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Steam account linked", FilterPlayerRecord(player))
}

// RefreshRank godoc
// @Summary Refresh the player's rank snapshot
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=PlayerResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse
// @Router /auth/refresh-rank [post]
func (ic *Controller) RefreshRank(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	player, err := ic.service.RefreshRank(c.Request.Context(), playerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnverified):
			responses.BadRequest(c, "Link your Steam account first")
		case errors.Is(err, opendota.ErrUnavailable):
			responses.SendError(c, http.StatusServiceUnavailable, "Rank provider is unavailable, try again later")
		default:
			responses.InternalServerError(c, "")
		}
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Rank refreshed", FilterPlayerRecord(player))
}

func (ic *Controller) issueTokens(player *Player) (*AuthResponse, error) {
	access, err := token.GenerateJWT(player.ID, player.Role, ic.appConfig.JWT.AccessTokenSecret, ic.appConfig.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.NewString()
	refresh, err := token.GenerateRefreshJWT(player.ID, tokenID, ic.appConfig.JWT.RefreshTokenSecret, ic.appConfig.JWT.RefreshTokenExpiryDays)
	if err != nil {
		return nil, err
	}
	if err := ic.repo.SaveRefreshToken(&RefreshToken{
		PlayerID:  player.ID,
		TokenID:   tokenID,
		ExpiresAt: time.Now().AddDate(0, 0, ic.appConfig.JWT.RefreshTokenExpiryDays),
	}); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Player:       FilterPlayerRecord(player),
	}, nil
}
