package v1

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventbooking-api/internal/config"
	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/pkg/jwthelper"
	"github.com/vietanh2810/eventbooking-api/internal/service"
)

const adminKeyHeader = "X-Admin-Key"

var errBadAdminKey = errors.New("missing or wrong admin signup key")

type AuthService interface {
	Register(ctx context.Context, username, password string) (domain.User, error)
	RegisterAdmin(ctx context.Context, username, password string) (domain.User, error)
	Login(ctx context.Context, username, password string) (domain.User, error)
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleRegister godoc
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.RegisterRequest  true  "request body"
// @Success      201      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/register/ [post]
func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	h.register(ctx, h.svc.Register)
}

// HandleRegisterAdmin godoc
// @Summary      Register an admin
// @Description  Requires the X-Admin-Key header. Disabled when no key is configured.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key  header    string                   true  "admin signup key"
// @Param        request      body      request.RegisterRequest  true  "request body"
// @Success      201          {object}  domain.User
// @Failure      400          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /users/admin/register/ [post]
func (h *AuthHandler) HandleRegisterAdmin(ctx *gin.Context) {
	key := ctx.GetHeader(adminKeyHeader)
	if h.conf.AdminSignupKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.conf.AdminSignupKey)) != 1 {
		response.RenderErr(ctx, response.ErrPermissionDenied(errBadAdminKey))
		return
	}

	h.register(ctx, h.svc.RegisterAdmin)
}

func (h *AuthHandler) register(ctx *gin.Context, signup func(ctx context.Context, username, password string) (domain.User, error)) {
	var req request.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := signup(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			response.RenderErr(ctx, response.ErrBadRequest(domain.NewValidationError(validation.Errors{
				"username": errors.New("a user with that username already exists"),
			})))
			return
		}

		err = fmt.Errorf("v1.register -> signup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleLogin godoc
// @Summary      Login a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.LoginRequest  true  "request body"
// @Success      200      {object}  response.LoginResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/login/ [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken(h.conf.JWTSigningKey, user.ID, user.Role, h.conf.AccessTokenTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Access:   token,
		UserType: user.Role,
	})
}
