package handlers

import (
	"net/http"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string `json:"message" example:"Login successful"`
	service.AuthResult
}

// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      service.RegisterInput  true  "username, email, password"
// @Success      201   {object}  AuthResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/users/register [post]
func (h *Handler) register(c *gin.Context) {
	var input service.RegisterInput
	if ok := h.bindJSONOrBadRequest(c, &input, service.MsgRegisterFieldsRequired); !ok {
		return
	}

	res, err := h.services.Register(c.Request.Context(), input)
	if err != nil {
		h.fail(c, "auth_register_failed", err, "email", input.Email)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Message: msgUserRegistered, AuthResult: res})
}

// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      service.LoginInput  true  "email, password"
// @Success      200   {object}  AuthResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/users/login [post]
func (h *Handler) login(c *gin.Context) {
	var input service.LoginInput
	if ok := h.bindJSONOrBadRequest(c, &input, service.MsgLoginFieldsRequired); !ok {
		return
	}

	res, err := h.services.Login(c.Request.Context(), input)
	if err != nil {
		h.fail(c, "auth_login_failed", err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Message: msgLoginSuccessful, AuthResult: res})
}
