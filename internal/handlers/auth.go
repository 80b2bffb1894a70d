package handlers

import (
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users  *services.UserService
	cookie SessionCookie
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *services.UserService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{users: users, cookie: cookie}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/google", h.Google)
	g.POST("/signout", h.SignOut)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := h.users.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.cookie.Set(c, session.Token)
	return c.JSON(http.StatusCreated, session.User)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := h.users.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.cookie.Set(c, session.Token)
	return c.JSON(http.StatusOK, session.User)
}

// Google verifies a Firebase-issued Google ID token and signs the user in
func (h *AuthHandler) Google(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := h.users.SignInWithFirebase(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	h.cookie.Set(c, session.Token)
	return c.JSON(http.StatusOK, session.User)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	h.cookie.Clear(c)
	return c.JSON(http.StatusOK, "User has been signed out")
}
