package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
)

type UserHandler struct {
	service AuthServiceInterface
}

func NewUserHandler(s AuthServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required" example:"山田太郎"`
	Email    string `json:"email" validate:"required,email" example:"taro@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"password123"`
}

type UserResponse struct {
	ID    string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name  string `json:"name" example:"山田太郎"`
	Email string `json:"email" example:"taro@example.com"`
	Role  string `json:"role" example:"user"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}

// Signup godoc
// @Summary ユーザーを登録
// @Description 新しいユーザーを登録します
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "ユーザー情報"
// @Success 201 {object} UserResponse
// @Failure 400 {object} map[string]string "メールアドレス重複"
// @Router /signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var body SignupRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	u, err := h.service.Signup(c.Request().Context(), application.SignupInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// Login godoc
// @Summary アクセストークンを発行
// @Description メールアドレスとパスワードで認証し、アクセストークンを発行します
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "メールアドレス"
// @Param password formData string true "パスワード"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} map[string]string
// @Router /token [post]
func (h *UserHandler) Login(c echo.Context) error {
	email := c.FormValue("username")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "メールアドレスとパスワードは必須です")
	}

	token, err := h.service.Login(c.Request().Context(), email, password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me godoc
// @Summary ログインユーザーを取得
// @Description ログイン中のユーザー情報を取得します
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	u, err := h.service.GetUser(c.Request().Context(), req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "認証情報を検証できません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
