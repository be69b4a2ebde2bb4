package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminhub/user-accounts/internal/core/ports"
)

const msgAccountExists = "An account with this email already exists."

type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         user
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        userName  formData  string  true   "Display name"
// @Param        email     formData  string  true   "Email"
// @Param        password  formData  string  true   "Password (6-16 characters)"
// @Param        phone     formData  string  false  "10-digit phone number"
// @Param        role      formData  string  true   "admin or superadmin"
// @Param        image     formData  file    false  "Profile images (up to 10)"
// @Success      201       {object}  Response{data=domain.User}
// @Success      200       {object}  Response
// @Failure      409       {object}  Response
// @Failure      422       {object}  Response
// @Failure      500       {object}  Response
// @Router       /user/register_user [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	images, err := readUploads(c, imageField)
	if err != nil {
		return err
	}

	res, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    string(req.Phone),
		Role:     req.Role,
		Images:   images,
	})
	if err != nil {
		return err
	}

	if res.AlreadyExists {
		return c.JSON(http.StatusOK, Response{Status: http.StatusOK, Message: msgAccountExists})
	}
	return respond(c, http.StatusCreated, "User registered successfully!", res.User)
}

// Login authenticates an account and returns a session token.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  Response{data=tokenData}
// @Failure      401   {object}  Response
// @Failure      422   {object}  Response
// @Router       /user/login_user [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := h.accounts.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User login successfully!", tokenData{Token: res.Token})
}

// UpdateProfile changes the caller's name, phone, or image.
//
// @Summary      Update own profile
// @Tags         user
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        userName  formData  string  false  "Display name"
// @Param        phone     formData  string  false  "Phone number"
// @Param        image     formData  file    false  "Replacement profile image"
// @Success      200       {object}  Response{data=domain.User}
// @Failure      401       {object}  Response
// @Failure      404       {object}  Response
// @Failure      422       {object}  Response
// @Router       /user/update_user_profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	images, err := readUploads(c, imageField)
	if err != nil {
		return err
	}
	if len(images) > 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Only one image may be uploaded.")
	}

	in := ports.UpdateProfileInput{
		UserID:   userID,
		UserName: req.UserName,
		Phone:    string(req.Phone),
	}
	if len(images) == 1 {
		in.Image = &images[0]
	}

	user, err := h.accounts.UpdateProfile(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Profile updated successfully!", user)
}

// ChangePassword replaces the caller's password.
//
// @Summary      Change own password
// @Tags         user
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Old and new passwords"
// @Success      200   {object}  Response
// @Failure      401   {object}  Response
// @Failure      403   {object}  Response
// @Failure      404   {object}  Response
// @Failure      409   {object}  Response
// @Failure      422   {object}  Response
// @Router       /user/changePassword [post]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	err = h.accounts.ChangePassword(c.Request().Context(), ports.ChangePasswordInput{
		UserID:          userID,
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Password changed successfully.", nil)
}

// GetUserDetails returns the caller's own record under the given role.
//
// @Summary      Get own account
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Param        role  path      string  true  "admin or superadmin"
// @Success      200   {object}  Response{data=domain.User}
// @Failure      400   {object}  Response
// @Failure      401   {object}  Response
// @Router       /user/get_user_details/{role} [get]
func (h *UserHandler) GetUserDetails(c echo.Context) error {
	userID, err := identityFrom(c)
	if err != nil {
		return err
	}

	user, err := h.accounts.GetUserDetails(c.Request().Context(), userID, c.Param("role"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User details fetched successfully!", user)
}

// RemoveUser deletes the caller's own record under the given role.
//
// @Summary      Delete own account
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Param        role  path      string  true  "admin or superadmin"
// @Success      200   {object}  Response
// @Failure      400   {object}  Response
// @Failure      401   {object}  Response
// @Failure      404   {object}  Response
// @Router       /user/remove_user/{role} [delete]
func (h *UserHandler) RemoveUser(c echo.Context) error {
	userID, err := identityFrom(c)
	if err != nil {
		return err
	}

	if err := h.accounts.RemoveUser(c.Request().Context(), userID, c.Param("role")); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User removed successfully!", nil)
}
