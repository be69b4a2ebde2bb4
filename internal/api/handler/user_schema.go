package handler

import (
	"bytes"
	"encoding/json"
	"strings"
)

type registerRequest struct {
	UserName string     `json:"userName" form:"userName"`
	Email    string     `json:"email"    form:"email"`
	Password string     `json:"password" form:"password"`
	Phone    phoneField `json:"phone"    form:"phone"`
	Role     string     `json:"role"     form:"role"`
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role"     form:"role"`
}

type updateProfileRequest struct {
	UserName string     `json:"userName" form:"userName"`
	Phone    phoneField `json:"phone"    form:"phone"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"      form:"oldPassword"`
	NewPassword     string `json:"newPassword"      form:"newPassword"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type tokenData struct {
	Token string `json:"token"`
}

// phoneField accepts a phone number sent either as a JSON number or a string.
// Content checks are left to validation.
type phoneField string

func (p *phoneField) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = phoneField(s)
		return nil
	}
	*p = phoneField(strings.TrimSpace(string(b)))
	return nil
}
