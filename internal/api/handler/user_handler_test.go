package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/adminhub/user-accounts/internal/api/middleware"
	"github.com/adminhub/user-accounts/internal/core/domain"
	"github.com/adminhub/user-accounts/internal/core/ports"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type stubAccountService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
	loginFn          func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	updateProfileFn  func(ctx context.Context, in ports.UpdateProfileInput) (*domain.User, error)
	changePasswordFn func(ctx context.Context, in ports.ChangePasswordInput) error
	getDetailsFn     func(ctx context.Context, userID, role string) (*domain.User, error)
	removeFn         func(ctx context.Context, userID, role string) error
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAccountService) UpdateProfile(ctx context.Context, in ports.UpdateProfileInput) (*domain.User, error) {
	return s.updateProfileFn(ctx, in)
}

func (s *stubAccountService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	return s.changePasswordFn(ctx, in)
}

func (s *stubAccountService) GetUserDetails(ctx context.Context, userID, role string) (*domain.User, error) {
	return s.getDetailsFn(ctx, userID, role)
}

func (s *stubAccountService) RemoveUser(ctx context.Context, userID, role string) error {
	return s.removeFn(ctx, userID, role)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for i := 0; i < files; i++ {
		fw, err := w.CreateFormFile("image", "me.png")
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = fw.Write(pngHeader)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func authed(c echo.Context, userID string) echo.Context {
	c.Set(middleware.ContextUserID, userID)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestUserHandler_Register_JSON(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if in.UserName != "alice" || in.Email != "a@x.com" || in.Role != "admin" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Phone != "9998887776" {
				t.Fatalf("numeric phone not carried as text: %q", in.Phone)
			}
			return &ports.RegisterResult{User: &domain.User{ID: "u1", UserName: in.UserName, Role: domain.RoleAdmin, PasswordHash: "$2a$10$hash"}}, nil
		},
	}
	h := NewUserHandler(stub)

	req := jsonRequest(http.MethodPost, "/user/register_user",
		`{"userName":"alice","email":"a@x.com","password":"secret1","phone":9998887776,"role":"admin"}`)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "$2a$") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	resp := decode(t, rec)
	if !resp.Success || resp.Status != http.StatusCreated || resp.Message != "User registered successfully!" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	data, _ := resp.Data.(map[string]any)
	if data["_id"] != "u1" || data["userName"] != "alice" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
}

func TestUserHandler_Register_MultipartWithImages(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if len(in.Images) != 2 {
				t.Fatalf("expected 2 images, got %d", len(in.Images))
			}
			if !bytes.Equal(in.Images[0].Data, pngHeader) || in.Images[0].Filename != "me.png" {
				t.Fatalf("unexpected upload: %+v", in.Images[0])
			}
			if in.Phone != "9998887776" {
				t.Fatalf("unexpected phone %q", in.Phone)
			}
			return &ports.RegisterResult{User: &domain.User{ID: "u1"}}, nil
		},
	}
	h := NewUserHandler(stub)

	req := multipartRequest(t, http.MethodPost, "/user/register_user", map[string]string{
		"userName": "alice",
		"email":    "a@x.com",
		"password": "secret1",
		"phone":    "9998887776",
		"role":     "admin",
	}, 2)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestUserHandler_Register_AlreadyExists(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return &ports.RegisterResult{AlreadyExists: true}, nil
		},
	}
	h := NewUserHandler(stub)

	req := jsonRequest(http.MethodPost, "/user/register_user", `{"userName":"bob"}`)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Success || resp.Message != "An account with this email already exists." || resp.Data != nil {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestUserHandler_Register_PropagatesServiceError(t *testing.T) {
	e := echo.New()
	want := domain.Invalid("Email is a required field.")
	stub := &stubAccountService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, want
		},
	}
	h := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	err := h.Register(e.NewContext(jsonRequest(http.MethodPost, "/user/register_user", `{}`), rec))
	if !errors.Is(err, want) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserHandler_Register_MalformedJSON(t *testing.T) {
	e := echo.New()
	h := NewUserHandler(&stubAccountService{})

	rec := httptest.NewRecorder()
	err := h.Register(e.NewContext(jsonRequest(http.MethodPost, "/user/register_user", `{"userName":`), rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 bind error, got %v", err)
	}
}

func TestUserHandler_Login(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			if in.Email != "a@x.com" || in.Password != "secret1" || in.Role != "superadmin" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.LoginResult{Token: "tok", User: &domain.User{ID: "u1"}}, nil
		},
	}
	h := NewUserHandler(stub)

	req := jsonRequest(http.MethodPost, "/user/login_user", `{"email":"a@x.com","password":"secret1","role":"superadmin"}`)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	data, _ := resp.Data.(map[string]any)
	if data["token"] != "tok" || resp.Message != "User login successfully!" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestUserHandler_Login_Failure(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			return nil, domain.ErrIncorrectPassword
		},
	}
	h := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	err := h.Login(e.NewContext(jsonRequest(http.MethodPost, "/user/login_user", `{}`), rec))
	if !errors.Is(err, domain.ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		updateProfileFn: func(ctx context.Context, in ports.UpdateProfileInput) (*domain.User, error) {
			if in.UserID != "u1" || in.UserName != "alice2" || in.Phone != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Image == nil || !bytes.Equal(in.Image.Data, pngHeader) {
				t.Fatalf("expected one image")
			}
			return &domain.User{ID: "u1", UserName: "alice2"}, nil
		},
	}
	h := NewUserHandler(stub)

	req := multipartRequest(t, http.MethodPut, "/user/update_user_profile", map[string]string{"userName": "alice2"}, 1)
	rec := httptest.NewRecorder()

	if err := h.UpdateProfile(authed(e.NewContext(req, rec), "u1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_UpdateProfile_RejectsSeveralImages(t *testing.T) {
	e := echo.New()
	h := NewUserHandler(&stubAccountService{})

	req := multipartRequest(t, http.MethodPut, "/user/update_user_profile", nil, 2)
	err := h.UpdateProfile(authed(e.NewContext(req, httptest.NewRecorder()), "u1"))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_RequiresIdentity(t *testing.T) {
	e := echo.New()
	h := NewUserHandler(&stubAccountService{})

	handlers := map[string]echo.HandlerFunc{
		"update":  h.UpdateProfile,
		"change":  h.ChangePassword,
		"details": h.GetUserDetails,
		"remove":  h.RemoveUser,
	}
	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			c := e.NewContext(jsonRequest(http.MethodPost, "/", `{}`), httptest.NewRecorder())
			if err := fn(c); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		changePasswordFn: func(ctx context.Context, in ports.ChangePasswordInput) error {
			want := ports.ChangePasswordInput{UserID: "u1", OldPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret2"}
			if in != want {
				t.Fatalf("unexpected input: %+v", in)
			}
			return nil
		},
	}
	h := NewUserHandler(stub)

	req := jsonRequest(http.MethodPost, "/user/changePassword",
		`{"oldPassword":"secret1","newPassword":"secret2","confirm_password":"secret2"}`)
	rec := httptest.NewRecorder()

	if err := h.ChangePassword(authed(e.NewContext(req, rec), "u1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if rec.Code != http.StatusOK || resp.Message != "Password changed successfully." {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}

func TestUserHandler_GetUserDetails(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		getDetailsFn: func(ctx context.Context, userID, role string) (*domain.User, error) {
			if userID != "u1" || role != "superadmin" {
				t.Fatalf("unexpected args: %s %s", userID, role)
			}
			return &domain.User{ID: "u1", Role: domain.RoleSuperAdmin}, nil
		},
	}
	h := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), "u1")
	c.SetParamNames("role")
	c.SetParamValues("superadmin")

	if err := h.GetUserDetails(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	data, _ := resp.Data.(map[string]any)
	if rec.Code != http.StatusOK || data["role"] != "superadmin" {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}

func TestUserHandler_RemoveUser(t *testing.T) {
	e := echo.New()
	stub := &stubAccountService{
		removeFn: func(ctx context.Context, userID, role string) error {
			if role == "admin" {
				return nil
			}
			return domain.ErrRemoveTargetNotFound
		},
	}
	h := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec), "u1")
	c.SetParamNames("role")
	c.SetParamValues("admin")
	if err := h.RemoveUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c = authed(e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder()), "u1")
	c.SetParamNames("role")
	c.SetParamValues("superadmin")
	if err := h.RemoveUser(c); !errors.Is(err, domain.ErrRemoveTargetNotFound) {
		t.Fatalf("expected ErrRemoveTargetNotFound, got %v", err)
	}
}

func TestPhoneField_UnmarshalJSON(t *testing.T) {
	tests := map[string]string{
		`9998887776`:   "9998887776",
		`"9998887776"`: "9998887776",
		`null`:         "",
		`"abc"`:        "abc",
	}
	for in, want := range tests {
		var p phoneField
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if string(p) != want {
			t.Fatalf("unmarshal %s: got %q want %q", in, p, want)
		}
	}
}
