package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceitask/taskboard/internal/application"
	"github.com/ceitask/taskboard/internal/domain/entity"
)

type stubAuthService struct {
	registerFn    func(ctx context.Context, in application.RegisterInput) error
	loginFn       func(ctx context.Context, in application.LoginInput) (*entity.User, string, error)
	googleLoginFn func(ctx context.Context, in application.GoogleLoginInput) (*entity.User, string, error)
	updateImageFn func(ctx context.Context, username string, img application.ImageUpload) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in application.RegisterInput) error {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in application.LoginInput) (*entity.User, string, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) GoogleLogin(ctx context.Context, in application.GoogleLoginInput) (*entity.User, string, error) {
	return s.googleLoginFn(ctx, in)
}

func (s *stubAuthService) UpdateProfileImage(ctx context.Context, username string, img application.ImageUpload) (string, error) {
	return s.updateImageFn(ctx, username, img)
}

func authRouter(svc AuthService) *gin.Engine {
	h := NewAuthHandler(svc, testLogger())
	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	r.POST("/api/google-login", h.GoogleLogin)
	r.PUT("/api/users/profile-image/:username", h.UpdateProfileImage)
	return r
}

func TestRegisterHandler_Created(t *testing.T) {
	var got application.RegisterInput
	svc := &stubAuthService{
		registerFn: func(_ context.Context, in application.RegisterInput) error {
			got = in
			return nil
		},
	}
	r := authRouter(svc)

	body, ct := multipartBody(t, map[string]string{
		"full_name":     "A B",
		"username":      "ab",
		"password":      "secret1",
		"captcha_token": "tok",
	}, "me.png", []byte("png bytes"))
	w := doRequest(r, http.MethodPost, "/api/register", body, ct)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, "ab", got.Username)
	require.NotNil(t, got.Image)
	assert.Equal(t, "me.png", got.Image.Filename)
	content, err := io.ReadAll(got.Image.Reader)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(content))
}

func TestRegisterHandler_NoImage(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(_ context.Context, in application.RegisterInput) error {
			assert.Nil(t, in.Image)
			return nil
		},
	}
	r := authRouter(svc)

	body, ct := multipartBody(t, map[string]string{
		"full_name":     "A B",
		"username":      "ab",
		"password":      "secret1",
		"captcha_token": "tok",
	}, "", nil)
	w := doRequest(r, http.MethodPost, "/api/register", body, ct)
	assert.Equal(t, http.StatusCreated, w.Code)
}

// Passwords have no length floor; a five-character password registers fine.
func TestRegisterHandler_ShortPassword(t *testing.T) {
	var got application.RegisterInput
	svc := &stubAuthService{
		registerFn: func(_ context.Context, in application.RegisterInput) error {
			got = in
			return nil
		},
	}
	r := authRouter(svc)

	body, ct := multipartBody(t, map[string]string{
		"full_name":     "A B",
		"username":      "ab",
		"password":      "pw123",
		"captcha_token": "tok",
	}, "", nil)
	w := doRequest(r, http.MethodPost, "/api/register", body, ct)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, "pw123", got.Password)
}

func TestRegisterHandler_EmptyPassword(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, application.RegisterInput) error {
			t.Fatal("service must not be called")
			return nil
		},
	}
	r := authRouter(svc)

	body, ct := multipartBody(t, map[string]string{
		"full_name":     "A B",
		"username":      "ab",
		"password":      "",
		"captcha_token": "tok",
	}, "", nil)
	w := doRequest(r, http.MethodPost, "/api/register", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"captcha failed", application.ErrBotCheckFailed, http.StatusBadRequest},
		{"username taken", application.ErrUsernameTaken, http.StatusBadRequest},
		{"store down", errors.New("pg down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAuthService{
				registerFn: func(context.Context, application.RegisterInput) error { return tt.err },
			}
			r := authRouter(svc)

			body, ct := multipartBody(t, map[string]string{
				"full_name":     "A B",
				"username":      "ab",
				"password":      "secret1",
				"captcha_token": "tok",
			}, "", nil)
			w := doRequest(r, http.MethodPost, "/api/register", body, ct)
			assert.Equal(t, tt.code, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestLoginHandler_OK(t *testing.T) {
	u := &entity.User{ID: 7, Username: "ab", FullName: "A B", PasswordHash: "$2a$10$secret"}
	svc := &stubAuthService{
		loginFn: func(_ context.Context, in application.LoginInput) (*entity.User, string, error) {
			assert.Equal(t, "ab", in.Username)
			return u, "signed-token", nil
		},
	}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/login", `{"username":"ab","password":"secret1","captcha_token":"tok"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "signed-token", resp["token"])

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ab", user["username"])
	// The hash never leaves the server.
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, w.Body.String(), "$2a$10$secret")
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, application.LoginInput) (*entity.User, string, error) {
			return nil, "", application.ErrInvalidCredentials
		},
	}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/login", `{"username":"ab","password":"wrong","captcha_token":"tok"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginHandler_MissingFields(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, application.LoginInput) (*entity.User, string, error) {
			t.Fatal("service must not be called")
			return nil, "", nil
		},
	}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/login", `{"username":"ab"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoogleLoginHandler_OK(t *testing.T) {
	svc := &stubAuthService{
		googleLoginFn: func(_ context.Context, in application.GoogleLoginInput) (*entity.User, string, error) {
			assert.Equal(t, "google-123", in.GoogleID)
			return &entity.User{ID: 1, Username: in.Username, FullName: in.FullName, GoogleID: in.GoogleID}, "tok", nil
		},
	}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/google-login",
		`{"username":"jane","full_name":"Jane Doe","google_id":"google-123","profile_image":"https://img"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "tok", resp["token"])
}

func TestGoogleLoginHandler_StoreError(t *testing.T) {
	svc := &stubAuthService{
		googleLoginFn: func(context.Context, application.GoogleLoginInput) (*entity.User, string, error) {
			return nil, "", errors.New("pg down")
		},
	}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/google-login",
		`{"username":"jane","full_name":"Jane Doe","google_id":"google-123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateProfileImageHandler_OK(t *testing.T) {
	svc := &stubAuthService{
		updateImageFn: func(_ context.Context, username string, img application.ImageUpload) (string, error) {
			assert.Equal(t, "ab", username)
			assert.Equal(t, "new.jpg", img.Filename)
			return "profile-1234.jpg", nil
		},
	}
	r := authRouter(svc)

	body, ct := multipartBody(t, nil, "new.jpg", []byte("jpg bytes"))
	w := doRequest(r, http.MethodPut, "/api/users/profile-image/ab", body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"profile_image":"profile-1234.jpg"}`, w.Body.String())
}

func TestUpdateProfileImageHandler_NoFile(t *testing.T) {
	svc := &stubAuthService{
		updateImageFn: func(context.Context, string, application.ImageUpload) (string, error) {
			t.Fatal("service must not be called")
			return "", nil
		},
	}
	r := authRouter(svc)

	body, ct := multipartBody(t, map[string]string{"other": "field"}, "", nil)
	w := doRequest(r, http.MethodPut, "/api/users/profile-image/ab", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfileImageHandler_UserNotFound(t *testing.T) {
	svc := &stubAuthService{
		updateImageFn: func(context.Context, string, application.ImageUpload) (string, error) {
			return "", application.ErrUserNotFound
		},
	}
	r := authRouter(svc)

	body, ct := multipartBody(t, nil, "x.jpg", []byte("x"))
	w := doRequest(r, http.MethodPut, "/api/users/profile-image/ghost", body, ct)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
