package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

// CookieName holds the JWT issued at login.
const CookieName = "user"

// authenticate resolves the caller from the user cookie or a bearer token.
// Missing or invalid tokens leave the request anonymous.
func authenticate(auth *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			c.Next()
			return
		}
		if viewer := ViewerFromRequest(auth, c.Request); viewer != nil {
			c.Request = c.Request.WithContext(app.WithViewer(c.Request.Context(), viewer))
		}
		c.Next()
	}
}

// ViewerFromRequest parses the caller's token, nil when absent or invalid.
func ViewerFromRequest(auth *app.AuthService, r *http.Request) *domain.Viewer {
	token := ""
	if cookie, err := r.Cookie(CookieName); err == nil {
		token = cookie.Value
	}
	if header := r.Header.Get("Authorization"); token == "" && strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return nil
	}
	viewer, err := auth.ParseToken(token)
	if err != nil {
		return nil
	}
	return viewer
}

func viewer(c *gin.Context) *domain.Viewer {
	return app.ViewerFrom(c.Request.Context())
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	token, user, err := h.svc.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setAuthCookie(c, token, h.cookieTTL)
	c.JSON(http.StatusOK, gin.H{
		"type": "LoginSuccess",
		"data": gin.H{"token": token, "user": user},
	})
}

func (h *handlers) signup(c *gin.Context) {
	var req app.SignupInput
	if !h.bind(c, &req) {
		return
	}
	user, err := h.svc.Auth.Signup(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) currentUser(c *gin.Context) {
	user, err := h.svc.Auth.Current(c.Request.Context(), viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"type": "LogoutSuccess"})
}

func (h *handlers) setAuthCookie(c *gin.Context, token string, maxAge time.Duration) {
	seconds := int(maxAge / time.Second)
	if maxAge < 0 {
		seconds = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, seconds, "/", "", h.secureCookie, true)
}

func (h *handlers) profile(c *gin.Context) {
	semester, ok := h.queryInt64(c, "semester")
	if !ok {
		return
	}
	p, err := h.svc.Profiles.Get(c.Request.Context(), viewer(c), semester)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
