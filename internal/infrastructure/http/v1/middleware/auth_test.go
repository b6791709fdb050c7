package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "fakturo/internal/core/context"
	"fakturo/internal/core/id"
)

func testActor() *appctx.Actor {
	return &appctx.Actor{
		UserID:   id.New(),
		Username: "operator",
		Role:     "billing",
	}
}

func TestTokenVerifier_RoundTrip(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	actor := testActor()
	pid := id.New()
	actor.PartnerID = &pid

	token, err := verifier.Issue(actor, time.Hour)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, got.UserID)
	assert.Equal(t, "operator", got.Username)
	assert.Equal(t, "billing", got.Role)
	require.NotNil(t, got.PartnerID)
	assert.Equal(t, pid, *got.PartnerID)
}

func TestTokenVerifier_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenVerifier("secret-a").Issue(testActor(), time.Hour)
	require.NoError(t, err)

	_, err = NewTokenVerifier("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestTokenVerifier_RejectsExpired(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	token, err := verifier.Issue(testActor(), -time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestAuth_PopulatesActorContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier := NewTokenVerifier("test-secret")
	actor := testActor()
	token, err := verifier.Issue(actor, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(Auth(verifier))
	router.GET("/whoami", func(c *gin.Context) {
		got := appctx.GetActor(c.Request.Context())
		require.NotNil(t, got)
		c.JSON(http.StatusOK, gin.H{"userId": got.UserID.String()})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), actor.UserID.String())
}

func TestAuth_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(Auth(NewTokenVerifier("test-secret")))
	router.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier := NewTokenVerifier("test-secret")

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(Auth(verifier))
	router.GET("/admin", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := verifier.Issue(testActor(), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
