package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/pkg/errors"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Age      int    `json:"age" binding:"omitempty,gte=18"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req signup
	return BindJSON(c, &req)
}

func violations(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	appErr := errors.From(err)
	require.Equal(t, errors.ErrValidation, appErr.Code)
	out := make(map[string]string, len(appErr.Violations))
	for _, v := range appErr.Violations {
		out[v.Field] = v.Message
	}
	return out
}

func TestBindJSONValid(t *testing.T) {
	assert.NoError(t, bind(t, `{"email":"a@example.com","password":"secret1"}`))
}

func TestBindJSONReportsJSONFieldNames(t *testing.T) {
	got := violations(t, bind(t, `{"email":"nope","password":"123","age":12}`))
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email",
		"password": "must be at least 6 characters",
		"age":      "must be at least 18",
	}, got)
}

func TestBindJSONMalformedBody(t *testing.T) {
	assert.Equal(t, map[string]string{"body": "malformed JSON"}, violations(t, bind(t, `{"email" "a"}`)))
	assert.Equal(t, map[string]string{"body": "request body is required"}, violations(t, bind(t, ``)))
}

func TestBindJSONTypeMismatch(t *testing.T) {
	got := violations(t, bind(t, `{"email":"a@example.com","password":"secret1","age":"old"}`))
	assert.Equal(t, "must be of type int", got["age"])
}
