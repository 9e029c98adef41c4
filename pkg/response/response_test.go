package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestEnvelopes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		write  func(c *gin.Context)
		status int
		body   string
	}{
		{"message", func(c *gin.Context) { Message(c, "Post created successfully", nil) }, http.StatusOK, `{"success":true,"message":"Post created successfully"}`},
		{"created", func(c *gin.Context) { Created(c, gin.H{"id": "p1"}) }, http.StatusCreated, `{"success":true,"data":{"id":"p1"}}`},
		{"bad request", func(c *gin.Context) { BadRequest(c, "post is required") }, http.StatusBadRequest, `{"success":false,"error":{"code":"BAD_REQUEST","message":"post is required"}}`},
		{"not found", func(c *gin.Context) { NotFound(c, "post not found") }, http.StatusNotFound, `{"success":false,"error":{"code":"NOT_FOUND","message":"post not found"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			tc.write(c)
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}
