package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestWriters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
		body   string
	}{
		{name: "ok array", write: func(c *gin.Context) { OK(c, []int{1, 2}) }, status: http.StatusOK, body: `[1,2]`},
		{name: "created", write: func(c *gin.Context) { Created(c, gin.H{"id": 7}) }, status: http.StatusCreated, body: `{"id":7}`},
		{name: "success", write: func(c *gin.Context) { Success(c, "done") }, status: http.StatusOK, body: `{"success":true,"message":"done"}`},
		{name: "bad request", write: func(c *gin.Context) { BadRequest(c, "nope") }, status: http.StatusBadRequest, body: `{"success":false,"error":"nope"}`},
		{name: "not found", write: func(c *gin.Context) { NotFound(c, "gone") }, status: http.StatusNotFound, body: `{"success":false,"error":"gone"}`},
		{name: "internal", write: func(c *gin.Context) { Internal(c, "oops") }, status: http.StatusInternalServerError, body: `{"success":false,"error":"oops"}`},
		{name: "unavailable", write: func(c *gin.Context) { ServiceUnavailable(c, "later") }, status: http.StatusServiceUnavailable, body: `{"success":false,"error":"later"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			tt.write(c)

			if rec.Code != tt.status {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.status)
			}
			var got, want interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			_ = json.Unmarshal([]byte(tt.body), &want)
			gb, _ := json.Marshal(got)
			wb, _ := json.Marshal(want)
			if string(gb) != string(wb) {
				t.Fatalf("unexpected body: got=%s want=%s", gb, wb)
			}
		})
	}
}
