package view

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/creator-dashboard/internal/flash"
	"github.com/yourusername/creator-dashboard/internal/users"
)

func TestDataDrainsMessagesOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := flash.NewMemoryStore(time.Minute)
	f := flash.NewContext(context.Background(), store, "sid", nil)
	f.Success("hello")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	flash.Bind(c, f)

	first := Data(c, nil)
	msgs, ok := first["messages"].([]flash.Message)
	if !ok || len(msgs) != 1 || msgs[0].Text != "hello" {
		t.Fatalf("unexpected messages: %#v", first["messages"])
	}
	if _, ok := first["user"]; ok {
		t.Fatal("user should be absent for anonymous pages")
	}

	second := Data(c, nil)
	if msgs := second["messages"].([]flash.Message); len(msgs) != 0 {
		t.Fatalf("messages should be drained, got %#v", msgs)
	}
}

func TestHTMLRendersUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("dashboard.html").Parse(`{{.user.Email}}|{{len .messages}}`)))
	router.GET("/dashboard", func(c *gin.Context) {
		HTML(c, "dashboard", &users.Identity{ID: "u1", Email: "a@x.com"})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Body.String(); got != "a@x.com|0" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestBundledTemplatesRender(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.LoadHTMLGlob(TemplatePattern("../../web/templates"))
	router.GET("/settings", func(c *gin.Context) {
		HTML(c, "settings", &users.Identity{ID: "u1", Name: "A", Email: "a@x.com"})
	})
	router.GET("/index", func(c *gin.Context) {
		HTML(c, "index", nil)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "a@x.com") {
		t.Fatalf("user email missing from settings page: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
