package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/internal/service"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

type recordingWriter struct {
	logs []*models.AuditLog
	err  error
}

func (w *recordingWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	w.logs = append(w.logs, log)
	return w.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"meta": ExtractMeta(c)})
	})
	r.GET("/registrations/:regId", handlers...)
	return r
}

func serve(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/registrations/GDN2025-0001", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAndRoles(t *testing.T) {
	gate := stubValidator{claims: &models.JWTClaims{UserID: "g1", Role: models.RoleGatekeeper}}
	admin := stubValidator{claims: &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}}

	cases := []struct {
		name      string
		validator stubValidator
		header    string
		status    int
	}{
		{"missing header", gate, "", http.StatusUnauthorized},
		{"wrong scheme", gate, "Basic good", http.StatusUnauthorized},
		{"bad token", gate, "Bearer bad", http.StatusUnauthorized},
		{"gatekeeper on admin route", gate, "Bearer good", http.StatusForbidden},
		{"admin", admin, "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(JWT(tc.validator), RequireRoles(models.RoleAdmin))
			assert.Equal(t, tc.status, serve(r, tc.header).Code)
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := newRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
}

func TestAuditRecordsSuccessfulAccess(t *testing.T) {
	writer := &recordingWriter{}
	admin := stubValidator{claims: &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}}
	r := newRouter(JWT(admin), Audit(writer, nil, models.AuditActionDecisionReview, "entry_decision"))

	require.Equal(t, http.StatusOK, serve(r, "Bearer good").Code)
	require.Len(t, writer.logs, 1)
	entry := writer.logs[0]
	assert.Equal(t, models.AuditActionDecisionReview, entry.Action)
	assert.Equal(t, "a1", *entry.UserID)
	assert.Equal(t, "GDN2025-0001", *entry.ResourceID)

	writer.err = errors.New("db down")
	assert.Equal(t, http.StatusOK, serve(r, "Bearer good").Code)

	serve(r, "Bearer bad")
	assert.Len(t, writer.logs, 2)
}

func TestResponseMetaStampsProcessingTime(t *testing.T) {
	r := newRouter(WithResponseMeta(), func(c *gin.Context) { SetMeta(c, "source", "test") })

	rec := serve(r, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"test"`)
	assert.Contains(t, rec.Body.String(), `"processing_time_ms"`)
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/tickets/:token", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/tickets/abc", "/tickets/def", "/nope/secret-token"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"/tickets/:token": 2, "unmatched": 1}, paths)
}
