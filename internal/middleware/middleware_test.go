package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/pressroom/backend/internal/auth"
	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func protectedEcho(issuer *auth.JWTIssuer) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, actor.ID.Hex())
	}, JWTAuthMiddleware(issuer))
	return e
}

func TestJWTAuthAcceptsCookieAndBearer(t *testing.T) {
	issuer := auth.NewJWTIssuer("secret")
	user := &models.User{ID: primitive.NewObjectID()}
	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	e := protectedEcho(issuer)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != user.ID.Hex() {
		t.Fatalf("cookie auth: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer auth: %d", rec.Code)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	e := protectedEcho(auth.NewJWTIssuer("secret"))
	forged, _ := auth.NewJWTIssuer("other").Issue(&models.User{ID: primitive.NewObjectID()})

	for name, header := range map[string]string{
		"missing": "",
		"scheme":  "Basic abc",
		"forged":  "Bearer " + forged,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRateLimitPerIP(t *testing.T) {
	e := echo.New()
	e.Use(RateLimitPerIP(1, 2))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other IP should have its own bucket, got %d", rec.Code)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(), Metrics(), AccessLog(zap.NewNop()))
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom?password=x", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected handler status, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("missing request id")
	}
}

func TestMaskQuery(t *testing.T) {
	masked := maskQuery(map[string][]string{"Password": {"x"}, "page": {"2"}})
	if masked["Password"][0] != "****" || masked["page"][0] != "2" {
		t.Fatalf("unexpected mask: %v", masked)
	}
}
