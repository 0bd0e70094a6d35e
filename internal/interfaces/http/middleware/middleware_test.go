package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/inventory-hub/backend/internal/infrastructure/auth"
	"github.com/inventory-hub/backend/internal/infrastructure/config"
	"github.com/inventory-hub/backend/internal/infrastructure/logger"
	"github.com/inventory-hub/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, buf.String())
	})

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello", w.Body.String())
	})

	t.Run("declared length over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
		req.Header.Set(RequestIDHeader, "req-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})

	t.Run("streamed body is capped", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
		req.ContentLength = -1
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://dock.example.com"}

	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://dock.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://dock.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), OperatorHeader)
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://dock.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("wildcard never allows credentials", func(t *testing.T) {
		wildcard := DefaultCORSConfig()
		wildcard.AllowOrigins = []string{"*"}
		r := gin.New()
		r.Use(CORSWithConfig(wildcard))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://any.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	t.Run("propagates client id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Body.String())
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))

		assert.Len(t, w.Body.String(), 32)
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("truncates long ids", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", 500))
		r.ServeHTTP(w, req)

		assert.Len(t, w.Body.String(), MaxRequestIDLength)
	})
}

func TestSecure(t *testing.T) {
	r := gin.New()
	r.Use(Secure())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

type lineRequest struct {
	SKU        string          `json:"sku" binding:"required"`
	OrderedQty decimal.Decimal `json:"ordered_qty" binding:"gt=0"`
}

type invoiceRequest struct {
	InvoiceNumber string        `json:"invoice_number" binding:"required,max=10"`
	Lines         []lineRequest `json:"lines" binding:"required,min=1,dive"`
}

type identifierRequest struct {
	Type  string `json:"type" binding:"required,identifier_type"`
	Value string `json:"value" binding:"required"`
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidations(v))

	t.Run("decimal quantities", func(t *testing.T) {
		ok := invoiceRequest{InvoiceNumber: "INV-1", Lines: []lineRequest{{SKU: "A", OrderedQty: decimal.NewFromInt(3)}}}
		assert.NoError(t, v.Struct(ok))

		bad := invoiceRequest{InvoiceNumber: "INV-1", Lines: []lineRequest{{SKU: "A", OrderedQty: decimal.Zero}}}
		err := v.Struct(bad)
		require.Error(t, err)

		details := ValidationDetails(err)
		require.Len(t, details, 1)
		assert.Equal(t, "lines[0].ordered_qty", details[0].Field)
		assert.Equal(t, "Must be greater than 0", details[0].Message)
	})

	t.Run("identifier type", func(t *testing.T) {
		assert.NoError(t, v.Struct(identifierRequest{Type: "ean", Value: "4006381333931"}))

		err := v.Struct(identifierRequest{Type: "QR", Value: "x"})
		require.Error(t, err)
		details := ValidationDetails(err)
		require.Len(t, details, 1)
		assert.Equal(t, "type", details[0].Field)
		assert.Equal(t, "Unknown identifier type", details[0].Message)
	})

	t.Run("messages", func(t *testing.T) {
		err := v.Struct(invoiceRequest{InvoiceNumber: strings.Repeat("9", 11)})
		require.Error(t, err)
		details := ValidationDetails(err)
		require.Len(t, details, 2)
		assert.Equal(t, "invoice_number", details[0].Field)
		assert.Equal(t, "Must be at most 10 characters", details[0].Message)
		assert.Equal(t, "lines", details[1].Field)
		assert.Equal(t, "This field is required", details[1].Message)
	})
}

func TestHandleValidationError(t *testing.T) {
	require.NoError(t, SetupValidator())

	r := gin.New()
	r.Use(RequestID())
	r.POST("/invoices", func(c *gin.Context) {
		var req invoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	t.Run("validation failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"invoice_number":"INV-1","lines":[{"sku":"A","ordered_qty":"-1"}]}`
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "lines[0].ordered_qty", resp.Error.Details[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{"invoice_number":`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.True(t, strings.HasPrefix(resp.Error.Message, "Invalid request body"))
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("valid request", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"invoice_number":"INV-1","lines":[{"sku":"A","ordered_qty":"2.5"}]}`
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body)))
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func operatorRouter(cfg OperatorConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), OperatorIdentity(cfg))
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"operator":     GetOperator(c),
			"ctx_operator": logger.GetOperator(c.Request.Context()),
			"has_claims":   GetClaims(c) != nil,
		})
	}
	r.GET("/scan", handler)
	r.GET("/health", handler)
	return r
}

func decodeOperator(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOperatorIdentity_Header(t *testing.T) {
	r := operatorRouter(OperatorConfig{})

	t.Run("header names operator", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/scan", nil)
		req.Header.Set(OperatorHeader, "  alice  ")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeOperator(t, w)
		assert.Equal(t, "alice", body["operator"])
		assert.Equal(t, "alice", body["ctx_operator"])
		assert.Equal(t, false, body["has_claims"])
	})

	t.Run("anonymous without header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scan", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", decodeOperator(t, w)["operator"])
	})

	t.Run("long names are truncated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/scan", nil)
		req.Header.Set(OperatorHeader, strings.Repeat("b", 300))
		r.ServeHTTP(w, req)

		assert.Len(t, decodeOperator(t, w)["operator"], MaxOperatorLength)
	})
}

func TestOperatorIdentity_JWT(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{Enabled: true, Secret: "test-secret-of-sufficient-length!", Issuer: "test"})
	r := operatorRouter(OperatorConfig{JWTService: svc, SkipPaths: []string{"/health"}})

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.GenerateToken("user-7", "Bob", time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/scan", nil)
		req.Header.Set("Authorization", BearerPrefix+token)
		req.Header.Set(OperatorHeader, "mallory")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeOperator(t, w)
		assert.Equal(t, "Bob", body["operator"])
		assert.Equal(t, true, body["has_claims"])
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scan", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken("user-7", "Bob", -time.Minute)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/scan", nil)
		req.Header.Set("Authorization", BearerPrefix+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeTokenExpired, resp.Error.Code)
	})

	t.Run("skip path", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	r := gin.New()
	r.Use(RequestID(), Tracing("test-service"), OperatorIdentity(OperatorConfig{}), SpanAttributes())
	r.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/42", nil)
	req.Header.Set(RequestIDHeader, "trace-req")
	req.Header.Set(OperatorHeader, "carol")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	first := spans[0]
	assert.Contains(t, first.Name(), "/sessions/:id")
	attrs := map[string]string{}
	for _, kv := range first.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "trace-req", attrs["request_id"])
	assert.Equal(t, "carol", attrs["operator"])

	assert.Equal(t, "Error", spans[1].Status().Code.String())
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	mw, err := HTTPMetrics(mp.Meter("test"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(mw)
	r.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/sessions/1", "/sessions/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	routes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_server_request_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value("http.route")
				routes[route.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), routes["/sessions/:id"])
	assert.Equal(t, int64(1), routes["unmatched"])
}

func TestProfilingLabels(t *testing.T) {
	r := gin.New()
	r.Use(ProfilingLabels("/api/v1/health"))
	labelOf := func(c *gin.Context) {
		route, _ := pprof.Label(c.Request.Context(), "route")
		c.String(http.StatusOK, route)
	}
	r.GET("/api/v1/receiving/sessions/:id", labelOf)
	r.GET("/api/v1/health", labelOf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/receiving/sessions/42", nil))
	assert.Equal(t, "/api/v1/receiving/sessions/:id", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Empty(t, w.Body.String())
}
