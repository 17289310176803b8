package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/htmlstate"
	htmlstatehttp "github.com/fwojciec/htmlstate/http"
	"github.com/fwojciec/htmlstate/mock"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Convert(t *testing.T) {
	t.Parallel()

	t.Run("returns converted state as JSON string", func(t *testing.T) {
		t.Parallel()

		var got string
		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				got = html
				return `{"root":{"children":[]}}`, nil
			},
		}
		srv := htmlstatehttp.NewServer(conv)

		req := httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("<p>Hi</p>"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<p>Hi</p>", got)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.NotEmpty(t, rec.Header().Get("X-Conversion-ID"))
		assert.NotEmpty(t, rec.Header().Get("ETag"))

		var body string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, `{"root":{"children":[]}}`, body)
	})

	t.Run("rejects other methods with 405", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				t.Fatal("converter must not be called")
				return "", nil
			},
		}
		srv := htmlstatehttp.NewServer(conv)

		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			req := httptest.NewRequest(method, htmlstatehttp.ConvertPath, nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
			assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String(), method)
		}
	})

	t.Run("maps conversion failure to 500", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "", htmlstate.Errorf(htmlstate.EINVALID, "failed to parse HTML: boom")
			},
		}
		srv := htmlstatehttp.NewServer(conv)

		req := httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("<p>"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"failed to parse HTML: boom"}`, rec.Body.String())
	})

	t.Run("hides internal error details", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "", errors.New("secret detail")
			},
		}
		srv := htmlstatehttp.NewServer(conv)

		req := httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("<p>"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal error"}`, rec.Body.String())
	})

	t.Run("rejects oversized bodies with 413", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return `{}`, nil
			},
		}
		srv := htmlstatehttp.NewServer(conv, htmlstatehttp.WithMaxBodyBytes(4))

		req := httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("<p>too long</p>"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("returns 304 when ETag matches", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return `{"root":{}}`, nil
			},
		}
		srv := htmlstatehttp.NewServer(conv)

		first := httptest.NewRecorder()
		srv.ServeHTTP(first, httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("<p>x</p>")))
		require.Equal(t, http.StatusOK, first.Code)
		etag := first.Header().Get("ETag")

		req := httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("<p>x</p>"))
		req.Header.Set("If-None-Match", etag)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("rate limits conversions with 429", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return `{}`, nil
			},
		}
		srv := htmlstatehttp.NewServer(conv, htmlstatehttp.WithRateLimit(0.001, 1))

		first := httptest.NewRecorder()
		srv.ServeHTTP(first, httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("a")))
		second := httptest.NewRecorder()
		srv.ServeHTTP(second, httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("a")))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("rejects other methods before rate limiting", func(t *testing.T) {
		t.Parallel()

		conv := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return `{}`, nil
			},
		}
		srv := htmlstatehttp.NewServer(conv, htmlstatehttp.WithRateLimit(0.001, 1))

		first := httptest.NewRecorder()
		srv.ServeHTTP(first, httptest.NewRequest(http.MethodPost, htmlstatehttp.ConvertPath, strings.NewReader("a")))
		require.Equal(t, http.StatusOK, first.Code)

		for range 3 {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, htmlstatehttp.ConvertPath, nil))

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String())
		}
	})
}

func TestServer_HTTPServer(t *testing.T) {
	t.Parallel()

	srv := htmlstatehttp.NewServer(&mock.Converter{}, htmlstatehttp.WithRequestTimeout(20*time.Second))

	hs := srv.HTTPServer(":0")

	assert.Equal(t, ":0", hs.Addr)
	assert.Equal(t, 20*time.Second, hs.ReadTimeout)
	assert.Greater(t, hs.WriteTimeout, 20*time.Second)
	assert.Positive(t, hs.ReadHeaderTimeout)
}

func TestServer_Index(t *testing.T) {
	t.Parallel()

	srv := htmlstatehttp.NewServer(&mock.Converter{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "POST your html in body to /api/convert")
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv := htmlstatehttp.NewServer(&mock.Converter{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
