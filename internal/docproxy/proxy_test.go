package docproxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePublishURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"already published",
			"https://docs.google.com/document/d/e/2PACX-abc123/pub",
			"https://docs.google.com/document/d/e/2PACX-abc123/pub?embedded=true",
		},
		{
			"published with existing embed flag",
			"https://docs.google.com/document/d/e/2PACX-abc123/pub?embedded=true",
			"https://docs.google.com/document/d/e/2PACX-abc123/pub?embedded=true",
		},
		{
			"share link rewritten to pub",
			"https://docs.google.com/document/d/1AbCdEf/edit?usp=sharing",
			"https://docs.google.com/document/d/1AbCdEf/pub?embedded=true",
		},
		{
			"non-docs url passes through",
			"https://example.com/page",
			"https://example.com/page?embedded=true",
		},
		{
			"non-docs url with query",
			"https://example.com/page?a=1",
			"https://example.com/page?a=1&embedded=true",
		},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePublishURL(tc.in))
		})
	}
}

func TestInjectHead(t *testing.T) {
	out := injectHead(`<html><head><title>Doc</title></head><body>x</body></html>`)
	assert.Contains(t, out, baseTag)
	assert.Contains(t, out, "display: none !important")
	assert.Less(t, strings.Index(out, baseTag), strings.Index(out, "<title>"), "injection must come right after <head>")
}

func TestInjectHead_NoHead(t *testing.T) {
	out := injectHead(`<html><body>x</body></html>`)
	assert.Contains(t, out, "<head>"+baseTag)
}

func TestInjectHead_BareFragment(t *testing.T) {
	out := injectHead(`<p>hello</p>`)
	assert.Contains(t, out, baseTag)
	assert.Contains(t, out, "<p>hello</p>")
}

func TestHandleEmbed_MissingURL(t *testing.T) {
	h := NewHandler()
	rec := httptest.NewRecorder()
	h.HandleEmbed(rec, httptest.NewRequest("GET", "/docs/embed", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleEmbed_ProxiesAndInjects(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("embedded"))
		w.Write([]byte(`<html><head></head><body>doc</body></html>`))
	}))
	defer upstream.Close()

	h := NewHandler()
	rec := httptest.NewRecorder()
	h.HandleEmbed(rec, httptest.NewRequest("GET", "/docs/embed?url="+upstream.URL+"/d", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), baseTag)
	assert.Contains(t, string(body), "doc")
}

func TestHandleEmbed_UpstreamErrorIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	h := NewHandler()
	rec := httptest.NewRecorder()
	h.HandleEmbed(rec, httptest.NewRequest("GET", "/docs/embed?url="+upstream.URL+"/d", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upstream 404")
}

func TestHandleOptions(t *testing.T) {
	h := NewHandler()
	rec := httptest.NewRecorder()
	h.HandleOptions(rec, httptest.NewRequest("OPTIONS", "/docs/embed", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
