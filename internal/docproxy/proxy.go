// Package docproxy serves published Google Docs pages stripped down for
// in-app embedding: it rewrites share links to their /pub form, fetches the
// page and injects CSS that hides the publish chrome.
package docproxy

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	publishedDocRe = regexp.MustCompile(`(?i)docs\.google\.com/document/d/e/([^/]+)/pub`)
	docIDRe        = regexp.MustCompile(`(?i)docs\.google\.com/document/d/([^/]+)`)
	embeddedRe     = regexp.MustCompile(`(?i)[?&]embedded=true`)
	headOpenRe     = regexp.MustCompile(`(?i)<head[^>]*>`)
	htmlOpenRe     = regexp.MustCompile(`(?i)<html[^>]*>`)
)

const baseTag = `<base href="https://docs.google.com/">`

const injectedCSS = `<style>
#publish-banner, .publish-banner, .docos-punch-viewer-banner,
.docs-ml-header, header[role="banner"], .header, .footer { display: none !important; }
html, body { margin:0 !important; padding:0 !important; }
* { box-sizing: border-box; }
.c12 { padding: 0 !important; margin: 0 !important; }
.doc-content { padding: 0 !important; margin: 0 !important; }
img, video { max-width: 100% !important; height: auto !important; }
</style>`

// Handler proxies published document pages.
type Handler struct {
	client *http.Client
}

// NewHandler creates a proxy with a bounded upstream timeout.
func NewHandler() *Handler {
	return &Handler{client: &http.Client{Timeout: 15 * time.Second}}
}

func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleOptions answers CORS preflight.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleEmbed handles GET /docs/embed?url=...
func (h *Handler) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)

	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "Missing url", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, NormalizePublishURL(raw), nil)
	if err != nil {
		http.Error(w, "Proxy error", http.StatusInternalServerError)
		return
	}
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	req.Header.Set("User-Agent", userAgent)

	upstream, err := h.client.Do(req)
	if err != nil {
		http.Error(w, "Proxy error", http.StatusInternalServerError)
		return
	}
	defer upstream.Body.Close()

	if upstream.StatusCode < 200 || upstream.StatusCode > 299 {
		http.Error(w, fmt.Sprintf("Upstream %d", upstream.StatusCode), http.StatusBadGateway)
		return
	}

	body, err := io.ReadAll(upstream.Body)
	if err != nil {
		http.Error(w, "Proxy error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(injectHead(string(body))))
}

// NormalizePublishURL rewrites a Google Docs link to its published /pub form
// and makes sure embedded=true is set. Non-Docs URLs pass through with only
// the embed flag added.
func NormalizePublishURL(raw string) string {
	if raw == "" {
		return ""
	}
	if m := publishedDocRe.FindStringSubmatch(raw); m != nil {
		return addEmbeddedParam("https://docs.google.com/document/d/e/" + m[1] + "/pub")
	}
	if m := docIDRe.FindStringSubmatch(raw); m != nil {
		return addEmbeddedParam("https://docs.google.com/document/d/" + m[1] + "/pub")
	}
	return addEmbeddedParam(raw)
}

func addEmbeddedParam(u string) string {
	if u == "" || embeddedRe.MatchString(u) {
		return u
	}
	if strings.Contains(u, "?") {
		return u + "&embedded=true"
	}
	return u + "?embedded=true"
}

// injectHead inserts the base tag and cleanup CSS into the document head so
// relative assets resolve and the publish chrome disappears.
func injectHead(html string) string {
	injection := baseTag + "\n" + injectedCSS
	if loc := headOpenRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + "\n" + injection + "\n" + html[loc[1]:]
	}
	if loc := htmlOpenRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + "<head>" + injection + "</head>" + html[loc[1]:]
	}
	return injection + html
}
