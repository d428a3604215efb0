package server

import (
	"io"
	"net/http"
	"net/url"
)

// handleProxy streams an upstream media URL through the service so the
// browser never fetches CDN assets cross-origin. The URL arrives
// percent-encoded in the u parameter.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("u")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing url")
		return
	}

	target, err := url.QueryUnescape(raw)
	if err != nil {
		target = raw
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid url")
		return
	}
	req.Header.Set("User-Agent", s.cfg.Instagram.UserAgent)

	resp, err := s.proxyClient.Do(req)
	if err != nil {
		s.logger.WithError(err).WithField("url", target).Warn("proxy fetch failed")
		writeError(w, http.StatusBadGateway, "Failed to fetch media")
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.WithError(err).Debug("proxy copy interrupted")
	}
}
