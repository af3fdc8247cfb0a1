package featurehub

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// =============================================================================
// Asset Serving
// =============================================================================

// assetRelPath returns a sanitized relative path for an asset request.
// It rejects traversal and absolute-path tricks so asset serving cannot
// escape the configured directory.
func (a *App) assetRelPath(urlPath string) (string, bool) {
	if a.assetFS == nil || a.assetDir == "" {
		return "", false
	}

	rel := a.trimAssetPrefix(urlPath)
	if rel == "" {
		return "", false
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	// Reject platform-dependent separators.
	if strings.Contains(rel, "\\") {
		return "", false
	}

	// After prefix trimming, a leading "/" indicates an absolute-path
	// attempt (e.g. "/assets//etc/passwd" => "/etc/passwd").
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning so traversal attempts are not
	// "cleaned away" into a different request path.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	// Reject OS-absolute/volume paths after slash conversion.
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// shouldServeAsset checks if a request path should be served as an
// asset. Returns true if the file exists in the asset directory.
func (a *App) shouldServeAsset(urlPath string) bool {
	rel, ok := a.assetRelPath(urlPath)
	if !ok {
		return false
	}

	f, err := a.assetFS.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}

	return !info.IsDir()
}

// serveAsset handles asset requests.
func (a *App) serveAsset(w http.ResponseWriter, r *http.Request) {
	// Only serve GET and HEAD requests for assets
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := a.assetRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := a.assetFS.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	a.applyCacheHeaders(w, rel)

	for key, value := range a.config.Static.Headers {
		w.Header().Set(key, value)
	}

	http.ServeContent(w, r, rel, info.ModTime(), f)
}

// applyCacheHeaders applies cache control headers based on the
// configuration.
func (a *App) applyCacheHeaders(w http.ResponseWriter, filePath string) {
	switch a.config.Static.CacheControl {
	case CacheControlNone:
		// No caching - useful for development
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")

	case CacheControlProduction:
		if isFingerprinted(filePath) {
			// Fingerprinted bundles are immutable - cache for 1 year
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			// Other files - short cache with revalidation
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted checks if a file path appears to be fingerprinted.
// Fingerprinted bundles have a hash in their name, e.g.
// "checkout.a1b2c3d4.wasm".
func isFingerprinted(filePath string) bool {
	base := path.Base(filePath)

	// Split by dots: ["checkout", "a1b2c3d4", "wasm"]
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return false
	}

	// The part before the extension should look like a hash:
	// 8+ hex characters.
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}

	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}

	return true
}
