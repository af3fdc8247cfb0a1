package server

import (
	"net/http"

	clientdist "github.com/JorgeRod2594/feature-hub/client/dist"
)

// ClientScriptPath is where the embedded live client is served. Pages
// reference it from their closing body.
const ClientScriptPath = "/_featurehub/client.js"

// handleClientScript serves the embedded live client bundle. The bundle
// changes only with the binary, so an hour of caching is safe.
func handleClientScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(clientdist.FeatureHubJS)
}
