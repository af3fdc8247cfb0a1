// Package clientdist embeds the live client bundle served by the host.
package clientdist

import _ "embed"

// FeatureHubJS is the live client JavaScript bundle.
//
// It is served by the host at "/_featurehub/client.js".
//
//go:embed featurehub.js
var FeatureHubJS []byte
