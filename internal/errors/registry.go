package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryConfig,
		Message:  "No module source configured",
		Detail:   "At least one module source backend must be configured so that feature apps can be fetched.",
		DocURL:   "https://featurehub.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryConfig,
		Message:  "No pages configured",
		Detail:   "The page table is empty, so the server would have nothing to serve.",
		DocURL:   "https://featurehub.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   "https://featurehub.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryConfig,
		Message:  "Invalid source URL",
		Detail:   "A configured source URL could not be parsed.",
		DocURL:   "https://featurehub.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryConfig,
		Message:  "Static directory not found",
		Detail:   "The configured static asset directory does not exist.",
		DocURL:   "https://featurehub.dev/docs/errors/E005",
	},

	// ============================================
	// Source Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategorySource,
		Message:  "Feature app module not found",
		Detail:   "The module source has no entry for the requested src.",
		DocURL:   "https://featurehub.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategorySource,
		Message:  "Feature app module too large",
		Detail:   "The module payload exceeded the configured size limit.",
		DocURL:   "https://featurehub.dev/docs/errors/E021",
	},
	"E022": {
		Category: CategorySource,
		Message:  "Feature app module could not be decoded",
		Detail:   "The module payload is not a valid feature app manifest or wasm binary.",
		DocURL:   "https://featurehub.dev/docs/errors/E022",
	},
	"E023": {
		Category: CategorySource,
		Message:  "Unsupported module source scheme",
		Detail:   "No source backend is registered for the URL scheme of the requested src.",
		DocURL:   "https://featurehub.dev/docs/errors/E023",
	},

	// ============================================
	// Serve Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryServe,
		Message:  "Server failed to start",
		Detail:   "The HTTP listener could not be started. The address may already be in use.",
		DocURL:   "https://featurehub.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryServe,
		Message:  "Shutdown timed out",
		Detail:   "Open connections did not drain within the shutdown timeout.",
		DocURL:   "https://featurehub.dev/docs/errors/E041",
	},

	// ============================================
	// CLI Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryCLI,
		Message:  "Config directory not found",
		Detail:   "The directory given to --config does not exist.",
		DocURL:   "https://featurehub.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryCLI,
		Message:  "Preload failed",
		Detail:   "One or more configured feature apps could not be loaded.",
		DocURL:   "https://featurehub.dev/docs/errors/E061",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
