package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (N001-N039)
	// ============================================

	"N001": {
		Category:   CategoryRuntime,
		Message:    "No valid route found",
		Suggestion: "Add a route for the path or a base route that strips its prefix",
		DocURL:     "https://spanav.dev/docs/errors/N001",
	},
	"N002": {
		Category:   CategoryRuntime,
		Message:    "No container found",
		Suggestion: "Pass a non-nil render target to navigation.New",
		DocURL:     "https://spanav.dev/docs/errors/N002",
	},
	"N003": {
		Category:   CategoryRuntime,
		Message:    "Navigation started from inside a route handler",
		Suggestion: "Defer the navigation until the handler has returned",
		DocURL:     "https://spanav.dev/docs/errors/N003",
	},
	"N004": {
		Category:   CategoryRuntime,
		Message:    "Location rejected",
		Suggestion: "Paths must not contain backslashes or NUL bytes",
		DocURL:     "https://spanav.dev/docs/errors/N004",
	},
	"N005": {
		Category: CategoryRuntime,
		Message:  "History update failed",
		DocURL:   "https://spanav.dev/docs/errors/N005",
	},

	// ============================================
	// Protocol Errors (N040-N059)
	// ============================================

	"N040": {
		Category:   CategoryProtocol,
		Message:    "Invalid bridge frame",
		Suggestion: "Frames must be JSON objects with a known \"type\"",
		DocURL:     "https://spanav.dev/docs/errors/N040",
	},
	"N041": {
		Category:   CategoryProtocol,
		Message:    "Click on unknown element",
		Suggestion: "The page was re-rendered; stale element ids are discarded",
		DocURL:     "https://spanav.dev/docs/errors/N041",
	},
	"N042": {
		Category:   CategoryProtocol,
		Message:    "Frame received before hello",
		Suggestion: "Send a hello frame with the page href first",
		DocURL:     "https://spanav.dev/docs/errors/N042",
	},

	// ============================================
	// Route Errors (N100-N119)
	// ============================================

	"N100": {
		Category:   CategoryRoute,
		Message:    "Duplicate route",
		Suggestion: "Route keys must be unique; remove one of the entries",
		DocURL:     "https://spanav.dev/docs/errors/N100",
	},
	"N101": {
		Category:   CategoryRoute,
		Message:    "Invalid route view",
		Suggestion: "Check the view template syntax",
		DocURL:     "https://spanav.dev/docs/errors/N101",
	},

	// ============================================
	// Config Errors (N120-N149)
	// ============================================

	"N120": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check that spanav.json is valid JSON",
		DocURL:     "https://spanav.dev/docs/errors/N120",
	},
	"N121": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		DocURL:   "https://spanav.dev/docs/errors/N121",
	},
	"N122": {
		Category: CategoryConfig,
		Message:  "Invalid analytics configuration",
		DocURL:   "https://spanav.dev/docs/errors/N122",
	},
	"N123": {
		Category:   CategoryConfig,
		Message:    "No routes configured",
		Suggestion: "Add at least one entry to \"routes\"",
		DocURL:     "https://spanav.dev/docs/errors/N123",
	},
	"N141": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create spanav.json or pass --config",
		DocURL:     "https://spanav.dev/docs/errors/N141",
	},

	// ============================================
	// CLI Errors (N150-N159)
	// ============================================

	"N150": {
		Category: CategoryCLI,
		Message:  "Invalid URL argument",
		DocURL:   "https://spanav.dev/docs/errors/N150",
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
