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
	// Structural Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryStructural,
		Message:  "Empty element tag",
		Detail:   "An element description has an empty or blank tag name. Element descriptions must name a non-empty tag such as \"div\" or \"span\".",
		DocURL:   "https://verdant-ui.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryStructural,
		Message:  "Component description without render logic",
		Detail:   "A component description carries neither a stateless render function nor a stateful constructor.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryStructural,
		Message:  "Unknown node kind",
		Detail:   "The description's kind discriminator does not match any known variant (text, element, component).",
		DocURL:   "https://verdant-ui.dev/docs/errors/E103",
	},

	// ============================================
	// Hydration Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryHydration,
		Message:  "Hydration tag mismatch",
		Detail:   "The server-rendered element's tag does not match the tag the client expected at the same tree position. The container will be cleared and re-rendered from scratch.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryHydration,
		Message:  "Hydration node kind mismatch",
		Detail:   "The server rendered a different node kind (text vs element) than the client expected at the same tree position.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryHydration,
		Message:  "Invalid hydration state payload",
		Detail:   "The embedded serialized-state payload could not be decoded.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E203",
	},
	"E204": {
		Category: CategoryHydration,
		Message:  "Island not found",
		Detail:   "No element carrying the island boundary marker with the requested id exists in the container.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E204",
	},

	// ============================================
	// Component Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryComponent,
		Message:  "Component render failed",
		Detail:   "A component's render function returned an error or panicked. If an ancestor error boundary exists it will render fallback content.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryComponent,
		Message:  "Component rendered nil",
		Detail:   "A component's render function returned a nil description. Components must describe at least an empty text node.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E302",
	},

	// ============================================
	// DOM Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryDOM,
		Message:  "DOM update failed",
		Detail:   "A host-tree primitive operation failed while constructing or updating a subtree.",
		DocURL:   "https://verdant-ui.dev/docs/errors/E401",
	},
}

// Register adds an error template at runtime. Registered codes are available
// to New. Re-registering an existing code overwrites it.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template for a code, if registered.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
