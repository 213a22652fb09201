package api

// ErrorResponse is the standardized error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is a simple acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SubjectRequest selects or deselects the current subject. An empty subject
// deselects.
type SubjectRequest struct {
	Subject string `json:"subject"`
}

// SearchRequest updates the local search filter over the subject files.
type SearchRequest struct {
	Query string `json:"query"`
}

// ConnectivityRequest feeds a reachability transition into the engine.
type ConnectivityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// ShareResultRequest reports the outcome of a clipboard share attempt.
type ShareResultRequest struct {
	OK    *bool  `json:"ok" binding:"required"`
	Title string `json:"title"`
}

// profileFields are the recognized keys for a partial profile update.
var profileFields = map[string]struct{}{
	"userName":             {},
	"schoolName":           {},
	"className":            {},
	"educationLevel":       {},
	"languagePreference":   {},
	"themePreference":      {},
	"selectedSubjects":     {},
	"customSubjects":       {},
	"homeLayout":           {},
	"hasCompletedTutorial": {},
}
