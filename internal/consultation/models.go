package consultation

import (
	"github.com/fdg312/curo/internal/advice"
	"github.com/fdg312/curo/internal/theme"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseResulted   Phase = "resulted"
)

type NoticeKind string

const (
	NoticeValidation    NoticeKind = "validation"
	NoticeConfiguration NoticeKind = "configuration"
	NoticeError         NoticeKind = "error"
)

// Notice is a transient message for the user. It is replaced on the next
// edit or submit.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

var (
	noticeSymptomsRequired = Notice{
		Kind:        NoticeValidation,
		Title:       "Please enter your symptoms",
		Description: "Describe how you're feeling to get personalized advice.",
	}
	noticeCredentialMissing = Notice{
		Kind:        NoticeConfiguration,
		Title:       "API Key Missing",
		Description: "OpenAI API key is not configured. Save a key to continue.",
	}
	noticeAdviceFailed = Notice{
		Kind:        NoticeError,
		Title:       "Error",
		Description: "Failed to get health advice. Please try again.",
	}
)

// Patch edits the input; nil fields are left alone.
type Patch struct {
	Symptoms        *string `json:"symptoms"`
	IncludeDiet     *bool   `json:"include_diet"`
	IncludeExercise *bool   `json:"include_exercise"`
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Phase      Phase                `json:"phase"`
	Editable   bool                 `json:"editable"`
	Input      advice.Input         `json:"input"`
	Theme      theme.ID             `json:"theme"`
	ThemeClass string               `json:"theme_class"`
	Advice     *advice.HealthAdvice `json:"advice,omitempty"`
	Tone       advice.Tone          `json:"tone,omitempty"`
	Degraded   bool                 `json:"degraded"`
	Notice     *Notice              `json:"notice,omitempty"`
}

// ErrorResponse carries the consultation state alongside the error when the
// request reached a controller, so the client can render the notice.
type ErrorResponse struct {
	Error        ErrorDetail `json:"error"`
	Consultation *Snapshot   `json:"consultation,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ExportResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}
