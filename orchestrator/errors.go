package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"configbot"
)

// Kind classifies a failed request. The HTTP surface maps each kind to a
// status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindClassification
	KindNotFound
	KindCommunication
	KindEdit
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindClassification:
		return "classification"
	case KindNotFound:
		return "not_found"
	case KindCommunication:
		return "communication"
	case KindEdit:
		return "edit"
	default:
		return "internal"
	}
}

// Extraction and provider failures of the edit step. Their messages double
// as the reason reported to clients.
var (
	ErrProvider      = errors.New("provider error")
	ErrNoJSON        = errors.New("no JSON located")
	ErrMalformedJSON = errors.New("malformed JSON")
	ErrEmptyJSON     = errors.New("empty JSON object")
)

const (
	msgMissingInput    = `Missing "input" field in request`
	msgNotIdentified   = "Could not identify application from request"
	hintNotIdentified  = "Please mention one of: chat, matchmaking, or tournament"
	msgEditFailed      = "Failed to apply configuration change"
	hintEditFailed     = "The LLM could not parse or apply your request"
	previewLimit       = 500
	communicationLabel = "Service communication error"
	internalLabel      = "Internal server error"
)

// Error is the single error type returned by Handle.
type Error struct {
	Kind    Kind
	App     configbot.App
	Message string
	Hint    string
	Details json.RawMessage
	Reason  string
	Preview string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrMissingInput is reported when a request carries no usable input.
func ErrMissingInput() *Error {
	return &Error{Kind: KindValidation, Message: msgMissingInput}
}

// NewInternalError wraps an unexpected failure, such as a recovered panic.
func NewInternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s: %s", internalLabel, err), Err: err}
}

func notIdentifiedError() *Error {
	return &Error{Kind: KindClassification, Message: msgNotIdentified, Hint: hintNotIdentified}
}

func fetchError(document string, app configbot.App, err error) *Error {
	var se *configbot.StoreError
	if errors.As(err, &se) {
		return &Error{
			Kind:    KindNotFound,
			App:     app,
			Message: fmt.Sprintf("Could not fetch %s for %s", document, app),
			Details: se.Payload,
			Err:     err,
		}
	}
	return &Error{
		Kind:    KindCommunication,
		App:     app,
		Message: fmt.Sprintf("%s: %s", communicationLabel, err),
		Err:     err,
	}
}

func editError(app configbot.App, err error, output string) *Error {
	e := &Error{
		Kind:    KindEdit,
		App:     app,
		Message: msgEditFailed,
		Hint:    hintEditFailed,
		Reason:  reasonOf(err),
		Err:     err,
	}
	if !errors.Is(err, ErrProvider) {
		e.Preview = preview(output)
	}
	return e
}

func reasonOf(err error) string {
	for _, sentinel := range []error{ErrProvider, ErrNoJSON, ErrMalformedJSON, ErrEmptyJSON} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrProvider.Error()
}

// preview returns at most previewLimit bytes of s without splitting a rune.
func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
