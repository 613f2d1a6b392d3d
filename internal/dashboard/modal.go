package dashboard

import (
	"context"
	"strings"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/models"
)

// MsgEmptySubmission is shown when the modal is submitted without text.
const MsgEmptySubmission = "Please enter or paste some text."

// Creator submits new deals.
type Creator interface {
	CreateDeal(ctx context.Context, rawText string) (*models.Deal, error)
}

// DealsAPI is every Deals API call the dashboards make.
type DealsAPI interface {
	Lister
	Creator
	FetchOne(ctx context.Context, id string) (*models.Deal, error)
}

// Modal is the "create brief" dialog.
type Modal struct {
	open       bool
	submitting bool
	text       string
	err        string
}

// Open shows the dialog.
func (m *Modal) Open() { m.open = true }

// Close hides the dialog and discards its contents. It is ignored while a submission
// is in flight.
func (m *Modal) Close() {
	if m.submitting {
		return
	}
	m.reset()
	m.open = false
}

// SetText replaces the text being edited.
func (m *Modal) SetText(s string) {
	if m.submitting {
		return
	}
	m.text = s
}

// Submit validates the text. It returns the trimmed text to send and true, after
// which the form is disabled until Finish. Empty text sets a validation error and
// returns false.
func (m *Modal) Submit() (string, bool) {
	if m.submitting {
		return "", false
	}
	text := strings.TrimSpace(m.text)
	if text == "" {
		m.err = MsgEmptySubmission
		return "", false
	}
	m.err = ""
	m.submitting = true
	return text, true
}

// Finish records the outcome of the creation request. On success the dialog is
// cleared and closed before onSuccess runs; on failure the error is shown and the
// form is enabled again.
func (m *Modal) Finish(err error, onSuccess func()) {
	if err != nil {
		m.err = client.UserMessage(err, client.MsgCreateFailed)
		m.submitting = false
		return
	}
	m.reset()
	m.open = false
	if onSuccess != nil {
		onSuccess()
	}
}

func (m *Modal) reset() {
	m.text = ""
	m.err = ""
	m.submitting = false
}

// IsOpen reports whether the dialog is shown.
func (m *Modal) IsOpen() bool { return m.open }

// Submitting reports whether the form is disabled awaiting a response.
func (m *Modal) Submitting() bool { return m.submitting }

// Text returns the text being edited.
func (m *Modal) Text() string { return m.text }

// Error returns the inline error message, or "".
func (m *Modal) Error() string { return m.err }
