package handlers

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"erpick/internal/api"
	"erpick/internal/ui/commands"
	"erpick/internal/ui/selector"
	"erpick/internal/ui/state"
)

// ResultHandler applies the outcome of background work to the document state
type ResultHandler struct {
	state *state.DocumentState
}

// NewResultHandler creates a new result handler
func NewResultHandler(s *state.DocumentState) *ResultHandler {
	return &ResultHandler{state: s}
}

// Handle processes a result message. It reports false for messages it does
// not know
func (h *ResultHandler) Handle(msg tea.Msg) bool {
	switch m := msg.(type) {
	case commands.SubmittedMsg:
		h.state.Busy = ""
		if m.Err != nil {
			h.state.SetStatus("Submit failed: "+Describe(m.Err), true)
			return true
		}
		h.state.MarkSubmitted(m.ID)
		h.state.SetStatus(fmt.Sprintf("Saved as %s. Press n for a new document", m.ID), false)

	case commands.AttachmentUploadedMsg:
		h.state.Busy = ""
		if m.Err != nil {
			h.state.SetStatus(fmt.Sprintf("Could not attach %s: %s", m.Filename, Describe(m.Err)), true)
			return true
		}
		h.state.SetStatus("Attached "+m.Attachment.Filename, false)

	case commands.AttachmentRemovedMsg:
		h.state.Busy = ""
		if m.Err != nil {
			h.state.SetStatus("Could not remove attachment: "+Describe(m.Err), true)
			return true
		}
		h.state.SetStatus("Attachment removed", false)

	case selector.FetchFailedMsg:
		h.state.SetStatus(fmt.Sprintf("%s: %s", m.Field, Describe(m.Err)), true)

	default:
		return false
	}
	return true
}

// Describe turns backend errors into short status bar text
func Describe(err error) string {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "not authorized, check the API token"
	case errors.Is(err, api.ErrNotFound):
		return "not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}
