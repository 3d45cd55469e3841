package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"erpick/internal/attachment"
	"erpick/internal/domain"
	"erpick/internal/eventbus"
)

// Executor handles command execution
type Executor struct {
	ctx *CommandContext
}

// NewExecutor creates a new command executor. A nil logger is replaced by
// a no-op one
func NewExecutor(ctx context.Context, bus eventbus.EventBus, docs Submitter, atts *attachment.Set, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		ctx: &CommandContext{
			Ctx:         ctx,
			Bus:         bus,
			Documents:   docs,
			Attachments: atts,
			Log:         log,
		},
	}
}

// ExecuteSubmit creates and executes a submit command
func (e *Executor) ExecuteSubmit(doc domain.Document) tea.Cmd {
	return NewSubmitCommand(e.ctx, doc).Execute()
}

// ExecuteUpload creates and executes an upload command
func (e *Executor) ExecuteUpload(path string) tea.Cmd {
	return NewUploadCommand(e.ctx, path).Execute()
}

// ExecuteRemoveAttachment creates and executes a remove command
func (e *Executor) ExecuteRemoveAttachment(id string) tea.Cmd {
	return NewRemoveAttachmentCommand(e.ctx, id).Execute()
}
