package commands

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"erpick/internal/attachment"
	"erpick/internal/domain"
	"erpick/internal/eventbus"
)

// Command represents an executable action
type Command interface {
	Execute() tea.Cmd
}

// Submitter sends a finished document to the backend
type Submitter interface {
	Submit(ctx context.Context, doc domain.Document) (string, error)
}

// CommandContext provides context for command execution
type CommandContext struct {
	Ctx         context.Context
	Bus         eventbus.EventBus
	Documents   Submitter
	Attachments *attachment.Set
	Log         *zap.Logger
}

func (c *CommandContext) publish(e eventbus.DomainEvent) {
	if c.Bus != nil {
		c.Bus.Publish(e)
	}
}

func (c *CommandContext) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// SubmittedMsg reports the outcome of a submit
type SubmittedMsg struct {
	ID  string
	Err error
}

// AttachmentUploadedMsg reports the outcome of an upload
type AttachmentUploadedMsg struct {
	Filename   string
	Attachment domain.Attachment
	Err        error
}

// AttachmentRemovedMsg reports the outcome of a delete
type AttachmentRemovedMsg struct {
	ID  string
	Err error
}

// SubmitCommand posts a document
type SubmitCommand struct {
	ctx *CommandContext
	doc domain.Document
}

// NewSubmitCommand creates a new submit command
func NewSubmitCommand(ctx *CommandContext, doc domain.Document) *SubmitCommand {
	return &SubmitCommand{ctx: ctx, doc: doc}
}

// Execute performs the submit in the background
func (c *SubmitCommand) Execute() tea.Cmd {
	doc := c.doc
	return func() tea.Msg {
		id, err := c.ctx.Documents.Submit(c.ctx.context(), doc)
		if err != nil {
			c.ctx.Log.Warn("submit failed", zap.String("kind", string(doc.Kind)), zap.Error(err))
			c.ctx.publish(eventbus.SubmitFailedEvent{Kind: doc.Kind, Err: err})
			return SubmittedMsg{Err: err}
		}
		c.ctx.Log.Info("document submitted",
			zap.String("kind", string(doc.Kind)),
			zap.String("id", id),
			zap.String("grand_total", doc.GrandTotal.StringFixed(2)))
		c.ctx.publish(eventbus.DocumentSubmittedEvent{
			Kind:       doc.Kind,
			ID:         id,
			GrandTotal: doc.GrandTotal.StringFixed(2),
		})
		return SubmittedMsg{ID: id}
	}
}

// UploadCommand attaches a local file to the draft
type UploadCommand struct {
	ctx  *CommandContext
	path string
}

// NewUploadCommand creates a new upload command
func NewUploadCommand(ctx *CommandContext, path string) *UploadCommand {
	return &UploadCommand{ctx: ctx, path: path}
}

// Execute performs the upload in the background
func (c *UploadCommand) Execute() tea.Cmd {
	path := c.path
	return func() tea.Msg {
		name := filepath.Base(path)
		att, err := c.ctx.Attachments.UploadFile(c.ctx.context(), path)
		if err != nil {
			c.ctx.Log.Warn("upload failed", zap.String("file", name), zap.Error(err))
			c.ctx.publish(eventbus.AttachmentFailedEvent{Filename: name, Err: err})
			return AttachmentUploadedMsg{Filename: name, Err: err}
		}
		c.ctx.Log.Info("attachment uploaded", zap.String("id", att.ID), zap.String("file", att.Filename))
		c.ctx.publish(eventbus.AttachmentUploadedEvent{Attachment: att})
		return AttachmentUploadedMsg{Filename: name, Attachment: att}
	}
}

// RemoveAttachmentCommand deletes an attachment
type RemoveAttachmentCommand struct {
	ctx *CommandContext
	id  string
}

// NewRemoveAttachmentCommand creates a new remove command
func NewRemoveAttachmentCommand(ctx *CommandContext, id string) *RemoveAttachmentCommand {
	return &RemoveAttachmentCommand{ctx: ctx, id: id}
}

// Execute performs the delete in the background
func (c *RemoveAttachmentCommand) Execute() tea.Cmd {
	id := c.id
	return func() tea.Msg {
		if err := c.ctx.Attachments.Remove(c.ctx.context(), id); err != nil {
			c.ctx.Log.Warn("remove attachment failed", zap.String("id", id), zap.Error(err))
			return AttachmentRemovedMsg{ID: id, Err: err}
		}
		c.ctx.publish(eventbus.AttachmentRemovedEvent{ID: id})
		return AttachmentRemovedMsg{ID: id}
	}
}
