package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSelectionChanged   EventType = "SelectionChanged"
	EventFetchFailed        EventType = "FetchFailed"
	EventDocumentSubmitted  EventType = "DocumentSubmitted"
	EventSubmitFailed       EventType = "SubmitFailed"
	EventAttachmentUploaded EventType = "AttachmentUploaded"
	EventAttachmentFailed   EventType = "AttachmentFailed"
	EventAttachmentRemoved  EventType = "AttachmentRemoved"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SelectionChangedEvent is emitted when a picker field gets a new value
// ID is empty when the field was reset to "all"
type SelectionChangedEvent struct {
	Field string
	ID    string
	Label string
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// FetchFailedEvent is emitted when a backend call made on behalf of the form fails
type FetchFailedEvent struct {
	Resource string
	Err      error
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// DocumentSubmittedEvent is emitted after the backend accepted a document
type DocumentSubmittedEvent struct {
	Kind       DocumentKind
	ID         string
	GrandTotal string
}

func (e DocumentSubmittedEvent) Type() EventType { return EventDocumentSubmitted }

// SubmitFailedEvent is emitted when a document could not be submitted
type SubmitFailedEvent struct {
	Kind DocumentKind
	Err  error
}

func (e SubmitFailedEvent) Type() EventType { return EventSubmitFailed }

// AttachmentUploadedEvent is emitted when a file was attached to the draft
type AttachmentUploadedEvent struct {
	Attachment Attachment
}

func (e AttachmentUploadedEvent) Type() EventType { return EventAttachmentUploaded }

// AttachmentFailedEvent is emitted when an upload failed
type AttachmentFailedEvent struct {
	Filename string
	Err      error
}

func (e AttachmentFailedEvent) Type() EventType { return EventAttachmentFailed }

// AttachmentRemovedEvent is emitted when an attachment was deleted
type AttachmentRemovedEvent struct {
	ID string
}

func (e AttachmentRemovedEvent) Type() EventType { return EventAttachmentRemoved }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
