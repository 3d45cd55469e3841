package eventbus

import (
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"erpick/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventSelectionChanged   = domain.EventSelectionChanged
	EventFetchFailed        = domain.EventFetchFailed
	EventDocumentSubmitted  = domain.EventDocumentSubmitted
	EventSubmitFailed       = domain.EventSubmitFailed
	EventAttachmentUploaded = domain.EventAttachmentUploaded
	EventAttachmentFailed   = domain.EventAttachmentFailed
	EventAttachmentRemoved  = domain.EventAttachmentRemoved
	EventConfigLoaded       = domain.EventConfigLoaded
	EventConfigSaved        = domain.EventConfigSaved
)

// Re-export domain event types
type SelectionChangedEvent = domain.SelectionChangedEvent
type FetchFailedEvent = domain.FetchFailedEvent
type DocumentSubmittedEvent = domain.DocumentSubmittedEvent
type SubmitFailedEvent = domain.SubmitFailedEvent
type AttachmentUploadedEvent = domain.AttachmentUploadedEvent
type AttachmentFailedEvent = domain.AttachmentFailedEvent
type AttachmentRemovedEvent = domain.AttachmentRemovedEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	log *zap.Logger

	mu       sync.RWMutex
	nextID   uint64
	handlers map[EventType][]subscription

	eventChan chan DomainEvent
	wg        sync.WaitGroup
	handlerWG sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus. A nil logger discards the bus's own logs
func New(log *zap.Logger) EventBus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &bus{
		log:       log.Named("eventbus"),
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. It never blocks; when the
// queue is full the event is dropped
func (b *bus) Publish(event DomainEvent) {
	select {
	case <-b.quit:
		b.log.Debug("bus closed, dropping event", zap.String("event", string(event.Type())))
		return
	default:
	}

	select {
	case b.eventChan <- event:
		b.log.Debug("published", zap.String("event", string(event.Type())))
	default:
		b.log.Warn("event bus channel full, dropping event", zap.String("event", string(event.Type())))
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher and waits for running handlers. Queued events
// that were not dispatched yet are discarded
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
		b.handlerWG.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := make([]subscription, len(b.handlers[event.Type()]))
			copy(subs, b.handlers[event.Type()])
			b.mu.RUnlock()

			for _, s := range subs {
				b.handlerWG.Add(1)
				go b.run(s.handler, event)
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

func (b *bus) run(h EventHandler, event DomainEvent) {
	defer b.handlerWG.Done()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panic",
				zap.String("event", string(event.Type())),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	h(event)
}
