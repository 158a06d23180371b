// Package graph holds the authoritative in-memory automation graph. Every write
// goes through the Store's mutation operations, which preserve the graph
// invariants: unique ids, existing connection targets, no parallel edges and
// category-legal edges at creation time.
package graph

import (
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/events"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
)

// Listener observes committed graph mutations.
type Listener func(event events.Event)

// Store owns the blocks of one editor session. Mutations are serialized, so a
// Store may be shared between goroutines; listeners and notifications are
// dispatched after the mutation is committed.
type Store struct {
	mu     sync.Mutex
	order  []string
	blocks map[string]*models.Block

	newID    func() string
	notifier notify.Sink
	listener Listener
	logger   *slog.Logger
}

type Option func(*Store)

// WithNotifier sets the sink receiving connection outcomes.
func WithNotifier(sink notify.Sink) Option {
	return func(s *Store) {
		s.notifier = sink
	}
}

func WithListener(listener Listener) Option {
	return func(s *Store) {
		s.listener = listener
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the UUID block id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

func NewStore(opts ...Option) *Store {
	store := &Store{
		order:    make([]string, 0),
		blocks:   make(map[string]*models.Block),
		newID:    uuid.NewString,
		notifier: notify.Discard{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// AddBlock creates an unconfigured block with a fresh id and returns a copy of it.
func (s *Store) AddBlock(blockType models.BlockType, position models.Position) (*models.Block, error) {
	id := s.newID()

	block, err := models.NewBlock(id, blockType, position)
	if err != nil {
		return nil, &BlockError{Op: "AddBlock", Err: err}
	}

	s.mu.Lock()

	if _, exists := s.blocks[id]; exists {
		s.mu.Unlock()

		return nil, &BlockError{Op: "AddBlock", BlockID: id, Err: ErrDuplicateBlockID}
	}

	s.blocks[id] = block
	s.order = append(s.order, id)
	added := block.Clone()

	s.mu.Unlock()

	s.logger.Debug("Block added", "block_id", id, "type", blockType)
	s.emit(events.NewBlockAdded(added))

	return added, nil
}

// MoveBlock replaces the position of a block. Unknown ids are ignored.
func (s *Store) MoveBlock(id string, position models.Position) bool {
	s.mu.Lock()

	block, ok := s.blocks[id]
	if ok {
		block.Position = position
	}

	s.mu.Unlock()

	if !ok {
		return false
	}

	s.emit(events.NewBlockMoved(id, position))

	return true
}

// ConfigureBlock replaces the block config and recomputes Configured. It reports
// false without error when the id is unknown.
func (s *Store) ConfigureBlock(id string, config models.BlockConfig) (bool, error) {
	if config == nil {
		return false, &BlockError{Op: "ConfigureBlock", BlockID: id, Err: ErrNilConfig}
	}

	s.mu.Lock()

	block, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()

		return false, nil
	}

	err := s.configureLocked(block, config)
	configured := block.Configured

	s.mu.Unlock()

	if err != nil {
		return false, &BlockError{Op: "ConfigureBlock", BlockID: id, Err: err}
	}

	s.configured(id, configured)

	return true, nil
}

// MergeBlockConfig overlays loosely typed fields on the current config of a
// block. The read, merge and write happen under one lock.
func (s *Store) MergeBlockConfig(id string, fields map[string]any) (bool, error) {
	s.mu.Lock()

	block, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()

		return false, nil
	}

	current := block.Config
	if current == nil {
		current = block.Type.EmptyConfig()
	}

	merged, err := models.MergeConfig(current, fields)
	if err == nil {
		err = s.configureLocked(block, merged)
	}

	configured := block.Configured

	s.mu.Unlock()

	if err != nil {
		return false, &BlockError{Op: "MergeBlockConfig", BlockID: id, Err: err}
	}

	s.configured(id, configured)

	return true, nil
}

// configureLocked installs config on block. s.mu must be held.
func (s *Store) configureLocked(block *models.Block, config models.BlockConfig) error {
	if config.BlockType() != block.Type {
		return ErrConfigTypeMismatch
	}

	block.Config = config
	block.Configured = models.IsConfigured(config)

	return nil
}

func (s *Store) configured(id string, configured bool) {
	s.logger.Debug("Block configured", "block_id", id, "configured", configured)
	s.emit(events.NewBlockConfigured(id, configured))
}

// Connect appends toID to fromID's connections after validating the edge. The
// outcome is also reported to the notification sink.
func (s *Store) Connect(fromID, toID string) error {
	s.mu.Lock()

	err := s.validateConnection(fromID, toID)
	if err == nil {
		s.blocks[fromID].Connections = append(s.blocks[fromID].Connections, toID)
	}

	s.mu.Unlock()

	if err != nil {
		s.logger.Info("Connection rejected", "source_id", fromID, "target_id", toID, "error", err)
		s.notifier.Notify(notify.Error(UserMessage(err)))

		return err
	}

	s.logger.Debug("Blocks connected", "source_id", fromID, "target_id", toID)
	s.notifier.Notify(notify.Success(UserMessage(nil)))
	s.emit(events.NewConnectionCreated(fromID, toID))

	return nil
}

// CanConnect runs the connection checks without mutating the store or notifying.
func (s *Store) CanConnect(fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.validateConnection(fromID, toID)
}

func (s *Store) validateConnection(fromID, toID string) error {
	source, sourceExists := s.blocks[fromID]
	target, targetExists := s.blocks[toID]

	var err error

	switch {
	case !sourceExists || !targetExists:
		err = ErrInvalidBlocks
	case fromID == toID:
		err = ErrSelfConnection
	case source.HasConnection(toID):
		err = ErrDuplicateConnection
	case !models.IsConnectionValid(source.Category, target.Category):
		err = ErrInvalidCategoryPairing
	default:
		return nil
	}

	return &ConnectionError{Op: "Connect", SourceID: fromID, TargetID: toID, Err: err}
}

// Disconnect removes toID from fromID's connections if present.
func (s *Store) Disconnect(fromID, toID string) bool {
	s.mu.Lock()

	removed := false
	if source, ok := s.blocks[fromID]; ok {
		before := len(source.Connections)
		source.Connections = slices.DeleteFunc(source.Connections, func(id string) bool { return id == toID })
		removed = len(source.Connections) != before
	}

	s.mu.Unlock()

	if removed {
		s.emit(events.NewConnectionRemoved(fromID, toID))
	}

	return removed
}

// DeleteBlock removes a block and strips it from every remaining block's connections.
func (s *Store) DeleteBlock(id string) bool {
	s.mu.Lock()

	if _, ok := s.blocks[id]; !ok {
		s.mu.Unlock()

		return false
	}

	delete(s.blocks, id)
	s.order = slices.DeleteFunc(s.order, func(blockID string) bool { return blockID == id })

	for _, block := range s.blocks {
		block.Connections = slices.DeleteFunc(block.Connections, func(target string) bool { return target == id })
	}

	s.mu.Unlock()

	s.logger.Debug("Block deleted", "block_id", id)
	s.emit(events.NewBlockDeleted(id))

	return true
}

// ReplaceAll discards the current graph and installs copies of blocks as given.
// Positions and connections are trusted and not re-validated.
func (s *Store) ReplaceAll(blocks []*models.Block) {
	order := make([]string, 0, len(blocks))
	installed := make(map[string]*models.Block, len(blocks))

	for _, block := range blocks {
		if block == nil {
			continue
		}

		if _, seen := installed[block.ID]; !seen {
			order = append(order, block.ID)
		}

		installed[block.ID] = block.Clone()
	}

	s.mu.Lock()
	s.order = order
	s.blocks = installed
	s.mu.Unlock()

	s.logger.Debug("Graph replaced", "blocks", len(order))
	s.emit(events.NewGraphReplaced(len(order)))
}

// Blocks returns copies of all blocks in insertion order.
func (s *Store) Blocks() []*models.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Block, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.blocks[id].Clone())
	}

	return out
}

// Block returns a copy of the block with the given id.
func (s *Store) Block(id string) (*models.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, ok := s.blocks[id]
	if !ok {
		return nil, false
	}

	return block.Clone(), true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}

// Incoming returns the ids of blocks connecting into id, in insertion order.
func (s *Store) Incoming(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := make([]string, 0)

	for _, blockID := range s.order {
		if s.blocks[blockID].HasConnection(id) {
			incoming = append(incoming, blockID)
		}
	}

	return incoming
}

func (s *Store) emit(event events.Event) {
	if s.listener != nil {
		s.listener(event)
	}
}
