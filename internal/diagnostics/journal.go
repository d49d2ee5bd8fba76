package diagnostics

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/skybi/soa-bridge/internal/exchange"
	"github.com/skybi/soa-bridge/internal/task"
	"sync"
	"time"
)

const (
	journalQueueSize    = 256
	journalWriteTimeout = 5 * time.Second
)

// JournalOptions configures a Journal
type JournalOptions struct {
	// Retention is the age after which journal entries are pruned; pruning is disabled if it is not positive
	Retention time.Duration

	// PruneInterval is the interval the pruning runs in
	PruneInterval time.Duration
}

// Journal persists every exchange into an exchange repository.
// Exchanges are queued and written asynchronously; if the queue is full, exchanges are dropped.
type Journal struct {
	repo    exchange.Repository
	options JournalOptions

	queue  chan *exchange.Exchange
	pruner *task.RepeatingTask

	mtx     sync.Mutex
	running bool
	closed  bool
	done    chan struct{}
}

var _ exchange.Subscriber = (*Journal)(nil)

// NewJournal creates a new journal writing into the given repository
func NewJournal(repo exchange.Repository, options JournalOptions) *Journal {
	journal := &Journal{
		repo:    repo,
		options: options,
		queue:   make(chan *exchange.Exchange, journalQueueSize),
	}
	if options.Retention > 0 && options.PruneInterval > 0 {
		journal.pruner = task.NewRepeating(journal.prune, options.PruneInterval)
	}
	return journal
}

// Start starts the background writer and the pruning task
func (journal *Journal) Start() {
	journal.mtx.Lock()
	defer journal.mtx.Unlock()
	if journal.running || journal.closed {
		return
	}
	journal.done = make(chan struct{})
	go journal.write(journal.queue, journal.done)
	if journal.pruner != nil {
		journal.pruner.Start()
	}
	journal.running = true
}

// Observe queues a single exchange for persistence.
// Exchanges observed after Close are dropped.
func (journal *Journal) Observe(record *exchange.Exchange) {
	journal.mtx.Lock()
	defer journal.mtx.Unlock()
	if journal.closed {
		log.Debug().Str("exchange_id", record.ID.String()).Msg("exchange journal is closed; dropping exchange")
		return
	}
	copied := *record
	select {
	case journal.queue <- &copied:
	default:
		log.Warn().Str("exchange_id", record.ID.String()).Msg("exchange journal queue is full; dropping exchange")
	}
}

// Close stops the pruning task and waits until every queued exchange is written
func (journal *Journal) Close() {
	journal.mtx.Lock()
	defer journal.mtx.Unlock()
	if journal.closed {
		return
	}
	journal.closed = true
	if !journal.running {
		return
	}
	if journal.pruner != nil {
		journal.pruner.Stop(false)
	}
	close(journal.queue)
	<-journal.done
	journal.running = false
}

func (journal *Journal) write(queue <-chan *exchange.Exchange, done chan<- struct{}) {
	defer close(done)
	for record := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
		if err := journal.repo.Insert(ctx, record); err != nil {
			log.Error().Err(err).Str("exchange_id", record.ID.String()).Msg("could not persist exchange")
		}
		cancel()
	}
}

func (journal *Journal) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()
	before := time.Now().Add(-journal.options.Retention)
	n, err := journal.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		log.Error().Err(err).Msg("could not prune the exchange journal")
		return
	}
	log.Debug().Int64("amount", n).Time("before", before).Msg("pruned the exchange journal")
}
