package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	chatQueueSize  = 32
	chatWorkerIdle = time.Minute
)

// chatQueue feeds one chat's updates to a single worker. pending counts
// updates handed to the channel but not yet received, and is guarded by
// Bot.queuesMu.
type chatQueue struct {
	updates chan tgbotapi.Update
	pending int
}

func updateChatID(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID
	}
	return 0
}

// dispatch queues the update behind earlier updates from the same chat,
// starting a worker for the chat if none is running.
func (b *Bot) dispatch(ctx context.Context, wg *sync.WaitGroup, update tgbotapi.Update) {
	chatID := updateChatID(update)

	b.queuesMu.Lock()
	q, ok := b.queues[chatID]
	if !ok {
		q = &chatQueue{updates: make(chan tgbotapi.Update, chatQueueSize)}
		b.queues[chatID] = q
		wg.Add(1)
		go b.work(ctx, wg, chatID, q)
	}
	q.pending++
	b.queuesMu.Unlock()

	select {
	case q.updates <- update:
	case <-ctx.Done():
	}
}

// work handles a chat's updates in arrival order and exits once the chat
// has been idle for idleTimeout.
func (b *Bot) work(ctx context.Context, wg *sync.WaitGroup, chatID int64, q *chatQueue) {
	defer wg.Done()

	idle := time.NewTimer(b.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-q.updates:
			if !ok {
				return
			}
			b.queuesMu.Lock()
			q.pending--
			b.queuesMu.Unlock()

			b.HandleUpdate(ctx, update)
			idle.Reset(b.idleTimeout)
		case <-idle.C:
			b.queuesMu.Lock()
			if q.pending == 0 {
				delete(b.queues, chatID)
				b.queuesMu.Unlock()
				return
			}
			b.queuesMu.Unlock()
			idle.Reset(b.idleTimeout)
		}
	}
}

// closeQueues lets every worker drain its queue and exit.
func (b *Bot) closeQueues() {
	b.queuesMu.Lock()
	defer b.queuesMu.Unlock()

	for chatID, q := range b.queues {
		close(q.updates)
		delete(b.queues, chatID)
	}
}
