package queue

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []string
	requests []string
	err      error
	block    chan struct{}
}

func (n *recordingNotifier) SendOrderReceipt(_ context.Context, o *domain.Order) error {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, o.ID)
	return n.err
}

func (n *recordingNotifier) SendRequestConfirmation(_ context.Context, r *domain.CustomRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, r.ID)
	return n.err
}

func (n *recordingNotifier) snapshot() ([]string, []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.receipts...), append([]string(nil), n.requests...)
}

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatcher_DeliversInOrderPerRecipient(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(3, notifier, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	ids := []string{"ORD001", "ORD002", "ORD003", "ORD004"}
	for _, id := range ids {
		d.Dispatch(ports.Notification{
			Kind:  ports.NotifyOrderReceipt,
			Order: &domain.Order{ID: id, Customer: domain.Customer{Email: "same@example.com"}},
		})
	}
	d.Dispatch(ports.Notification{
		Kind:    ports.NotifyRequestConfirmation,
		Request: &domain.CustomRequest{ID: "req-1", Email: "other@example.com"},
	})

	waitFor(t, func() bool {
		receipts, requests := notifier.snapshot()
		return len(receipts) == len(ids) && len(requests) == 1
	})

	receipts, requests := notifier.snapshot()
	if !reflect.DeepEqual(receipts, ids) {
		t.Fatalf("expected receipts in order %v, got %v", ids, receipts)
	}
	if len(requests) != 1 || requests[0] != "req-1" {
		t.Fatalf("unexpected requests %v", requests)
	}
}

func TestDispatcher_FailuresDoNotStopWorkers(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(1, notifier, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, id := range []string{"ORD001", "ORD002"} {
		d.Dispatch(ports.Notification{Kind: ports.NotifyOrderReceipt, Order: &domain.Order{ID: id}})
	}

	waitFor(t, func() bool {
		receipts, _ := notifier.snapshot()
		return len(receipts) == 2
	})
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	notifier := &recordingNotifier{block: make(chan struct{})}
	d := NewDispatcher(1, notifier, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Dispatch(ports.Notification{Kind: ports.NotifyOrderReceipt, Order: &domain.Order{ID: "ORD001"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	close(notifier.block)
	cancel()
	d.Wait()
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	d := NewDispatcher(2, &recordingNotifier{}, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		d.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(8, &recordingNotifier{}, time.Second, zerolog.Nop())
	a := d.shardIndex("ada@example.com")
	for i := 0; i < 5; i++ {
		if got := d.shardIndex("ada@example.com"); got != a {
			t.Fatalf("shard changed from %d to %d", a, got)
		}
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard %d out of range", a)
	}
}
