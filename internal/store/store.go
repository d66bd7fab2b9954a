package store

import (
	"sync"

	"book-aggregator-go/market"
)

// EventSink 接收 store 发布事件，便于日志/调试。
type EventSink func(string, map[string]interface{})

// Store 保存每个交易所的最新快照和最新合并簿。
// 三个槽位各自加锁：写方只在替换指针时持锁，读方只在复制指针时持锁。
// 快照与合并簿发布后不可变，读方拿到指针后可在锁外随意读取。
type Store struct {
	snapshots [market.NumVenues]snapshotSlot
	merged    mergedSlot
	sink      EventSink
}

type snapshotSlot struct {
	mu   sync.RWMutex
	snap *market.VenueSnapshot
}

type mergedSlot struct {
	mu   sync.RWMutex
	book *market.MergedBook
}

func New(sink EventSink) *Store {
	return &Store{sink: sink}
}

// Snapshot 返回 venue 最新快照；从未成功拉取返回 nil。
func (s *Store) Snapshot(venue market.Venue) *market.VenueSnapshot {
	slot := s.slot(venue)
	if slot == nil {
		return nil
	}
	slot.mu.RLock()
	snap := slot.snap
	slot.mu.RUnlock()
	return snap
}

// PublishSnapshot 整体替换 venue 的快照。
func (s *Store) PublishSnapshot(snap *market.VenueSnapshot) {
	if snap == nil {
		return
	}
	slot := s.slot(snap.Venue)
	if slot == nil {
		return
	}
	slot.mu.Lock()
	slot.snap = snap
	slot.mu.Unlock()
	s.logEvent("snapshot_published", map[string]interface{}{
		"venue": snap.Venue.String(),
		"bids":  len(snap.Bids),
		"asks":  len(snap.Asks),
	})
}

// MergedBook 返回最新合并簿；尚未构建返回 nil。
func (s *Store) MergedBook() *market.MergedBook {
	s.merged.mu.RLock()
	book := s.merged.book
	s.merged.mu.RUnlock()
	return book
}

// PublishMergedBook 整体替换合并簿。
func (s *Store) PublishMergedBook(book *market.MergedBook) {
	if book == nil {
		return
	}
	s.merged.mu.Lock()
	s.merged.book = book
	s.merged.mu.Unlock()
	s.logEvent("merged_published", map[string]interface{}{
		"book_id": book.ID.String(),
		"bids":    len(book.Bids),
		"asks":    len(book.Asks),
	})
}

func (s *Store) slot(venue market.Venue) *snapshotSlot {
	if venue < 0 || int(venue) >= len(s.snapshots) {
		return nil
	}
	return &s.snapshots[venue]
}

func (s *Store) logEvent(event string, fields map[string]interface{}) {
	if s == nil || s.sink == nil {
		return
	}
	s.sink(event, fields)
}
