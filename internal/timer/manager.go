// Package timer はNAS再送・ガードタイマーを管理する。
package timer

import (
	"sync"
	"time"

	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

//go:generate mockgen -source=manager.go -destination=../mocks/mock_scheduler.go -package=mocks

// Scheduler はタイマーの設定・解除を行う
type Scheduler interface {
	// Arm はハンドルに対するタイマーを設定する。同一ハンドルの既存タイマーは解除される。
	Arm(h ue.Handle, d time.Duration) ue.TimerID
	// Cancel はタイマーを解除する。発火済み・未知のIDは無視される。
	Cancel(id ue.TimerID)
}

// FireFunc はタイマー満了時に呼び出される
type FireFunc func(h ue.Handle, id ue.TimerID)

type entry struct {
	handle ue.Handle
	timer  *time.Timer
}

// Manager はtime.AfterFuncによるScheduler実装
type Manager struct {
	mu      sync.Mutex
	next    ue.TimerID
	entries map[ue.TimerID]*entry
	owners  map[ue.Handle]ue.TimerID
	fire    FireFunc
	stopped bool
}

// NewManager は新しいManagerを生成する
func NewManager(fire FireFunc) *Manager {
	return &Manager{
		entries: make(map[ue.TimerID]*entry),
		owners:  make(map[ue.Handle]ue.TimerID),
		fire:    fire,
	}
}

// Arm はタイマーを設定する
func (m *Manager) Arm(h ue.Handle, d time.Duration) ue.TimerID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.owners[h]; ok {
		m.cancelLocked(prev)
	}

	m.next++
	id := m.next
	if m.stopped {
		return id
	}

	e := &entry{handle: h}
	e.timer = time.AfterFunc(d, func() { m.expire(id) })
	m.entries[id] = e
	m.owners[h] = id
	return id
}

// Cancel はタイマーを解除する
func (m *Manager) Cancel(id ue.TimerID) {
	if id == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked(id)
}

func (m *Manager) cancelLocked(id ue.TimerID) {
	e, ok := m.entries[id]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(m.entries, id)
	if m.owners[e.handle] == id {
		delete(m.owners, e.handle)
	}
}

func (m *Manager) expire(id ue.TimerID) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
		if m.owners[e.handle] == id {
			delete(m.owners, e.handle)
		}
	}
	m.mu.Unlock()

	// 解除と満了が競合した場合は通知しない
	if !ok {
		return
	}
	m.fire(e.handle, id)
}

// Pending は未満了のタイマー数を返す
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stop は全タイマーを解除し、以降の設定を無効にする
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.entries {
		m.cancelLocked(id)
	}
	m.stopped = true
}
