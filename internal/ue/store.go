package ue

import (
	"fmt"
	"time"

	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// Identity はコンテキスト検索に用いる識別子
type Identity struct {
	IMSI string
	GUTI string
}

// Snapshot は集約状態のスナップショット
type Snapshot struct {
	Registered     int `json:"registered" redis:"registered"`
	Connected      int `json:"connected" redis:"connected"`
	Idle           int `json:"idle" redis:"idle"`
	DefaultBearers int `json:"default_bearers" redis:"default_bearers"`
	Contexts       int `json:"contexts" redis:"contexts"`
}

// Store は加入者コンテキストストア。
// ルーターのイベントループからのみ操作される前提のため排他制御を持たない。
type Store struct {
	contexts map[Handle]*Context
	byIMSI   map[string]Handle
	byGUTI   map[string]Handle
	next     Handle
	counters Snapshot
	now      func() time.Time
}

// NewStore は新しいStoreを生成する
func NewStore() *Store {
	return &Store{
		contexts: make(map[Handle]*Context),
		byIMSI:   make(map[string]Handle),
		byGUTI:   make(map[string]Handle),
		now:      time.Now,
	}
}

// Create は新しいコンテキストを生成する。
// 識別子が既存コンテキストに割り当て済みの場合はErrDuplicateContextを返す。
func (s *Store) Create(id Identity, radio RadioRef) (*Context, error) {
	if _, ok := s.Lookup(id); ok {
		return nil, fmt.Errorf("%w: imsi=%q guti=%q", apperr.ErrDuplicateContext, id.IMSI, id.GUTI)
	}

	s.next++
	if s.next == 0 {
		s.next = 1
	}
	c := &Context{
		Handle:    s.next,
		Radio:     radio,
		Attach:    AttachUnregistered,
		Conn:      ConnConnected,
		CreatedAt: s.now(),
	}
	c.Proc.Clear()
	s.contexts[c.Handle] = c
	if id.IMSI != "" {
		c.IMSI = id.IMSI
		s.byIMSI[id.IMSI] = c.Handle
	}
	if id.GUTI != "" {
		c.GUTI = id.GUTI
		s.byGUTI[id.GUTI] = c.Handle
	}

	s.counters.Contexts++
	s.counters.Connected++
	return c, nil
}

// Get はハンドルでコンテキストを取得する
func (s *Store) Get(h Handle) (*Context, bool) {
	c, ok := s.contexts[h]
	return c, ok
}

// Lookup はIMSI、次にGUTIでコンテキストを検索する
func (s *Store) Lookup(id Identity) (*Context, bool) {
	if id.IMSI != "" {
		if h, ok := s.byIMSI[id.IMSI]; ok {
			return s.contexts[h], true
		}
	}
	if id.GUTI != "" {
		if h, ok := s.byGUTI[id.GUTI]; ok {
			return s.contexts[h], true
		}
	}
	return nil, false
}

// BindIMSI はコンテキストにIMSIを割り当てる
func (s *Store) BindIMSI(c *Context, imsi string) error {
	if h, ok := s.byIMSI[imsi]; ok && h != c.Handle {
		return fmt.Errorf("%w: imsi bound to handle %d", apperr.ErrDuplicateContext, h)
	}
	if c.IMSI != "" && c.IMSI != imsi {
		delete(s.byIMSI, c.IMSI)
	}
	c.IMSI = imsi
	s.byIMSI[imsi] = c.Handle
	return nil
}

// AssignGUTI はコンテキストにGUTIを割り当てる。以前のGUTIは無効になる。
func (s *Store) AssignGUTI(c *Context, guti string) error {
	if h, ok := s.byGUTI[guti]; ok && h != c.Handle {
		return fmt.Errorf("%w: guti bound to handle %d", apperr.ErrDuplicateContext, h)
	}
	if c.GUTI != "" && c.GUTI != guti {
		delete(s.byGUTI, c.GUTI)
	}
	c.GUTI = guti
	s.byGUTI[guti] = c.Handle
	return nil
}

// SetAttachState は登録状態を変更し、登録数カウンタを更新する
func (s *Store) SetAttachState(c *Context, st AttachState) {
	if c.Attach == st {
		return
	}
	if c.Attach == AttachRegistered {
		s.counters.Registered--
	}
	if st == AttachRegistered {
		s.counters.Registered++
	}
	c.Attach = st
}

// SetConnState は接続状態を変更し、接続数・アイドル数カウンタを更新する
func (s *Store) SetConnState(c *Context, st ConnState) {
	if c.Conn == st {
		return
	}
	s.adjustConn(c.Conn, -1)
	s.adjustConn(st, 1)
	c.Conn = st
}

func (s *Store) adjustConn(st ConnState, delta int) {
	switch st {
	case ConnConnected:
		s.counters.Connected += delta
	case ConnIdle:
		s.counters.Idle += delta
	}
}

// AddBearer はベアラを追加する
func (s *Store) AddBearer(c *Context, b Bearer) {
	c.Bearers = append(c.Bearers, b)
	if b.Default {
		s.counters.DefaultBearers++
	}
}

// RemoveBearers は全ベアラを削除する
func (s *Store) RemoveBearers(c *Context) {
	s.counters.DefaultBearers -= c.DefaultBearers()
	c.Bearers = nil
}

// Unbind はコンテキストの識別子索引を解除する。
// コンテキスト自体とカウンタは破棄まで残る。
func (s *Store) Unbind(c *Context) {
	if c.IMSI != "" && s.byIMSI[c.IMSI] == c.Handle {
		delete(s.byIMSI, c.IMSI)
	}
	if c.GUTI != "" && s.byGUTI[c.GUTI] == c.Handle {
		delete(s.byGUTI, c.GUTI)
	}
}

// Destroy はコンテキストを破棄し、関与していた全カウンタを減算する。
// サブ手続き実行中またはコラボレータ応答待ちの場合はErrProcedureActiveを返す。
func (s *Store) Destroy(h Handle) error {
	c, ok := s.contexts[h]
	if !ok {
		return fmt.Errorf("%w: handle=%d", apperr.ErrUnknownContext, h)
	}
	if c.Busy() {
		return fmt.Errorf("%w: handle=%d proc=%s pending=%q",
			apperr.ErrProcedureActive, h, c.Proc.Kind, c.PendingRequest)
	}

	if c.Attach == AttachRegistered {
		s.counters.Registered--
	}
	s.adjustConn(c.Conn, -1)
	s.counters.DefaultBearers -= c.DefaultBearers()
	s.counters.Contexts--

	if c.IMSI != "" && s.byIMSI[c.IMSI] == h {
		delete(s.byIMSI, c.IMSI)
	}
	if c.GUTI != "" && s.byGUTI[c.GUTI] == h {
		delete(s.byGUTI, c.GUTI)
	}
	delete(s.contexts, h)
	return nil
}

// Snapshot は集約カウンタのスナップショットを返す
func (s *Store) Snapshot() Snapshot {
	return s.counters
}

// Len は生存中のコンテキスト数を返す
func (s *Store) Len() int {
	return len(s.contexts)
}
