package radio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

// ErrUnknownAssociation は宛先アソシエーションが存在しないことを示す
var ErrUnknownAssociation = errors.New("unknown radio association")

// Poster はイベントをルーターへ投入する
type Poster func(ctx context.Context, ev emm.Event) error

// CauseAssociationLost はアソシエーション切断時に通知する解放理由
const CauseAssociationLost = "association-lost"

type association struct {
	id     uint32
	conn   net.Conn
	writer *FrameWriter

	// handles はこのアソシエーション経由で下り送信したUE
	handles map[ue.Handle]struct{}
}

// Server は無線側コラボレータとのTCPサーバー。Downlinkを実装する。
type Server struct {
	addr string
	post Poster

	mu       sync.Mutex
	listener net.Listener
	assocs   map[uint32]*association
	next     uint32
	wg       sync.WaitGroup
}

// NewServer は新しいServerを生成する
func NewServer(addr string, post Poster) *Server {
	return &Server{
		addr:   addr,
		post:   post,
		assocs: make(map[uint32]*association),
	}
}

// Listen は待ち受けを開始する
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr は待ち受けアドレスを返す
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve は接続受付ループを実行する。ctxがキャンセルされると全接続を閉じて戻る。
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		ln = s.listener
	}

	slog.Info("無線側待ち受け開始", "event_id", "RADIO_LISTEN", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
		s.closeAll()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			slog.Error("接続受付失敗", "event_id", "RADIO_ACCEPT_ERR", "error", err)
			s.wg.Wait()
			return fmt.Errorf("accept failed: %w", err)
		}
		a := s.attach(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, a)
		}()
	}
}

// attach は接続をアソシエーションとして登録する
func (s *Server) attach(conn net.Conn) *association {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	a := &association{
		id:      s.next,
		conn:    conn,
		writer:  NewFrameWriter(conn, config.RadioMaxFrameSize),
		handles: make(map[ue.Handle]struct{}),
	}
	s.assocs[a.id] = a
	slog.Info("アソシエーション確立", "event_id", "RADIO_ASSOC_UP", "assoc_id", a.id, "remote", conn.RemoteAddr().String())
	return a
}

// serveConn は1アソシエーションの上りフレームを読み込みイベントとして投入する
func (s *Server) serveConn(ctx context.Context, a *association) {
	defer s.detach(ctx, a)

	reader := NewFrameReader(a.conn, config.RadioMaxFrameSize)
	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				slog.Warn("フレーム読み込み失敗", "event_id", "RADIO_READ_ERR", "assoc_id", a.id, "error", err)
			}
			return
		}

		env, err := DecodeEnvelope(frame)
		if err != nil {
			slog.Warn("エンベロープ解析失敗", "event_id", "RADIO_MALFORMED", "assoc_id", a.id, "error", err)
			continue
		}
		ev, err := env.ToEvent(a.id)
		if err != nil {
			slog.Warn("エンベロープ変換失敗", "event_id", "RADIO_MALFORMED", "assoc_id", a.id, "error", err)
			continue
		}
		if ev.Kind == emm.EventContextReleaseComplete {
			s.forget(a.id, ev.Handle)
		}
		if err := s.post(ctx, ev); err != nil {
			slog.Warn("イベント投入失敗", "event_id", "RADIO_POST_ERR", "assoc_id", a.id, "error", err)
			return
		}
	}
}

// detach はアソシエーションを削除し、配下UEの無線コンテキスト喪失を通知する
func (s *Server) detach(ctx context.Context, a *association) {
	s.mu.Lock()
	delete(s.assocs, a.id)
	handles := make([]ue.Handle, 0, len(a.handles))
	for h := range a.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()
	a.conn.Close()

	slog.Info("アソシエーション切断", "event_id", "RADIO_ASSOC_DOWN", "assoc_id", a.id, "ue_count", len(handles))
	if ctx.Err() != nil {
		return
	}
	for _, h := range handles {
		ev := emm.Event{
			Kind:       emm.EventContextReleaseComplete,
			Handle:     h,
			Radio:      ue.RadioRef{AssocID: a.id},
			RadioCause: CauseAssociationLost,
		}
		if err := s.post(ctx, ev); err != nil {
			slog.Warn("イベント投入失敗", "event_id", "RADIO_POST_ERR", "assoc_id", a.id, "error", err)
			return
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assocs {
		a.conn.Close()
	}
}

func (s *Server) forget(assocID uint32, h ue.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.assocs[assocID]; ok {
		delete(a.handles, h)
	}
}

// send は下りEnvelopeを送信する
func (s *Server) send(ref ue.RadioRef, h ue.Handle, env *Envelope) error {
	s.mu.Lock()
	a, ok := s.assocs[ref.AssocID]
	if ok {
		a.handles[h] = struct{}{}
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAssociation, ref.AssocID)
	}

	env.EnbUeID = ref.EnbUeID
	env.MmeUeID = uint32(h)
	b, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}

	if err := a.conn.SetWriteDeadline(time.Now().Add(config.RadioWriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	return a.writer.WriteFrame(b)
}

// SendNAS は下りNASメッセージを送信する
func (s *Server) SendNAS(ref ue.RadioRef, h ue.Handle, nas []byte) error {
	return s.send(ref, h, &Envelope{Type: EnvDownlinkNAS, NAS: nas})
}

// RequestContextSetup は無線コンテキスト設定を要求する
func (s *Server) RequestContextSetup(ref ue.RadioRef, h ue.Handle, nas []byte) error {
	return s.send(ref, h, &Envelope{Type: EnvContextSetupRequest, NAS: nas})
}

// RequestContextRelease は無線コンテキスト解放を要求する
func (s *Server) RequestContextRelease(ref ue.RadioRef, h ue.Handle, cause emm.ReleaseCause) error {
	return s.send(ref, h, &Envelope{Type: EnvContextReleaseCommand, Cause: string(cause)})
}
