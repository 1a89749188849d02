package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"

	modeSave   = "SAVE"
	modeStdout = "STDOUT"

	statusSuccess = "SUCCESS\n"
	statusError   = "ERROR\n"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	lis      net.Listener
	incoming chan *tcpConn
	port     int

	quit      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

func newTcpServer() Server {
	return &tcpServer{
		incoming: make(chan *tcpConn, 8),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go func() {
		defer close(s.loopDone)
		s.acceptLoop(ctx)
	}()
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)
		if line == pingRequest {
			log.Printf("singleinstance: PING from %s -> PONG", remote)
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
			continue
		}
		// Non-PING: treat first line as request (STDOUT/SAVE)
		_ = c.SetDeadline(time.Time{})
		req := Request{OutputToStdout: line == modeStdout+"\n"}
		log.Printf("singleinstance: request from %s mode=%s", remote, req.mode())
		select {
		case s.incoming <- &tcpConn{c: c, r: req, w: bw, br: br}:
		case <-ctx.Done():
			_ = c.Close()
			return
		case <-s.quit:
			_ = c.Close()
			return
		}
	}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc, ok := <-s.incoming:
		if !ok {
			return nil, net.ErrClosed
		}
		return tc, nil
	}
}

// Close stops the accept loop before closing incoming, so the loop never
// sends on a closed channel. Safe to call more than once.
func (s *tcpServer) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		if s.lis != nil {
			_ = s.lis.Close()
			<-s.loopDone
		}
		close(s.incoming)
	})
	return nil
}

type tcpConn struct {
	c  net.Conn
	r  Request
	w  *bufio.Writer
	br *bufio.Reader
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondSuccess(payload []byte) error {
	if _, err := tc.w.WriteString(statusSuccess); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := tc.w.Write(payload); err != nil {
			return err
		}
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	if _, err := tc.w.WriteString(statusError + msg); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
