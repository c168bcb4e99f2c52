// Package hue drives a networked Hue lamp over CoAP as a dispatch
// indicator: the software stand-in for a panel LED.
package hue

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-coap"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rtsched/go-rt-dispatch/core"
)

// Lamp implements core.Indicator by toggling one lamp between off and a
// fixed color. Toggles are handed to a sender goroutine through a small
// buffer so the dispatch path never waits on the network; when the buffer
// is full further toggles are dropped, which for a blinking indicator is
// harmless.
type Lamp struct {
	conn   *coap.Conn
	name   string
	color  colorful.Color
	logger core.Logger

	msgID   atomic.Uint32
	on      atomic.Bool
	toggles chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

var _ core.Indicator = (*Lamp)(nil)

// Dial connects to a CoAP gateway and binds one lamp with its blink color
// (hex, e.g. "#ff0000"). A nil logger discards send errors.
func Dial(addr, lamp, hexColor string, logger core.Logger) (*Lamp, error) {
	color, err := colorful.Hex(hexColor)
	if err != nil {
		return nil, fmt.Errorf("lamp %s: invalid color %q: %w", lamp, hexColor, err)
	}

	conn, err := coap.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("lamp %s: dial %s: %w", lamp, addr, err)
	}

	if logger == nil {
		logger = core.NewNoOpLogger()
	}

	l := &Lamp{
		conn:    conn,
		name:    lamp,
		color:   color,
		logger:  logger,
		toggles: make(chan struct{}, 8),
		done:    make(chan struct{}),
	}
	go l.sendLoop()
	return l, nil
}

// Toggle implements core.Indicator.
func (l *Lamp) Toggle() {
	select {
	case <-l.done:
		return
	default:
	}

	select {
	case l.toggles <- struct{}{}:
	default:
		// Sender is behind; dropping a blink is fine.
	}
}

// Close stops the sender goroutine; pending toggles are discarded and later
// Toggle calls become no-ops. The underlying transport exposes no close, so
// the socket is released with the Lamp itself. Safe to call more than once.
func (l *Lamp) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

func (l *Lamp) sendLoop() {
	for {
		select {
		case <-l.done:
			return
		case <-l.toggles:
		}

		if l.on.Load() {
			l.send("on=False")
			l.on.Store(false)
			continue
		}

		h, s, v := l.color.Hsv()
		l.send("on=True")
		l.send("hue=" + strconv.Itoa(int(h/360*65535)))
		l.send("sat=" + strconv.Itoa(int(s*254)))
		l.send("bri=" + strconv.Itoa(int(1+243*v)))
		l.on.Store(true)
	}
}

func (l *Lamp) send(command string) {
	req := coap.Message{
		Type:      coap.Confirmable,
		Code:      coap.PUT,
		MessageID: uint16(l.msgID.Add(1)),
		Payload:   []byte(command),
	}
	req.SetOption(coap.MaxAge, 3)
	req.SetPathString(l.name)

	if _, err := l.conn.Send(req); err != nil {
		l.logger.Warn("lamp send failed",
			core.F("lamp", l.name),
			core.F("command", command),
			core.F("error", err))
	}
}
