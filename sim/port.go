package sim

import (
	"fmt"
	"sync"
)

// HookPosPortMsgSend marks that a message was handed to the port for sending.
var HookPosPortMsgSend = &HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks that an inbound message arrived at the port.
var HookPosPortMsgRecvd = &HookPos{Name: "Port Msg Recv"}

// HookPosPortMsgRetrieveIncoming marks that the component took a message from
// the incoming buffer.
var HookPosPortMsgRetrieveIncoming = &HookPos{
	Name: "Port Msg Retrieve Incoming",
}

// HookPosPortMsgRetrieveOutgoing marks that the connection took a message from
// the outgoing buffer.
var HookPosPortMsgRetrieveOutgoing = &HookPos{
	Name: "Port Msg Retrieve Outgoing",
}

// A RemotePort names another port by its fully qualified name.
type RemotePort string

// A Port belongs to a component and attaches it to a connection.
type Port interface {
	Named
	Hookable

	AsRemote() RemotePort

	SetConnection(conn Connection)
	Component() Component

	// Connection-side operations.
	Deliver(msg Msg) *SendError
	NotifyAvailable()
	RetrieveOutgoing() Msg
	PeekOutgoing() Msg

	// Component-side operations.
	CanSend() bool
	Send(msg Msg) *SendError
	RetrieveIncoming() Msg
	PeekIncoming() Msg
}

// NewPort creates a port with bounded incoming and outgoing buffers.
func NewPort(
	comp Component,
	incomingBufCap, outgoingBufCap int,
	name string,
) Port {
	return &defaultPort{
		comp:        comp,
		name:        name,
		incomingBuf: NewBuffer(name+".IncomingBuf", incomingBufCap),
		outgoingBuf: NewBuffer(name+".OutgoingBuf", outgoingBufCap),
	}
}

type defaultPort struct {
	HookableBase

	mu   sync.Mutex
	name string
	comp Component
	conn Connection

	incomingBuf Buffer
	outgoingBuf Buffer
}

func (p *defaultPort) Name() string {
	return p.name
}

// AsRemote returns the name other ports use to address this port.
func (p *defaultPort) AsRemote() RemotePort {
	return RemotePort(p.name)
}

// SetConnection attaches the port to a connection. A port can only attach
// once.
func (p *defaultPort) SetConnection(conn Connection) {
	if p.conn != nil {
		panic(fmt.Sprintf(
			"connection already set to %s, now connecting to %s",
			p.conn.Name(), conn.Name(),
		))
	}

	p.conn = conn
}

// Component returns the component that owns the port.
func (p *defaultPort) Component() Component {
	return p.comp
}

// CanSend reports whether the outgoing buffer has room.
func (p *defaultPort) CanSend() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.outgoingBuf.CanPush()
}

// Send queues a message for the connection to pick up.
func (p *defaultPort) Send(msg Msg) *SendError {
	p.mu.Lock()

	p.msgMustBeValid(msg)

	if !p.outgoingBuf.CanPush() {
		p.mu.Unlock()
		return NewSendError()
	}

	wasEmpty := p.outgoingBuf.Size() == 0
	p.outgoingBuf.Push(msg)

	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgSend,
		Item:   msg,
	})
	p.mu.Unlock()

	if wasEmpty {
		p.conn.NotifySend()
	}

	return nil
}

// Deliver places an inbound message into the incoming buffer.
func (p *defaultPort) Deliver(msg Msg) *SendError {
	p.mu.Lock()

	if !p.incomingBuf.CanPush() {
		p.mu.Unlock()
		return NewSendError()
	}

	wasEmpty := p.incomingBuf.Size() == 0

	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRecvd,
		Item:   msg,
	})

	p.incomingBuf.Push(msg)
	p.mu.Unlock()

	if p.comp != nil && wasEmpty {
		p.comp.NotifyRecv(p)
	}

	return nil
}

// RetrieveIncoming takes the next inbound message, or nil if there is none.
func (p *defaultPort) RetrieveIncoming() Msg {
	p.mu.Lock()

	item := p.incomingBuf.Pop()
	if item == nil {
		p.mu.Unlock()
		return nil
	}

	if p.incomingBuf.Size() == p.incomingBuf.Capacity()-1 {
		p.conn.NotifyAvailable(p)
	}

	p.mu.Unlock()

	msg := item.(Msg)
	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRetrieveIncoming,
		Item:   msg,
	})

	return msg
}

// RetrieveOutgoing takes the next outbound message, or nil if there is none.
func (p *defaultPort) RetrieveOutgoing() Msg {
	p.mu.Lock()

	item := p.outgoingBuf.Pop()
	if item == nil {
		p.mu.Unlock()
		return nil
	}

	if p.outgoingBuf.Size() == p.outgoingBuf.Capacity()-1 {
		p.comp.NotifyPortFree(p)
	}

	p.mu.Unlock()

	msg := item.(Msg)
	p.InvokeHook(HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRetrieveOutgoing,
		Item:   msg,
	})

	return msg
}

// PeekIncoming returns the next inbound message without removing it.
func (p *defaultPort) PeekIncoming() Msg {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := p.incomingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

// PeekOutgoing returns the next outbound message without removing it.
func (p *defaultPort) PeekOutgoing() Msg {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := p.outgoingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(Msg)
}

// NotifyAvailable informs the owning component that the connection can accept
// traffic again.
func (p *defaultPort) NotifyAvailable() {
	if p.comp != nil {
		p.comp.NotifyPortFree(p)
	}
}

func (p *defaultPort) msgMustBeValid(msg Msg) {
	meta := msg.Meta()

	if p.name != string(meta.Src) {
		panic("sending port is not msg src")
	}

	if meta.Dst == "" {
		panic("dst is not given")
	}

	if meta.Src == meta.Dst {
		panic("sending back to src")
	}
}
