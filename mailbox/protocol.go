package mailbox

import (
	"github.com/sarchlab/cohesim/sim"
)

// Status is the outcome of a mailbox operation. Full and empty conditions
// are reported here, never as failures; the caller retries.
type Status int

// Possible mailbox operation outcomes.
const (
	StatusOK Status = iota
	StatusFull
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFull:
		return "full"
	case StatusEmpty:
		return "empty"
	}

	return "unknown"
}

// A SendReq pushes one word into the destination core's mailbox.
type SendReq struct {
	sim.MsgMeta

	DestCore int
	Payload  uint32
}

// Meta returns the message meta.
func (r *SendReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned SendReq with a different ID.
func (r *SendReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// SendReqBuilder can build mailbox send requests.
type SendReqBuilder struct {
	src, dst sim.RemotePort
	destCore int
	payload  uint32
}

// WithSrc sets the source of the request to build.
func (b SendReqBuilder) WithSrc(src sim.RemotePort) SendReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b SendReqBuilder) WithDst(dst sim.RemotePort) SendReqBuilder {
	b.dst = dst
	return b
}

// WithDestCore sets the core whose mailbox receives the payload.
func (b SendReqBuilder) WithDestCore(destCore int) SendReqBuilder {
	b.destCore = destCore
	return b
}

// WithPayload sets the word to deliver.
func (b SendReqBuilder) WithPayload(payload uint32) SendReqBuilder {
	b.payload = payload
	return b
}

// Build creates a new SendReq.
func (b SendReqBuilder) Build() *SendReq {
	r := &SendReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.DestCore = b.destCore
	r.Payload = b.payload

	return r
}

// A RecvReq pops one word from a core's mailbox.
type RecvReq struct {
	sim.MsgMeta

	CoreID int
}

// Meta returns the message meta.
func (r *RecvReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned RecvReq with a different ID.
func (r *RecvReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// RecvReqBuilder can build mailbox receive requests.
type RecvReqBuilder struct {
	src, dst sim.RemotePort
	coreID   int
}

// WithSrc sets the source of the request to build.
func (b RecvReqBuilder) WithSrc(src sim.RemotePort) RecvReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b RecvReqBuilder) WithDst(dst sim.RemotePort) RecvReqBuilder {
	b.dst = dst
	return b
}

// WithCoreID sets the core whose mailbox is read.
func (b RecvReqBuilder) WithCoreID(coreID int) RecvReqBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new RecvReq.
func (b RecvReqBuilder) Build() *RecvReq {
	r := &RecvReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 4
	r.CoreID = b.coreID

	return r
}

// An OpRsp completes a send or receive with a status and, for receives,
// the popped word.
type OpRsp struct {
	sim.MsgMeta

	RespondTo string
	Status    Status
	Payload   uint32
}

// Meta returns the message meta.
func (r *OpRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned OpRsp with a different ID.
func (r *OpRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request that the response is responding to.
func (r *OpRsp) GetRspTo() string {
	return r.RespondTo
}

// OpRspBuilder can build mailbox operation responses.
type OpRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	status   Status
	payload  uint32
}

// WithSrc sets the source of the response to build.
func (b OpRspBuilder) WithSrc(src sim.RemotePort) OpRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b OpRspBuilder) WithDst(dst sim.RemotePort) OpRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets ID of the request that the response to build is replying to.
func (b OpRspBuilder) WithRspTo(id string) OpRspBuilder {
	b.rspTo = id
	return b
}

// WithStatus sets the outcome of the operation.
func (b OpRspBuilder) WithStatus(status Status) OpRspBuilder {
	b.status = status
	return b
}

// WithPayload sets the word popped by a receive.
func (b OpRspBuilder) WithPayload(payload uint32) OpRspBuilder {
	b.payload = payload
	return b
}

// Build creates a new OpRsp.
func (b OpRspBuilder) Build() *OpRsp {
	r := &OpRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.RespondTo = b.rspTo
	r.Status = b.status
	r.Payload = b.payload

	return r
}
