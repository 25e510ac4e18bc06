package irqaggr

import (
	"github.com/sarchlab/cohesim/sim"
)

// RegOp selects which register a RegWriteReq targets.
type RegOp int

// Writable registers of the aggregator.
const (
	RegPriority RegOp = iota
	RegThreshold
	RegRaise
	RegComplete
)

// A RegWriteReq programs one register of the aggregator, raises a source,
// or completes a claimed interrupt.
type RegWriteReq struct {
	sim.MsgMeta

	Op     RegOp
	Source int
	CoreID int
	Value  int
}

// Meta returns the message meta.
func (r *RegWriteReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned RegWriteReq with a different ID.
func (r *RegWriteReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// RegWriteReqBuilder can build register write requests.
type RegWriteReqBuilder struct {
	src, dst sim.RemotePort
	op       RegOp
	source   int
	coreID   int
	value    int
}

// WithSrc sets the source of the request to build.
func (b RegWriteReqBuilder) WithSrc(src sim.RemotePort) RegWriteReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b RegWriteReqBuilder) WithDst(dst sim.RemotePort) RegWriteReqBuilder {
	b.dst = dst
	return b
}

// WithOp sets the register to write.
func (b RegWriteReqBuilder) WithOp(op RegOp) RegWriteReqBuilder {
	b.op = op
	return b
}

// WithSource sets the interrupt source that the write refers to.
func (b RegWriteReqBuilder) WithSource(source int) RegWriteReqBuilder {
	b.source = source
	return b
}

// WithCoreID sets the core that the write refers to.
func (b RegWriteReqBuilder) WithCoreID(coreID int) RegWriteReqBuilder {
	b.coreID = coreID
	return b
}

// WithValue sets the value to write.
func (b RegWriteReqBuilder) WithValue(value int) RegWriteReqBuilder {
	b.value = value
	return b
}

// Build creates a new RegWriteReq.
func (b RegWriteReqBuilder) Build() *RegWriteReq {
	r := &RegWriteReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.Op = b.op
	r.Source = b.source
	r.CoreID = b.coreID
	r.Value = b.value

	return r
}

// A ClaimReq asks for the highest-priority pending interrupt above the
// core's threshold.
type ClaimReq struct {
	sim.MsgMeta

	CoreID int
}

// Meta returns the message meta.
func (r *ClaimReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned ClaimReq with a different ID.
func (r *ClaimReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// ClaimReqBuilder can build claim requests.
type ClaimReqBuilder struct {
	src, dst sim.RemotePort
	coreID   int
}

// WithSrc sets the source of the request to build.
func (b ClaimReqBuilder) WithSrc(src sim.RemotePort) ClaimReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b ClaimReqBuilder) WithDst(dst sim.RemotePort) ClaimReqBuilder {
	b.dst = dst
	return b
}

// WithCoreID sets the claiming core.
func (b ClaimReqBuilder) WithCoreID(coreID int) ClaimReqBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new ClaimReq.
func (b ClaimReqBuilder) Build() *ClaimReq {
	r := &ClaimReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 4
	r.CoreID = b.coreID

	return r
}

// A ClaimRsp carries the claimed source. Source 0 means nothing was
// claimable.
type ClaimRsp struct {
	sim.MsgMeta

	RespondTo string
	Source    int
}

// Meta returns the message meta.
func (r *ClaimRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned ClaimRsp with a different ID.
func (r *ClaimRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request that the response is responding to.
func (r *ClaimRsp) GetRspTo() string {
	return r.RespondTo
}

// ClaimRspBuilder can build claim responses.
type ClaimRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	source   int
}

// WithSrc sets the source of the response to build.
func (b ClaimRspBuilder) WithSrc(src sim.RemotePort) ClaimRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b ClaimRspBuilder) WithDst(dst sim.RemotePort) ClaimRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets ID of the request that the response to build is replying to.
func (b ClaimRspBuilder) WithRspTo(id string) ClaimRspBuilder {
	b.rspTo = id
	return b
}

// WithSource sets the claimed interrupt source.
func (b ClaimRspBuilder) WithSource(source int) ClaimRspBuilder {
	b.source = source
	return b
}

// Build creates a new ClaimRsp.
func (b ClaimRspBuilder) Build() *ClaimRsp {
	r := &ClaimRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.RespondTo = b.rspTo
	r.Source = b.source

	return r
}
