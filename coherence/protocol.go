package coherence

import (
	"github.com/sarchlab/cohesim/sim"
)

// A SnoopInvalidateReq asks a core to drop its copy of a block before a
// write from another core is allowed to proceed.
type SnoopInvalidateReq struct {
	sim.MsgMeta

	Address uint64
	CoreID  int
}

// Meta returns the message meta.
func (r *SnoopInvalidateReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned SnoopInvalidateReq with a different ID.
func (r *SnoopInvalidateReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// SnoopInvalidateReqBuilder can build snoop invalidate requests.
type SnoopInvalidateReqBuilder struct {
	src, dst sim.RemotePort
	address  uint64
	coreID   int
}

// WithSrc sets the source of the request to build.
func (b SnoopInvalidateReqBuilder) WithSrc(
	src sim.RemotePort,
) SnoopInvalidateReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b SnoopInvalidateReqBuilder) WithDst(
	dst sim.RemotePort,
) SnoopInvalidateReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the block address to invalidate.
func (b SnoopInvalidateReqBuilder) WithAddress(
	address uint64,
) SnoopInvalidateReqBuilder {
	b.address = address
	return b
}

// WithCoreID sets the core that the snoop is addressed to.
func (b SnoopInvalidateReqBuilder) WithCoreID(
	coreID int,
) SnoopInvalidateReqBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new SnoopInvalidateReq.
func (b SnoopInvalidateReqBuilder) Build() *SnoopInvalidateReq {
	r := &SnoopInvalidateReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.Address = b.address
	r.CoreID = b.coreID

	return r
}

// A SnoopAckRsp acknowledges a snoop invalidate request.
type SnoopAckRsp struct {
	sim.MsgMeta

	RespondTo string
	CoreID    int
}

// Meta returns the message meta.
func (r *SnoopAckRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned SnoopAckRsp with a different ID.
func (r *SnoopAckRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the snoop that the ack is responding to.
func (r *SnoopAckRsp) GetRspTo() string {
	return r.RespondTo
}

// SnoopAckRspBuilder can build snoop acknowledgments.
type SnoopAckRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	coreID   int
}

// WithSrc sets the source of the ack to build.
func (b SnoopAckRspBuilder) WithSrc(src sim.RemotePort) SnoopAckRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the ack to build.
func (b SnoopAckRspBuilder) WithDst(dst sim.RemotePort) SnoopAckRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the snoop that the ack to build is replying to.
func (b SnoopAckRspBuilder) WithRspTo(id string) SnoopAckRspBuilder {
	b.rspTo = id
	return b
}

// WithCoreID sets the acknowledging core.
func (b SnoopAckRspBuilder) WithCoreID(coreID int) SnoopAckRspBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new SnoopAckRsp.
func (b SnoopAckRspBuilder) Build() *SnoopAckRsp {
	r := &SnoopAckRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 4
	r.RespondTo = b.rspTo
	r.CoreID = b.coreID

	return r
}
