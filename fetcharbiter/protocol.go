package fetcharbiter

import (
	"github.com/sarchlab/cohesim/sim"
)

// A FetchReq asks for one instruction block.
type FetchReq struct {
	sim.MsgMeta

	Address uint64
	CoreID  int
}

// Meta returns the message meta.
func (r *FetchReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned FetchReq with a different ID.
func (r *FetchReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// FetchReqBuilder can build fetch requests.
type FetchReqBuilder struct {
	src, dst sim.RemotePort
	address  uint64
	coreID   int
}

// WithSrc sets the source of the request to build.
func (b FetchReqBuilder) WithSrc(src sim.RemotePort) FetchReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b FetchReqBuilder) WithDst(dst sim.RemotePort) FetchReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the address to fetch from.
func (b FetchReqBuilder) WithAddress(address uint64) FetchReqBuilder {
	b.address = address
	return b
}

// WithCoreID sets the fetching core.
func (b FetchReqBuilder) WithCoreID(coreID int) FetchReqBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new FetchReq.
func (b FetchReqBuilder) Build() *FetchReq {
	r := &FetchReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.Address = b.address
	r.CoreID = b.coreID

	return r
}

// A FetchRsp carries one full instruction block back to the core.
type FetchRsp struct {
	sim.MsgMeta

	RespondTo string
	Data      []byte
}

// Meta returns the message meta.
func (r *FetchRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned FetchRsp with a different ID.
func (r *FetchRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request that the response is responding to.
func (r *FetchRsp) GetRspTo() string {
	return r.RespondTo
}

// FetchRspBuilder can build fetch responses.
type FetchRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	data     []byte
}

// WithSrc sets the source of the response to build.
func (b FetchRspBuilder) WithSrc(src sim.RemotePort) FetchRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b FetchRspBuilder) WithDst(dst sim.RemotePort) FetchRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets ID of the request that the response to build is replying to.
func (b FetchRspBuilder) WithRspTo(id string) FetchRspBuilder {
	b.rspTo = id
	return b
}

// WithData sets the instruction block of the response to build.
func (b FetchRspBuilder) WithData(data []byte) FetchRspBuilder {
	b.data = data
	return b
}

// Build creates a new FetchRsp.
func (b FetchRspBuilder) Build() *FetchRsp {
	r := &FetchRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = len(b.data) + 4
	r.RespondTo = b.rspTo
	r.Data = b.data

	return r
}
