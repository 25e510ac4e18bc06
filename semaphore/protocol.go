package semaphore

import (
	"github.com/sarchlab/cohesim/sim"
)

// Status is the outcome of a semaphore operation.
type Status int

// Possible semaphore operation outcomes. A release of an unowned semaphore
// is ignored, not fatal.
const (
	StatusGranted Status = iota
	StatusWait
	StatusIgnored
)

func (s Status) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusWait:
		return "wait"
	case StatusIgnored:
		return "ignored"
	}

	return "unknown"
}

// An AcquireReq tries to take one count of a semaphore.
type AcquireReq struct {
	sim.MsgMeta

	SemID  int
	CoreID int
}

// Meta returns the message meta.
func (r *AcquireReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned AcquireReq with a different ID.
func (r *AcquireReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// AcquireReqBuilder can build acquire requests.
type AcquireReqBuilder struct {
	src, dst sim.RemotePort
	semID    int
	coreID   int
}

// WithSrc sets the source of the request to build.
func (b AcquireReqBuilder) WithSrc(src sim.RemotePort) AcquireReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b AcquireReqBuilder) WithDst(dst sim.RemotePort) AcquireReqBuilder {
	b.dst = dst
	return b
}

// WithSemID sets the semaphore to acquire.
func (b AcquireReqBuilder) WithSemID(semID int) AcquireReqBuilder {
	b.semID = semID
	return b
}

// WithCoreID sets the acquiring core.
func (b AcquireReqBuilder) WithCoreID(coreID int) AcquireReqBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new AcquireReq.
func (b AcquireReqBuilder) Build() *AcquireReq {
	r := &AcquireReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.SemID = b.semID
	r.CoreID = b.coreID

	return r
}

// A ReleaseReq returns one count of a semaphore.
type ReleaseReq struct {
	sim.MsgMeta

	SemID  int
	CoreID int
}

// Meta returns the message meta.
func (r *ReleaseReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned ReleaseReq with a different ID.
func (r *ReleaseReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// ReleaseReqBuilder can build release requests.
type ReleaseReqBuilder struct {
	src, dst sim.RemotePort
	semID    int
	coreID   int
}

// WithSrc sets the source of the request to build.
func (b ReleaseReqBuilder) WithSrc(src sim.RemotePort) ReleaseReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b ReleaseReqBuilder) WithDst(dst sim.RemotePort) ReleaseReqBuilder {
	b.dst = dst
	return b
}

// WithSemID sets the semaphore to release.
func (b ReleaseReqBuilder) WithSemID(semID int) ReleaseReqBuilder {
	b.semID = semID
	return b
}

// WithCoreID sets the releasing core.
func (b ReleaseReqBuilder) WithCoreID(coreID int) ReleaseReqBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new ReleaseReq.
func (b ReleaseReqBuilder) Build() *ReleaseReq {
	r := &ReleaseReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.SemID = b.semID
	r.CoreID = b.coreID

	return r
}

// An OpRsp completes an acquire or a release with a status outcome.
type OpRsp struct {
	sim.MsgMeta

	RespondTo string
	SemID     int
	Status    Status
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

// OpRspBuilder can build semaphore operation responses.
type OpRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	semID    int
	status   Status
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

// WithSemID sets the semaphore that the response describes.
func (b OpRspBuilder) WithSemID(semID int) OpRspBuilder {
	b.semID = semID
	return b
}

// WithStatus sets the outcome of the operation.
func (b OpRspBuilder) WithStatus(status Status) OpRspBuilder {
	b.status = status
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
	r.SemID = b.semID
	r.Status = b.status

	return r
}

// A GrantRsp tells a previously waiting core that it now owns the
// semaphore.
type GrantRsp struct {
	sim.MsgMeta

	SemID  int
	CoreID int
}

// Meta returns the message meta.
func (r *GrantRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned GrantRsp with a different ID.
func (r *GrantRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GrantRspBuilder can build grant responses.
type GrantRspBuilder struct {
	src, dst sim.RemotePort
	semID    int
	coreID   int
}

// WithSrc sets the source of the grant to build.
func (b GrantRspBuilder) WithSrc(src sim.RemotePort) GrantRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the grant to build.
func (b GrantRspBuilder) WithDst(dst sim.RemotePort) GrantRspBuilder {
	b.dst = dst
	return b
}

// WithSemID sets the granted semaphore.
func (b GrantRspBuilder) WithSemID(semID int) GrantRspBuilder {
	b.semID = semID
	return b
}

// WithCoreID sets the core that the grant is addressed to.
func (b GrantRspBuilder) WithCoreID(coreID int) GrantRspBuilder {
	b.coreID = coreID
	return b
}

// Build creates a new GrantRsp.
func (b GrantRspBuilder) Build() *GrantRsp {
	r := &GrantRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8
	r.SemID = b.semID
	r.CoreID = b.coreID

	return r
}
