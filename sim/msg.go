package sim

// A Msg is a unit of information transferred between components.
type Msg interface {
	Meta() *MsgMeta
	Clone() Msg
}

// MsgMeta carries the fields common to every message.
type MsgMeta struct {
	ID           string
	Src, Dst     RemotePort
	TrafficBytes int
}

// Rsp is a message that completes an earlier request.
type Rsp interface {
	Msg

	// GetRspTo returns the ID of the request being completed.
	GetRspTo() string
}
