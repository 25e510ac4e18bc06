package sim

// SendError reports that a message could not be delivered or accepted.
type SendError struct{}

// NewSendError creates a SendError.
func NewSendError() *SendError {
	return &SendError{}
}

// A Connection delivers messages between the ports plugged into it.
type Connection interface {
	Named
	Hookable

	PlugIn(port Port)
	Unplug(port Port)
	NotifyAvailable(port Port)
	NotifySend()
}

// HookPosConnStartSend marks that a connection accepted a message to send.
var HookPosConnStartSend = &HookPos{Name: "Conn Start Send"}

// HookPosConnDeliver marks that a connection delivered a message.
var HookPosConnDeliver = &HookPos{Name: "Conn Deliver"}
