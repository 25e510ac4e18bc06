// Package tracing provides a hook-based API for components to report the
// tasks they perform, and tracers that record those tasks.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/cohesim/sim"
)

// NamedHookable is a named object that hooks can attach to.
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// Hook positions that tracers attach to.
var (
	HookPosTaskStart = &sim.HookPos{Name: "HookPosTaskStart"}
	HookPosTaskStep  = &sim.HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &sim.HookPos{Name: "HookPosTaskEnd"}
)

func invokeTaskHook(domain NamedHookable, pos *sim.HookPos, task Task) {
	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    pos,
	})
}

// StartTask reports the start of a task to the domain's hooks. It is a no-op
// when no hook is attached.
func StartTask(
	id string,
	parentID string,
	domain NamedHookable,
	kind string,
	what string,
	detail interface{},
) {
	if domain.NumHooks() == 0 {
		return
	}

	invokeTaskHook(domain, HookPosTaskStart, Task{
		ID:       id,
		ParentID: parentID,
		Kind:     kind,
		What:     what,
		Where:    domain.Name(),
		Detail:   detail,
	})
}

// AddTaskStep reports a milestone reached while processing a task.
func AddTaskStep(id string, domain NamedHookable, what string) {
	if domain.NumHooks() == 0 {
		return
	}

	invokeTaskHook(domain, HookPosTaskStep, Task{
		ID:    id,
		Steps: []TaskStep{{What: what}},
	})
}

// EndTask reports the completion of a task.
func EndTask(id string, domain NamedHookable) {
	if domain.NumHooks() == 0 {
		return
	}

	invokeTaskHook(domain, HookPosTaskEnd, Task{ID: id})
}

// MsgIDAtReceiver derives the task ID used for handling a message at its
// receiver.
func MsgIDAtReceiver(msg sim.Msg, domain NamedHookable) string {
	return fmt.Sprintf("%s@%s", msg.Meta().ID, domain.Name())
}

// TraceReqInitiate starts a "req_out" task. The sender of a request calls it
// when the request leaves.
func TraceReqInitiate(
	msg sim.Msg,
	domain NamedHookable,
	taskParentID string,
) {
	StartTask(
		msg.Meta().ID+"_req_out",
		taskParentID,
		domain,
		"req_out",
		reflect.TypeOf(msg).String(),
		msg,
	)
}

// TraceReqReceive starts a "req_in" task. The receiver of a request calls it
// when the request arrives.
func TraceReqReceive(msg sim.Msg, domain NamedHookable) {
	StartTask(
		MsgIDAtReceiver(msg, domain),
		msg.Meta().ID+"_req_out",
		domain,
		"req_in",
		reflect.TypeOf(msg).String(),
		msg,
	)
}

// TraceReqComplete ends the "req_in" task once the request is fully served.
func TraceReqComplete(msg sim.Msg, domain NamedHookable) {
	EndTask(MsgIDAtReceiver(msg, domain), domain)
}

// TraceReqFinalize ends the "req_out" task once the response arrives back at
// the sender.
func TraceReqFinalize(rsp sim.Rsp, domain NamedHookable) {
	EndTask(rsp.GetRspTo()+"_req_out", domain)
}
