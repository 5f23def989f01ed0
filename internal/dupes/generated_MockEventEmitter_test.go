// Code generated by impgen. DO NOT EDIT.

package dupes_test

import (
	dupes "github.com/joe/dupes/internal/dupes"
	_imptest "github.com/toejough/imptest/imptest"
)

// EventEmitterMockEmitArgs holds typed arguments for Emit.
type EventEmitterMockEmitArgs struct {
	Event dupes.Event
}

// EventEmitterMockEmitCall wraps DependencyCall with typed GetArgs.
type EventEmitterMockEmitCall struct {
	*_imptest.DependencyCall
}

// GetArgs returns the typed arguments for this call.
func (c *EventEmitterMockEmitCall) GetArgs() EventEmitterMockEmitArgs {
	raw := c.RawArgs()
	return EventEmitterMockEmitArgs{
		Event: raw[0].(dupes.Event),
	}
}

// EventEmitterMockEmitMethod wraps DependencyMethod with typed returns.
type EventEmitterMockEmitMethod struct {
	*_imptest.DependencyMethod
	// Eventually is the async version of this method for concurrent code.
	Eventually *EventEmitterMockEmitMethod
}

// ExpectCalledWithExactly waits for a call with exactly the specified arguments.
func (m *EventEmitterMockEmitMethod) ExpectCalledWithExactly(event dupes.Event) *EventEmitterMockEmitCall {
	call := m.DependencyMethod.ExpectCalledWithExactly(event)
	return &EventEmitterMockEmitCall{DependencyCall: call}
}

// ExpectCalledWithMatches waits for a call with arguments matching the given matchers.
func (m *EventEmitterMockEmitMethod) ExpectCalledWithMatches(matchers ...any) *EventEmitterMockEmitCall {
	call := m.DependencyMethod.ExpectCalledWithMatches(matchers...)
	return &EventEmitterMockEmitCall{DependencyCall: call}
}

// EventEmitterMockHandle is the test handle for EventEmitter.
type EventEmitterMockHandle struct {
	Mock       dupes.EventEmitter
	Method     *EventEmitterMockMethods
	Controller *_imptest.Imp
}

// EventEmitterMockMethods holds method wrappers for setting expectations.
type EventEmitterMockMethods struct {
	Emit *EventEmitterMockEmitMethod
}

// MockEventEmitter creates a new EventEmitterMockHandle for testing.
func MockEventEmitter(t _imptest.TestReporter) *EventEmitterMockHandle {
	ctrl := _imptest.NewImp(t)
	methods := &EventEmitterMockMethods{
		Emit: newEventEmitterMockEmitMethod(_imptest.NewDependencyMethod(ctrl, "Emit")),
	}
	h := &EventEmitterMockHandle{
		Method:     methods,
		Controller: ctrl,
	}
	h.Mock = &mockEventEmitterImpl{handle: h}
	return h
}

// mockEventEmitterImpl implements dupes.EventEmitter.
type mockEventEmitterImpl struct {
	handle *EventEmitterMockHandle
}

// Emit implements dupes.EventEmitter.Emit.
func (impl *mockEventEmitterImpl) Emit(event dupes.Event) {
	call := &_imptest.GenericCall{
		MethodName:   "Emit",
		Args:         []any{event},
		ResponseChan: make(chan _imptest.GenericResponse, 1),
	}
	impl.handle.Controller.CallChan <- call
	resp := <-call.ResponseChan
	if resp.Type == "panic" {
		panic(resp.PanicValue)
	}

}

// newEventEmitterMockEmitMethod creates a typed method wrapper with Eventually initialized.
func newEventEmitterMockEmitMethod(dm *_imptest.DependencyMethod) *EventEmitterMockEmitMethod {
	m := &EventEmitterMockEmitMethod{DependencyMethod: dm}
	m.Eventually = &EventEmitterMockEmitMethod{DependencyMethod: dm.Eventually}
	return m
}
