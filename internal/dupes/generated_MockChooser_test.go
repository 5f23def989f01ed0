// Code generated by impgen. DO NOT EDIT.

package dupes_test

import (
	context "context"
	dupes "github.com/joe/dupes/internal/dupes"
	_imptest "github.com/toejough/imptest/imptest"
)

// ChooserMockChooseArgs holds typed arguments for Choose.
type ChooserMockChooseArgs struct {
	Ctx   context.Context
	Group dupes.Group
}

// ChooserMockChooseCall wraps DependencyCall with typed GetArgs and InjectReturnValues.
type ChooserMockChooseCall struct {
	*_imptest.DependencyCall
}

// GetArgs returns the typed arguments for this call.
func (c *ChooserMockChooseCall) GetArgs() ChooserMockChooseArgs {
	raw := c.RawArgs()
	return ChooserMockChooseArgs{
		Ctx:   raw[0].(context.Context),
		Group: raw[1].(dupes.Group),
	}
}

// InjectReturnValues specifies the typed values the mock should return.
func (c *ChooserMockChooseCall) InjectReturnValues(result0 int, result1 bool, result2 error) {
	c.DependencyCall.InjectReturnValues(result0, result1, result2)
}

// ChooserMockChooseMethod wraps DependencyMethod with typed returns.
type ChooserMockChooseMethod struct {
	*_imptest.DependencyMethod
	// Eventually is the async version of this method for concurrent code.
	Eventually *ChooserMockChooseMethod
}

// ExpectCalledWithExactly waits for a call with exactly the specified arguments.
func (m *ChooserMockChooseMethod) ExpectCalledWithExactly(ctx context.Context, group dupes.Group) *ChooserMockChooseCall {
	call := m.DependencyMethod.ExpectCalledWithExactly(ctx, group)
	return &ChooserMockChooseCall{DependencyCall: call}
}

// ExpectCalledWithMatches waits for a call with arguments matching the given matchers.
func (m *ChooserMockChooseMethod) ExpectCalledWithMatches(matchers ...any) *ChooserMockChooseCall {
	call := m.DependencyMethod.ExpectCalledWithMatches(matchers...)
	return &ChooserMockChooseCall{DependencyCall: call}
}

// ChooserMockHandle is the test handle for Chooser.
type ChooserMockHandle struct {
	Mock       dupes.Chooser
	Method     *ChooserMockMethods
	Controller *_imptest.Imp
}

// ChooserMockMethods holds method wrappers for setting expectations.
type ChooserMockMethods struct {
	Choose *ChooserMockChooseMethod
}

// MockChooser creates a new ChooserMockHandle for testing.
func MockChooser(t _imptest.TestReporter) *ChooserMockHandle {
	ctrl := _imptest.NewImp(t)
	methods := &ChooserMockMethods{
		Choose: newChooserMockChooseMethod(_imptest.NewDependencyMethod(ctrl, "Choose")),
	}
	h := &ChooserMockHandle{
		Method:     methods,
		Controller: ctrl,
	}
	h.Mock = &mockChooserImpl{handle: h}
	return h
}

// mockChooserImpl implements dupes.Chooser.
type mockChooserImpl struct {
	handle *ChooserMockHandle
}

// Choose implements dupes.Chooser.Choose.
func (impl *mockChooserImpl) Choose(ctx context.Context, group dupes.Group) (int, bool, error) {
	call := &_imptest.GenericCall{
		MethodName:   "Choose",
		Args:         []any{ctx, group},
		ResponseChan: make(chan _imptest.GenericResponse, 1),
	}
	impl.handle.Controller.CallChan <- call
	resp := <-call.ResponseChan
	if resp.Type == "panic" {
		panic(resp.PanicValue)
	}

	var result1 int
	if len(resp.ReturnValues) > 0 {
		if value, ok := resp.ReturnValues[0].(int); ok {
			result1 = value
		}
	}

	var result2 bool
	if len(resp.ReturnValues) > 1 {
		if value, ok := resp.ReturnValues[1].(bool); ok {
			result2 = value
		}
	}

	var result3 error
	if len(resp.ReturnValues) > 2 {
		if value, ok := resp.ReturnValues[2].(error); ok {
			result3 = value
		}
	}

	return result1, result2, result3
}

// newChooserMockChooseMethod creates a typed method wrapper with Eventually initialized.
func newChooserMockChooseMethod(dm *_imptest.DependencyMethod) *ChooserMockChooseMethod {
	m := &ChooserMockChooseMethod{DependencyMethod: dm}
	m.Eventually = &ChooserMockChooseMethod{DependencyMethod: dm.Eventually}
	return m
}
