// This file was auto-generated using createmock. See the following page for
// more information:
//
//     https://github.com/jacobsa/oglemock
//

package mock_delay

import (
	fmt "fmt"
	delay "github.com/jacobsa/syncsim/delay"
	oglemock "github.com/jacobsa/oglemock"
	runtime "runtime"
	time "time"
	unsafe "unsafe"
)

type MockSource interface {
	delay.Source
	oglemock.MockObject
}

type mockSource struct {
	controller  oglemock.Controller
	description string
}

func NewMockSource(
	c oglemock.Controller,
	desc string) MockSource {
	return &mockSource{
		controller:  c,
		description: desc,
	}
}

func (m *mockSource) Oglemock_Id() uintptr {
	return uintptr(unsafe.Pointer(m))
}

func (m *mockSource) Oglemock_Description() string {
	return m.description
}

func (m *mockSource) Pick(p0 delay.Range) (o0 time.Duration) {
	// Get a file name and line number for the caller.
	_, file, line, _ := runtime.Caller(1)

	// Hand the call off to the controller, which does most of the work.
	retVals := m.controller.HandleMethodCall(
		m,
		"Pick",
		file,
		line,
		[]interface{}{p0})

	if len(retVals) != 1 {
		panic(fmt.Sprintf("mockSource.Pick: invalid return values: %v", retVals))
	}

	// o0 time.Duration
	if retVals[0] != nil {
		o0 = retVals[0].(time.Duration)
	}

	return
}
