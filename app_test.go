package conelab

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func TestApp_changeState(t *testing.T) {
	app := NewApp().UseStates(1, 2)

	app.changeState(2)
	if app.nextState != State(2) {
		t.Errorf("The nextState should be set correctly.")
	}
	if !app.stateTransitioning {
		t.Errorf("The stateTransitioning flag should be true.")
	}

	app.executeChangeState(2)
	if app.state != State(2) {
		t.Errorf("The app state should change correctly.")
	}
}

func TestApp_addResources(t *testing.T) {
	app := NewApp()

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)

	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := &MockResource2{name: "Resource2"}
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_addResources_RejectsNonPointer(t *testing.T) {
	app := NewApp()
	require.Panics(t, func() {
		app.addResources(MockResource1{name: "value"})
	})
}

func TestApp_callSystem_InjectsResources(t *testing.T) {
	app := NewApp()
	res := &MockResource1{name: "injected"}
	app.addResources(res)

	var got *MockResource1
	app.callSystem(func(r *MockResource1) {
		got = r
	})
	assert.Same(t, res, got, "the system should receive the registered resource")
}

func TestApp_callSystem_InjectsCommands(t *testing.T) {
	app := NewApp()

	var got *Commands
	app.callSystem(func(cmd *Commands) {
		got = cmd
	})
	require.NotNil(t, got)
	assert.Same(t, app, got.app)
}

func TestApp_callSystem_UnresolvableDependencyPanics(t *testing.T) {
	app := NewApp()
	require.Panics(t, func() {
		app.callSystem(func(r *MockResource1) {})
	})
}

func TestApp_StatefulPhases(t *testing.T) {
	app := NewApp().UseStates(1, 2)

	var calls []string
	record := func(tag string) func(cmd *Commands) {
		return func(cmd *Commands) {
			calls = append(calls, tag)
		}
	}

	app.UseSystem(System(record("enter-1")).InState(OnEnter(1)))
	app.UseSystem(System(record("exec-1")).InState(OnExecute(1)))
	app.UseSystem(System(record("exit-1")).InState(OnExit(1)))
	app.UseSystem(System(record("enter-2")).InState(OnEnter(2)))

	app.callSystems(app.state, enter)
	app.Step()
	app.changeState(2)
	app.Step()

	assert.Equal(t, []string{"enter-1", "exec-1", "exec-1", "exit-1", "enter-2"}, calls)
	assert.Equal(t, State(2), app.State())
}

func TestApp_StatelessSystemsRunEveryStep(t *testing.T) {
	app := NewApp()
	count := 0
	app.UseSystem(System(func(cmd *Commands) { count++ }).InStage(Update).RunAlways())

	app.Step()
	app.Step()
	app.Step()
	assert.Equal(t, 3, count)
}

func TestApp_StageOrder(t *testing.T) {
	app := NewApp()
	var order []string
	tag := func(name string) func(cmd *Commands) {
		return func(cmd *Commands) { order = append(order, name) }
	}

	app.UseSystem(System(tag("render")).InStage(Render).RunAlways())
	app.UseSystem(System(tag("prelude")).InStage(Prelude).RunAlways())
	app.UseSystem(System(tag("update")).InStage(Update).RunAlways())

	app.Step()
	assert.Equal(t, []string{"prelude", "update", "render"}, order)
}

func TestApp_UseStage(t *testing.T) {
	app := NewApp()
	custom := Stage{Name: "Custom"}
	app.UseStage(custom, AfterStage(Update))

	var order []string
	tag := func(name string) func(cmd *Commands) {
		return func(cmd *Commands) { order = append(order, name) }
	}
	app.UseSystem(System(tag("update")).InStage(Update).RunAlways())
	app.UseSystem(System(tag("custom")).InStage(custom).RunAlways())
	app.UseSystem(System(tag("post")).InStage(PostUpdate).RunAlways())

	app.Step()
	assert.Equal(t, []string{"update", "custom", "post"}, order)
}

func TestApp_UnknownStagePanics(t *testing.T) {
	app := NewApp()
	require.Panics(t, func() {
		app.UseSystem(System(func(cmd *Commands) {}).InStage(Stage{Name: "Nope"}).RunAlways())
	})
}

func TestApp_FinalStateRunsUntilQuit(t *testing.T) {
	app := NewApp().UseStates(1, 2)

	finalSteps := 0
	app.UseSystem(System(func(cmd *Commands) {
		if cmd.CurrentState() == 1 {
			cmd.ChangeState(2)
			return
		}
		finalSteps++
		if finalSteps == 3 {
			cmd.Quit()
		}
	}).InStage(Update).RunAlways())

	exited := false
	app.UseSystem(System(func(cmd *Commands) { exited = true }).InState(OnExit(2)))

	app.Run()

	assert.Equal(t, State(2), app.State())
	assert.Equal(t, 3, finalSteps, "the final state should keep executing until a system quits")
	assert.True(t, exited, "the final state's exit phase should fire on quit")
}

func TestApp_QuitStopsRun(t *testing.T) {
	app := NewApp()
	steps := 0
	app.UseSystem(System(func(cmd *Commands) {
		steps++
		cmd.Quit()
	}).InStage(Update).RunAlways())

	app.Run()
	assert.Equal(t, 1, steps)
}
