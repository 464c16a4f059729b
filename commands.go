package conelab

// Module is the unit of installation: it registers resources and systems on
// an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

// Commands is the handle systems receive to mutate app-level state: step
// changes, resource registration, quitting. It is safe to construct freshly
// per system call.
type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) Quit() {
	cmd.app.Quit()
}

func (cmd *Commands) CurrentState() State {
	return cmd.app.state
}
