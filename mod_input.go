package conelab

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Keys the configurator reacts to: digits jump to an option, arrows cycle,
// Enter/Space advances, Escape quits. Mouse drag orbits the preview camera.
const (
	Key1 int = iota
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyEnter
	KeySpace
	KeyEscape
	KeyBackspace
	KeyLeft
	KeyRight
	MouseButtonLeft
	MouseButtonRight
	keyCount
)

var keyToGlfw = map[int]glfw.Key{
	Key1:         glfw.Key1,
	Key2:         glfw.Key2,
	Key3:         glfw.Key3,
	Key4:         glfw.Key4,
	Key5:         glfw.Key5,
	Key6:         glfw.Key6,
	Key7:         glfw.Key7,
	Key8:         glfw.Key8,
	Key9:         glfw.Key9,
	Key0:         glfw.Key0,
	KeyEnter:     glfw.KeyEnter,
	KeySpace:     glfw.KeySpace,
	KeyEscape:    glfw.KeyEscape,
	KeyBackspace: glfw.KeyBackspace,
	KeyLeft:      glfw.KeyLeft,
	KeyRight:     glfw.KeyRight,
}

type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64

	// CharBuffer holds the characters typed during the previous event poll,
	// visible to consumers for exactly one frame.
	CharBuffer []rune

	pendingChars []rune
}

func (in *Input) pushChar(char rune) {
	in.pendingChars = append(in.pendingChars, char)
}

// flushChars publishes the chars collected since the last flush. Event
// polling appends to the pending side, so chars survive no matter which
// system polled the window first.
func (in *Input) flushChars() {
	in.CharBuffer = in.pendingChars
	in.pendingChars = nil
}

type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})

	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(selectionInputSystem).
			InStage(Update).
			RunAlways(),
	)
}

func inputSystem(s *WindowState, input *Input) {
	s.windowGlfw.SetCharCallback(func(w *glfw.Window, char rune) {
		input.pushChar(char)
	})
	input.flushChars()

	for key, glfwKey := range keyToGlfw {
		action := s.windowGlfw.GetKey(glfwKey)
		updateButton(input, key, action == glfw.Press)
	}

	updateButton(input, MouseButtonLeft, s.windowGlfw.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press)
	updateButton(input, MouseButtonRight, s.windowGlfw.GetMouseButton(glfw.MouseButtonRight) == glfw.Press)

	mx, my := s.windowGlfw.GetCursorPos()
	if input.Pressed[MouseButtonLeft] && !input.JustPressed[MouseButtonLeft] {
		input.MouseDeltaX = mx - input.MouseX
		input.MouseDeltaY = my - input.MouseY
	} else {
		input.MouseDeltaX = 0
		input.MouseDeltaY = 0
	}
	input.MouseX = mx
	input.MouseY = my
}

func updateButton(input *Input, key int, pressed bool) {
	input.JustPressed[key] = pressed && !input.Pressed[key]
	input.JustReleased[key] = !pressed && input.Pressed[key]
	input.Pressed[key] = pressed
}

// digitJustPressed returns the pressed digit as a 0-based option index, or
// -1. Key0 reads as the tenth option.
func digitJustPressed(input *Input) int {
	for key := Key1; key <= Key0; key++ {
		if input.JustPressed[key] {
			return key - Key1
		}
	}
	return -1
}

// selectionInputSystem maps key presses onto the current step's selection.
// Changing a selection mid-transition abandons the running animation so the
// preview recomposes from the new choice.
func selectionInputSystem(input *Input, wiz *Wizard, cmd *Commands) {
	if input.JustPressed[KeyEscape] {
		cmd.Quit()
		return
	}

	step := cmd.CurrentState()

	if input.JustPressed[KeyEnter] || input.JustPressed[KeySpace] {
		if step == StepSummary {
			cmd.Quit()
			return
		}
		wiz.RequestAdvance()
		return
	}

	changed := false
	switch step {
	case StepPaper:
		changed = pickOption(input, len(PaperOptions), int(wiz.Customization.Paper), func(i int) {
			wiz.Customization.Paper = PaperOptions[i].Type
		})
	case StepFilter:
		changed = pickOption(input, len(FilterOptions), int(wiz.Customization.Filter), func(i int) {
			wiz.Customization.Filter = FilterOptions[i].Type
		})
	case StepSize:
		changed = pickOption(input, len(ConeSizeOptions), int(wiz.Customization.Cone), func(i int) {
			wiz.Customization.Cone = ConeSizeOptions[i].Type
		})
	case StepLot:
		changed = lotInput(input, wiz)
	}

	if changed && wiz.Session.Active() {
		wiz.AbandonTransition()
	}
}

// pickOption applies digit jumps and arrow cycling over an option table.
// current is the 1-based enum value of the present selection, 0 when unset.
func pickOption(input *Input, count, current int, apply func(i int)) bool {
	if d := digitJustPressed(input); d >= 0 && d < count {
		apply(d)
		return true
	}

	delta := 0
	if input.JustPressed[KeyRight] {
		delta = 1
	} else if input.JustPressed[KeyLeft] {
		delta = -1
	}
	if delta == 0 {
		return false
	}

	idx := current - 1
	idx = (idx + delta + count) % count
	apply(idx)
	return true
}

// lotInput handles the lot step. With the custom lot selected, typed digits
// edit the free-text quantity instead of reselecting.
func lotInput(input *Input, wiz *Wizard) bool {
	if wiz.Customization.Lot == LotSizeCustom {
		edited := false
		for _, ch := range input.CharBuffer {
			if ch >= '0' && ch <= '9' {
				wiz.Customization.CustomQuantity += string(ch)
				edited = true
			}
		}
		if input.JustPressed[KeyBackspace] && wiz.Customization.CustomQuantity != "" {
			wiz.Customization.CustomQuantity = wiz.Customization.CustomQuantity[:len(wiz.Customization.CustomQuantity)-1]
			edited = true
		}
		if edited {
			return true
		}
		// arrows still leave custom mode
		return pickOption(input, len(LotOptions), int(wiz.Customization.Lot), func(i int) {
			wiz.Customization.Lot = LotOptions[i].Type
		})
	}

	return pickOption(input, len(LotOptions), int(wiz.Customization.Lot), func(i int) {
		wiz.Customization.Lot = LotOptions[i].Type
	})
}
