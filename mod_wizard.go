package conelab

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Wizard steps. They are app states: each step gets its own enter/execute/
// exit systems, and advancing is gated on the step's transition finishing.
const (
	StepPaper State = iota + 1
	StepFilter
	StepSize
	StepLot
	StepSummary
)

// appearanceOverride is an optional user override for one body. Color and
// texture are mutually exclusive in effect: when a color is set, the texture
// URL is not applied to the rendered material.
type appearanceOverride struct {
	hexColor   string
	hasColor   bool
	textureURL string
}

// CustomizationState is the full set of user selections, created with
// defaults at wizard start and mutated incrementally across steps. It lives
// for the whole session.
type CustomizationState struct {
	Paper          PaperType
	Filter         FilterType
	Cone           ConeSize
	Lot            LotSize
	CustomQuantity string

	paperOverride  appearanceOverride
	filterOverride appearanceOverride
}

// SetPaperColorOverride validates and applies a hex color override for the
// paper body. Color wins over any texture override while set.
func (s *CustomizationState) SetPaperColorOverride(hex string) error {
	return s.paperOverride.setColor(hex)
}

func (s *CustomizationState) SetPaperTextureOverride(url string) {
	s.paperOverride.textureURL = url
}

func (s *CustomizationState) ClearPaperOverride() {
	s.paperOverride = appearanceOverride{}
}

func (s *CustomizationState) SetFilterColorOverride(hex string) error {
	return s.filterOverride.setColor(hex)
}

func (s *CustomizationState) SetFilterTextureOverride(url string) {
	s.filterOverride.textureURL = url
}

func (s *CustomizationState) ClearFilterOverride() {
	s.filterOverride = appearanceOverride{}
}

func (o *appearanceOverride) setColor(hex string) error {
	if _, err := colorful.Hex(hex); err != nil {
		return fmt.Errorf("invalid override color %q: %w", hex, err)
	}
	o.hexColor = hex
	o.hasColor = true
	return nil
}

// Quantity resolves the ordered unit count, honoring the custom free-text
// lot. Unparseable custom input counts as zero.
func (s *CustomizationState) Quantity() int {
	opt, ok := FindLotOption(s.Lot)
	if !ok {
		return 0
	}
	if opt.Type == LotSizeCustom {
		var n int
		if _, err := fmt.Sscanf(s.CustomQuantity, "%d", &n); err != nil || n < 0 {
			return 0
		}
		return n
	}
	return opt.Quantity
}

// Complete reports whether every step has a selection.
func (s *CustomizationState) Complete() bool {
	if s.Paper == PaperTypeUnset || s.Filter == FilterTypeUnset || s.Cone == ConeSizeUnset || s.Lot == LotSizeUnset {
		return false
	}
	if s.Lot == LotSizeCustom && s.Quantity() == 0 {
		return false
	}
	return true
}

// Wizard holds the session: the customization state, the transition session
// animating between steps, and the pending-advance latch the transition
// completion callback sets.
type Wizard struct {
	Customization CustomizationState
	Session       *TransitionSession

	advanceReady bool
	log          Logger
}

// RequestAdvance begins the step transition. Ignored while a transition is
// already active, so a double-click can never rewind progress or double-fire
// completion.
func (w *Wizard) RequestAdvance() bool {
	return w.Session.Begin()
}

// AbandonTransition drops an in-progress transition, e.g. when the user
// changes a selection mid-animation. Any unfired completion callback is
// discarded with it.
func (w *Wizard) AbandonTransition() {
	w.Session.Reset()
	w.advanceReady = false
}

func nextStep(s State) State {
	if s >= StepSummary {
		return StepSummary
	}
	return s + 1
}

// WizardModule installs the wizard resource and the systems that advance the
// transition each frame and change step when it completes.
type WizardModule struct {
	// TransitionRate overrides the step-transition speed; zero uses the
	// brisk preset.
	TransitionRate float32
}

func (m WizardModule) Install(app *App, cmd *Commands) {
	rate := m.TransitionRate
	if rate == 0 {
		rate = TransitionRateBrisk
	}

	wizard := &Wizard{log: app.Logger()}
	wizard.Session = NewTransitionSession(rate, func() {
		wizard.advanceReady = true
	})
	cmd.AddResources(wizard)

	app.UseSystem(
		System(wizardTransitionSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(wizardAdvanceSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func wizardTransitionSystem(wiz *Wizard, time *Time) {
	if !wiz.Session.Active() {
		return
	}
	wiz.Session.Advance(time.DtSeconds())
}

func wizardAdvanceSystem(wiz *Wizard, cmd *Commands) {
	if !wiz.advanceReady {
		return
	}
	wiz.advanceReady = false

	current := cmd.CurrentState()
	next := nextStep(current)
	wiz.log.Debugf("step transition complete: %d -> %d", current, next)
	wiz.Session.Reset()
	if next != current {
		cmd.ChangeState(next)
	}
}
