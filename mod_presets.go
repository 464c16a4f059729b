package conelab

import (
	"encoding/json"
	"fmt"
	"os"
)

// Saved configuration presets: the full customization state as JSON, keyed
// by the stable option IDs rather than enum values so files survive table
// reordering.

type overrideData struct {
	Color      string `json:"color,omitempty"`
	TextureURL string `json:"texture_url,omitempty"`
}

type PresetData struct {
	Paper          string       `json:"paper,omitempty"`
	Filter         string       `json:"filter,omitempty"`
	Size           string       `json:"size,omitempty"`
	Lot            string       `json:"lot,omitempty"`
	CustomQuantity string       `json:"custom_quantity,omitempty"`
	PaperOverride  overrideData `json:"paper_override,omitempty"`
	FilterOverride overrideData `json:"filter_override,omitempty"`
}

// SavePreset writes the customization state to a JSON file.
func SavePreset(state *CustomizationState, filename string) error {
	data := PresetData{
		CustomQuantity: state.CustomQuantity,
		PaperOverride:  overrideToData(state.paperOverride),
		FilterOverride: overrideToData(state.filterOverride),
	}
	if opt, ok := FindPaperOption(state.Paper); ok {
		data.Paper = opt.ID
	}
	if opt, ok := FindFilterOption(state.Filter); ok {
		data.Filter = opt.ID
	}
	if opt, ok := FindConeSizeOption(state.Cone); ok {
		data.Size = opt.ID
	}
	if opt, ok := FindLotOption(state.Lot); ok {
		data.Lot = opt.ID
	}

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0644)
}

// LoadPreset reads a preset file back into a customization state. Unknown
// option IDs fail rather than silently degrading the order.
func LoadPreset(filename string) (CustomizationState, error) {
	var state CustomizationState

	bytes, err := os.ReadFile(filename)
	if err != nil {
		return state, err
	}
	var data PresetData
	if err := json.Unmarshal(bytes, &data); err != nil {
		return state, err
	}

	if data.Paper != "" {
		opt, ok := paperOptionByID(data.Paper)
		if !ok {
			return state, fmt.Errorf("preset %q: unknown paper option %q", filename, data.Paper)
		}
		state.Paper = opt.Type
	}
	if data.Filter != "" {
		opt, ok := filterOptionByID(data.Filter)
		if !ok {
			return state, fmt.Errorf("preset %q: unknown filter option %q", filename, data.Filter)
		}
		state.Filter = opt.Type
	}
	if data.Size != "" {
		opt, ok := coneSizeOptionByID(data.Size)
		if !ok {
			return state, fmt.Errorf("preset %q: unknown size option %q", filename, data.Size)
		}
		state.Cone = opt.Type
	}
	if data.Lot != "" {
		opt, ok := lotOptionByID(data.Lot)
		if !ok {
			return state, fmt.Errorf("preset %q: unknown lot option %q", filename, data.Lot)
		}
		state.Lot = opt.Type
	}
	state.CustomQuantity = data.CustomQuantity

	if err := applyOverrideData(&state.paperOverride, data.PaperOverride); err != nil {
		return state, fmt.Errorf("preset %q: paper override: %w", filename, err)
	}
	if err := applyOverrideData(&state.filterOverride, data.FilterOverride); err != nil {
		return state, fmt.Errorf("preset %q: filter override: %w", filename, err)
	}

	return state, nil
}

func overrideToData(ov appearanceOverride) overrideData {
	data := overrideData{TextureURL: ov.textureURL}
	if ov.hasColor {
		data.Color = ov.hexColor
	}
	return data
}

func applyOverrideData(ov *appearanceOverride, data overrideData) error {
	ov.textureURL = data.TextureURL
	if data.Color != "" {
		return ov.setColor(data.Color)
	}
	return nil
}

func paperOptionByID(id string) (PaperOption, bool) {
	for _, o := range PaperOptions {
		if o.ID == id {
			return o, true
		}
	}
	return PaperOption{}, false
}

func filterOptionByID(id string) (FilterOption, bool) {
	for _, o := range FilterOptions {
		if o.ID == id {
			return o, true
		}
	}
	return FilterOption{}, false
}

func coneSizeOptionByID(id string) (ConeSizeOption, bool) {
	for _, o := range ConeSizeOptions {
		if o.ID == id {
			return o, true
		}
	}
	return ConeSizeOption{}, false
}

func lotOptionByID(id string) (LotOption, bool) {
	for _, o := range LotOptions {
		if o.ID == id {
			return o, true
		}
	}
	return LotOption{}, false
}
