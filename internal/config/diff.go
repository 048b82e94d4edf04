package config

import "reflect"

// Diff describes which configuration sections changed between two loads.
// Log level and render settings apply immediately; the pipeline sections
// only take effect when the next session starts.
type Diff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	RenderChanged      bool
	SourcesChanged     bool
	RecognitionChanged bool
	TranslationChanged bool
	ExportChanged      bool
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return d == Diff{}
}

// NextSessionOnly reports whether the change set contains sections that a
// running session will not pick up.
func (d Diff) NextSessionOnly() bool {
	return d.SourcesChanged || d.RecognitionChanged || d.TranslationChanged
}

// Compare returns the diff between two configs.
func Compare(old, new *Config) Diff {
	d := Diff{}

	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.LogLevel
	}
	d.RenderChanged = old.Render != new.Render
	d.SourcesChanged = !reflect.DeepEqual(old.Mic, new.Mic) ||
		!reflect.DeepEqual(old.Speaker, new.Speaker)
	d.RecognitionChanged = old.Recognition != new.Recognition
	d.TranslationChanged = !reflect.DeepEqual(old.Translation, new.Translation)
	d.ExportChanged = !reflect.DeepEqual(old.Export, new.Export)

	return d
}
