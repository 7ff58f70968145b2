package preferences

// Settings defines editable user preferences. Session timing lives on the
// remote store, so only app-level options are kept here.
type Settings struct {
	ServerURL string
	AuthToken string

	OverlayOpacity float64
	Fullscreen     bool
	Autostart      bool
}

// DefaultSettings returns default settings for Pomotoro.
func DefaultSettings() Settings {
	return Settings{
		ServerURL:      "http://localhost:8000",
		OverlayOpacity: 0.85,
		Fullscreen:     true,
		Autostart:      false,
	}
}
