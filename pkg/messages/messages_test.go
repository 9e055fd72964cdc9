package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSprintf(t *testing.T) {
	tests := []struct {
		name string
		lang string
		key  string
		args []any
		want string
	}{
		{"english", "en", PermissionDenied, nil, "User denied the request for Geolocation."},
		{"english position", "en", YourPosition, []any{37.17751, -3.58803}, "Your position: Latitude: 37.1775, Longitude: -3.5880"},
		{"spanish", "es", Timeout, nil, "Se agotó el tiempo de espera para obtener la ubicación."},
		{"french region tag", "fr-CA", UnknownError, nil, "Une erreur inconnue s'est produite."},
		{"german load failure", "de", LoadFailed, []any{"Deutsch"}, "Der Reiseführer für Deutsch konnte nicht geladen werden."},
		{"chinese", "zh", PositionUnavailable, nil, "位置信息不可用。"},
		{"unknown language", "xx-invalid!", Unsupported, nil, "Geolocation is not supported by your browser."},
		{"untranslated language", "it", Welcome, nil, Welcome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sprintf(tt.lang, tt.key, tt.args...))
		})
	}
}
