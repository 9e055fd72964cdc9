// Package messages holds the user-visible status lines in every guide language.
package messages

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the catalog key.
const (
	PermissionDenied    = "User denied the request for Geolocation."
	PositionUnavailable = "Location information is unavailable."
	Timeout             = "The request to get user location timed out."
	UnknownError        = "An unknown error occurred."
	Unsupported         = "Geolocation is not supported by your browser."
	YourPosition        = "Your position: Latitude: %.4f, Longitude: %.4f"
	LoadFailed          = "Failed to load guide for %s."
	Welcome             = "Welcome! Select a POI from the list or use your GPS in live mode."
	Paused              = "Paused."
	Stopped             = "Stopped."
)

var translations = map[language.Tag]map[string]string{
	language.Spanish: {
		PermissionDenied:    "El usuario denegó la solicitud de geolocalización.",
		PositionUnavailable: "La información de ubicación no está disponible.",
		Timeout:             "Se agotó el tiempo de espera para obtener la ubicación.",
		UnknownError:        "Se produjo un error desconocido.",
		Unsupported:         "Tu navegador no admite la geolocalización.",
		YourPosition:        "Tu posición: Latitud: %.4f, Longitud: %.4f",
		LoadFailed:          "No se pudo cargar la guía para %s.",
		Welcome:             "¡Bienvenido! Selecciona un punto de la lista o usa tu GPS en modo en vivo.",
		Paused:              "En pausa.",
		Stopped:             "Detenido.",
	},
	language.French: {
		PermissionDenied:    "L'utilisateur a refusé la demande de géolocalisation.",
		PositionUnavailable: "Les informations de localisation ne sont pas disponibles.",
		Timeout:             "La demande de localisation a expiré.",
		UnknownError:        "Une erreur inconnue s'est produite.",
		Unsupported:         "La géolocalisation n'est pas prise en charge par votre navigateur.",
		YourPosition:        "Votre position : Latitude : %.4f, Longitude : %.4f",
		LoadFailed:          "Impossible de charger le guide pour %s.",
		Welcome:             "Bienvenue ! Choisissez un lieu dans la liste ou utilisez votre GPS en mode direct.",
		Paused:              "En pause.",
		Stopped:             "Arrêté.",
	},
	language.German: {
		PermissionDenied:    "Der Benutzer hat die Standortanfrage abgelehnt.",
		PositionUnavailable: "Standortinformationen sind nicht verfügbar.",
		Timeout:             "Die Standortanfrage hat das Zeitlimit überschritten.",
		UnknownError:        "Ein unbekannter Fehler ist aufgetreten.",
		Unsupported:         "Geolokalisierung wird von Ihrem Browser nicht unterstützt.",
		YourPosition:        "Ihre Position: Breitengrad: %.4f, Längengrad: %.4f",
		LoadFailed:          "Der Reiseführer für %s konnte nicht geladen werden.",
		Welcome:             "Willkommen! Wählen Sie einen Ort aus der Liste oder nutzen Sie Ihr GPS im Live-Modus.",
		Paused:              "Pausiert.",
		Stopped:             "Gestoppt.",
	},
	language.Chinese: {
		PermissionDenied:    "用户拒绝了地理定位请求。",
		PositionUnavailable: "位置信息不可用。",
		Timeout:             "获取用户位置的请求超时。",
		UnknownError:        "发生未知错误。",
		Unsupported:         "您的浏览器不支持地理定位。",
		YourPosition:        "您的位置：纬度：%.4f，经度：%.4f",
		LoadFailed:          "无法加载%s的导览。",
		Welcome:             "欢迎！请从列表中选择一个地点，或在实时模式下使用 GPS。",
		Paused:              "已暂停。",
		Stopped:             "已停止。",
	},
}

var once sync.Once

func register() {
	for tag, msgs := range translations {
		for key, text := range msgs {
			_ = message.SetString(tag, key, text)
		}
	}
}

// Printer returns a printer for the guide language code. Unknown codes print English.
func Printer(code string) *message.Printer {
	once.Do(register)
	tag, err := language.Parse(code)
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	return message.NewPrinter(language.Make(base.String()))
}

// Sprintf formats key in the given language.
func Sprintf(code, key string, args ...any) string {
	return Printer(code).Sprintf(key, args...)
}
