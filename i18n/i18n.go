// Package i18n holds the user-facing message catalogue for the bot.
package i18n

// Language is a supported locale tag.
type Language string

const (
	English Language = "en"
	Russian Language = "ru"

	// Default is used before the user has picked a language and as the
	// fallback for unknown tags.
	Default = English
)

// Parse maps a raw tag onto a supported Language.
func Parse(tag string) (Language, bool) {
	switch Language(tag) {
	case English:
		return English, true
	case Russian:
		return Russian, true
	}
	return Default, false
}

// Message keys understood by T.
const (
	KeyBootstrap      = "bootstrap"
	KeyEmailChoice    = "email_choice"
	KeyEnterEmail     = "enter_email"
	KeyInvalidEmail   = "invalid_email"
	KeyEnterCode      = "enter_code"
	KeySelectLocation = "select_location"
	KeyGenerating     = "generating"
	KeySuccess        = "success"
	KeyError          = "error"
	KeyOwnEmail       = "own_email"
	KeyTempEmail      = "temp_email"
	KeyRandomLocation = "random_location"
	KeyCancelled      = "cancelled"
	KeyNoSession      = "no_session"
)

var translations = map[Language]map[string]string{
	English: {
		// The bootstrap prompt is shown before a language is chosen, so it
		// stays bilingual.
		KeyBootstrap:      "👋 Welcome / Добро пожаловать!\n\nPlease select your language / Пожалуйста, выберите язык:",
		KeyEmailChoice:    "👤 Select the authorization method in the system:",
		KeyEnterEmail:     "✉️ Please enter your email address:",
		KeyInvalidEmail:   "❌ Invalid email format. Please try again.",
		KeyEnterCode:      "🔑 Please enter the confirmation code sent to your email:",
		KeySelectLocation: "🌍 Please select a location for your VLESS config:",
		KeyGenerating:     "⚙️ Generating your VLESS configuration...",
		KeySuccess:        "✅ Your VLESS configuration is ready!\n\nScan the QR code or use the config below:",
		KeyError:          "❌ An error occurred: %s",
		KeyOwnEmail:       "📝 Own Email",
		KeyTempEmail:      "🔄 Temporary Email",
		KeyRandomLocation: "🎲 Random Location",
		KeyCancelled:      "❌ Operation cancelled. Send /start to begin again.",
		KeyNoSession:      "⚠️ No active session. Send /start to begin.",
	},
	Russian: {
		KeyEmailChoice:    "👤 Выберите способ авторизации в системе:",
		KeyEnterEmail:     "✉️ Пожалуйста, введите ваш email адрес:",
		KeyInvalidEmail:   "❌ Неверный формат email. Попробуйте снова.",
		KeyEnterCode:      "🔑 Пожалуйста, введите код подтверждения, отправленный на вашу почту:",
		KeySelectLocation: "🌍 Пожалуйста, выберите локацию для вашего VLESS конфига:",
		KeyGenerating:     "⚙️ Генерация VLESS конфигурации...",
		KeySuccess:        "✅ Ваша VLESS конфигурация готова!\n\nОтсканируйте QR код или используйте конфиг ниже:",
		KeyError:          "❌ Произошла ошибка: %s",
		KeyOwnEmail:       "📝 Своя почта",
		KeyTempEmail:      "🔄 Временная почта",
		KeyRandomLocation: "🎲 Случайная локация",
		KeyCancelled:      "❌ Операция отменена. Отправьте /start чтобы начать заново.",
		KeyNoSession:      "⚠️ Нет активной сессии. Отправьте /start чтобы начать.",
	},
}

// T returns the message for key in lang, falling back to the Default
// language and finally to the key itself.
func T(lang Language, key string) string {
	if messages, ok := translations[lang]; ok {
		if message, ok := messages[key]; ok {
			return message
		}
	}
	if message, ok := translations[Default][key]; ok {
		return message
	}
	return key
}
