package i18n

import "sync/atomic"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "model").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"config_error":        "invalid model configuration",
		"required":            "required field missing",
		"unexpected_argument": "unexpected keyword argument",
		"validation_error":    "validation failed",
		"unknown_key":         "unknown key",
		"frozen":              "model is frozen",
		"parse_error":         "parse error",
		"serialization_error": "serialization failed",
		"recursion_limit":     "nesting too deep",
	},
	"ja": {
		"config_error":        "モデル設定が不正です",
		"required":            "必須フィールドが不足しています",
		"unexpected_argument": "想定外のキーワード引数です",
		"validation_error":    "検証に失敗しました",
		"unknown_key":         "未知のキーです",
		"frozen":              "モデルは変更できません",
		"parse_error":         "解析エラー",
		"serialization_error": "シリアライズに失敗しました",
		"recursion_limit":     "ネストが深すぎます",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if msg, ok := messages[t.lang][code]; ok {
		if m := data["model"]; m != "" {
			return m + ": " + msg
		}
		return msg
	}
	return code
}

// holder keeps the stored concrete type stable for atomic.Value.
type holder struct{ tr Translator }

var current atomic.Value

func init() { current.Store(holder{dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(holder{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(holder{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().(holder).tr.Message(code, data)
}
