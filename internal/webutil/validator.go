package webutil

import (
	"errors"
	"log"
	"reflect"
	"strings"

	"go_hifz_keep/internal/model"

	"github.com/go-playground/locales/ja" // 日本語ロケール
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja" // 日本語翻訳
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

// スーラ番号の範囲
const (
	MinSurah = 1
	MaxSurah = 114
)

var fieldNameTranslations = map[string]string{
	"name":            "名前",
	"email":           "メールアドレス",
	"phone":           "電話番号",
	"guardian_phone":  "保護者の電話番号",
	"description":     "説明",
	"plans":           "プラン",
	"sequence":        "順番",
	"plan_type":       "プラン種別",
	"content":         "暗唱範囲",
	"expected_days":   "想定日数",
	"curriculum_id":   "カリキュラムID",
	"recitation_type": "暗唱種別",
	"start_surah":     "開始スーラ",
	"start_verse":     "開始節",
	"end_surah":       "終了スーラ",
	"end_verse":       "終了節",
	"grade":           "評点",
	"evaluation":      "評価",
	"notes":           "メモ",
	"teacher_notes":   "教師メモ",
	"status":          "ステータス",
	"surah":           "スーラ",
	"verse":           "節",
	"error_type":      "誤りの種類",
	"severity":        "重大度",
	"errors":          "誤り",
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerDomainValidations(Validator)

	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	var found bool
	Trans, found = uni.GetTranslator("ja")
	if !found {
		log.Fatal("translator not found")
	}

	if err := ja_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// フィールド名を日本語に置き換えてメッセージを作る
	registerTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, translateFieldName(fe.Field()), fe.Param())
			return t
		})
	}

	registerTranslation("required", "{0}は必須項目です。")
	registerTranslation("email", "{0}は有効なメールアドレス形式ではありません。")
	registerTranslation("e164", "{0}はE.164形式 (例: +966500000000) で入力してください。")
	registerTranslation("uuid", "{0}はUUID形式で入力してください。")
	registerTranslation("gte", "{0}は{1}以上で入力してください。")
	registerTranslation("lte", "{0}は{1}以下で入力してください。")
	registerTranslation("oneof", "{0}は[{1}]のいずれかを指定してください。")
	registerTranslation("surah", "{0}は1から114の間で入力してください。")
	registerTranslation("recitation_type", "{0}はmemorization, minor_review, major_review, consolidationのいずれかを指定してください。")
	registerTranslation("plan_type", "{0}はmemorization, minor_review, major_reviewのいずれかを指定してください。")
	registerTranslation("evaluation", "{0}はexcellent, very_good, good, acceptable, weakのいずれかを指定してください。")
	registerTranslation("session_status", "{0}はongoing, incomplete, completedのいずれかを指定してください。")
	registerTranslation("verse_order", "同じスーラ内では{0}は開始節以上にしてください。")

	// min / max は文字列以外 (数値・スライス) にも使うので文言を分ける
	Validator.RegisterTranslation("min", Trans, func(ut ut.Translator) error {
		if err := ut.Add("min-string", "{0}は{1}文字以上で入力してください。", true); err != nil {
			return err
		}
		if err := ut.Add("min-items", "{0}は{1}件以上指定してください。", true); err != nil {
			return err
		}
		return ut.Add("min-number", "{0}は{1}以上で入力してください。", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(sizeTranslationKey("min", fe.Kind()), translateFieldName(fe.Field()), fe.Param())
		return t
	})
	Validator.RegisterTranslation("max", Trans, func(ut ut.Translator) error {
		if err := ut.Add("max-string", "{0}は{1}文字以下で入力してください。", true); err != nil {
			return err
		}
		if err := ut.Add("max-items", "{0}は{1}件以下にしてください。", true); err != nil {
			return err
		}
		return ut.Add("max-number", "{0}は{1}以下で入力してください。", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(sizeTranslationKey("max", fe.Kind()), translateFieldName(fe.Field()), fe.Param())
		return t
	})
}

func sizeTranslationKey(tag string, kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return tag + "-string"
	case reflect.Slice, reflect.Map, reflect.Array:
		return tag + "-items"
	default:
		return tag + "-number"
	}
}

func translateFieldName(field string) string {
	if translated, ok := fieldNameTranslations[field]; ok {
		return translated
	}
	return field
}

// registerDomainValidations は暗唱ドメイン固有のタグを登録する
func registerDomainValidations(v *validator.Validate) {
	v.RegisterValidation("surah", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= MinSurah && n <= MaxSurah
	})
	v.RegisterValidation("recitation_type", func(fl validator.FieldLevel) bool {
		return model.RecitationType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("plan_type", func(fl validator.FieldLevel) bool {
		return model.PlanType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("evaluation", func(fl validator.FieldLevel) bool {
		return model.Evaluation(fl.Field().String()).Valid()
	})
	v.RegisterValidation("session_status", func(fl validator.FieldLevel) bool {
		return model.SessionStatus(fl.Field().String()).Valid()
	})

	// 同じスーラ内で開始節が終了節より後ろの範囲は不正。
	// スーラをまたぐ範囲は逆順 (114→78 のような暗記順) も許可する。
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		vr := sl.Current().Interface().(model.VerseRange)
		if vr.StartSurah == vr.EndSurah && vr.StartVerse > vr.EndVerse {
			sl.ReportError(vr.EndVerse, "end_verse", "EndVerse", "verse_order", "")
		}
	}, model.VerseRange{})
}

// ValidateStruct は構造体を検証し、最初のエラーを翻訳済みの AppError として返す
func ValidateStruct(s interface{}) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		firstErr := validationErrors[0]
		return model.NewAppError(
			"VALIDATION_ERROR",
			firstErr.Translate(Trans),
			firstErr.Field(),
			model.ErrInvalidInput,
		)
	}
	return model.NewAppError("VALIDATION_ERROR", "入力値の検証に失敗しました。", "", errors.Join(model.ErrInvalidInput, err))
}
