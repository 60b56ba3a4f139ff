package core

// messages.go defines the localized validation message catalog.
//
// Row validation messages are user-facing and bilingual (English/Korean) to
// match the deployments this service feeds. Messages live in code rather than
// translation files so the catalog stays in lockstep with the classifier.

import (
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

const (
	msgFieldRequired       = "FieldRequired"
	msgInvalidNumber       = "InvalidNumber"
	msgUnknownProduct      = "UnknownProduct"
	msgUnknownWarehouse    = "UnknownWarehouse"
	msgUnknownLocation     = "UnknownLocation"
	msgUnknownPartner      = "UnknownPartner"
	msgInvalidMovementType = "InvalidMovementType"
	msgZeroQuantity        = "ZeroQuantity"
	msgInvalidDate         = "InvalidDate"
	msgInvalidField        = "InvalidField"
)

// NewBundle builds the message bundle with English defaults and Korean
// translations. Panics on a malformed catalog; the catalog is static.
func NewBundle() *i18n.Bundle {
	b := i18n.NewBundle(language.English)

	mustAdd(b, language.English,
		&i18n.Message{ID: msgFieldRequired, Other: "{{.Field}} is required"},
		&i18n.Message{ID: msgInvalidNumber, Other: "{{.Field}} must be a number, got {{.Value}}"},
		&i18n.Message{ID: msgUnknownProduct, Other: "no product with SKU {{.SKU}}"},
		&i18n.Message{ID: msgUnknownWarehouse, Other: "warehouse {{.Code}} is not registered"},
		&i18n.Message{ID: msgUnknownLocation, Other: "location {{.Location}} does not belong to warehouse {{.Warehouse}}"},
		&i18n.Message{ID: msgUnknownPartner, Other: "partner {{.Name}} is not registered"},
		&i18n.Message{ID: msgInvalidMovementType, Other: "movement type must be INBOUND or OUTBOUND, got {{.Value}}"},
		&i18n.Message{ID: msgZeroQuantity, Other: "quantity must be a nonzero integer"},
		&i18n.Message{ID: msgInvalidDate, Other: "{{.Field}} is not a valid date: {{.Value}}"},
		&i18n.Message{ID: msgInvalidField, Other: "{{.Field}} has an invalid value: {{.Value}}"},
	)

	mustAdd(b, language.Korean,
		&i18n.Message{ID: msgFieldRequired, Other: "{{.Field}} 값은 필수입니다"},
		&i18n.Message{ID: msgInvalidNumber, Other: "{{.Field}} 값은 숫자여야 합니다: {{.Value}}"},
		&i18n.Message{ID: msgUnknownProduct, Other: "SKU {{.SKU}} 에 해당하는 상품이 없습니다"},
		&i18n.Message{ID: msgUnknownWarehouse, Other: "등록되지 않은 창고입니다: {{.Code}}"},
		&i18n.Message{ID: msgUnknownLocation, Other: "{{.Location}} 위치는 {{.Warehouse}} 창고에 없습니다"},
		&i18n.Message{ID: msgUnknownPartner, Other: "등록되지 않은 거래처입니다: {{.Name}}"},
		&i18n.Message{ID: msgInvalidMovementType, Other: "이동 유형은 입고 또는 출고여야 합니다: {{.Value}}"},
		&i18n.Message{ID: msgZeroQuantity, Other: "수량은 0이 아닌 정수여야 합니다"},
		&i18n.Message{ID: msgInvalidDate, Other: "{{.Field}} 값이 올바른 날짜가 아닙니다: {{.Value}}"},
		&i18n.Message{ID: msgInvalidField, Other: "{{.Field}} 값이 올바르지 않습니다: {{.Value}}"},
	)

	return b
}

func mustAdd(b *i18n.Bundle, tag language.Tag, msgs ...*i18n.Message) {
	if err := b.AddMessages(tag, msgs...); err != nil {
		panic(fmt.Sprintf("message catalog: %v", err))
	}
}

// Messages renders validation messages for one request's language preference.
type Messages struct {
	loc *i18n.Localizer
}

// NewMessages builds a renderer for the given language preferences, which may
// be full Accept-Language headers. Later entries are fallbacks.
func NewMessages(bundle *i18n.Bundle, langs ...string) *Messages {
	return &Messages{loc: i18n.NewLocalizer(bundle, langs...)}
}

func (m *Messages) render(id string, data map[string]any) string {
	s, err := m.loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return id
	}
	return s
}

func (m *Messages) Required(field string) string {
	return m.render(msgFieldRequired, map[string]any{"Field": field})
}

func (m *Messages) InvalidNumber(field, value string) string {
	return m.render(msgInvalidNumber, map[string]any{"Field": field, "Value": value})
}

func (m *Messages) UnknownProduct(sku string) string {
	return m.render(msgUnknownProduct, map[string]any{"SKU": sku})
}

func (m *Messages) UnknownWarehouse(code string) string {
	return m.render(msgUnknownWarehouse, map[string]any{"Code": code})
}

func (m *Messages) UnknownLocation(warehouse, location string) string {
	return m.render(msgUnknownLocation, map[string]any{"Warehouse": warehouse, "Location": location})
}

func (m *Messages) UnknownPartner(name string) string {
	return m.render(msgUnknownPartner, map[string]any{"Name": name})
}

func (m *Messages) InvalidMovementType(value string) string {
	return m.render(msgInvalidMovementType, map[string]any{"Value": value})
}

func (m *Messages) ZeroQuantity() string {
	return m.render(msgZeroQuantity, nil)
}

func (m *Messages) InvalidDate(field, value string) string {
	return m.render(msgInvalidDate, map[string]any{"Field": field, "Value": value})
}

func (m *Messages) InvalidField(field, value string) string {
	return m.render(msgInvalidField, map[string]any{"Field": field, "Value": value})
}
