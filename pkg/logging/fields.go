package logging

import "log/slog"

// ログフィールド名の定数
const (
	FieldEventID    = "event_id"
	FieldError      = "error"
	FieldIMSI       = "imsi"
	FieldGUTI       = "guti"
	FieldMMEUeID    = "mme_ue_id"
	FieldEnbUeID    = "enb_ue_id"
	FieldRequestID  = "request_id"
	FieldProcedure  = "procedure"
	FieldRetryCount = "retry_count"
	FieldEMMCause   = "emm_cause"
)

// WithEventID はイベントIDのslog.Attrを返す。
func WithEventID(eventID string) slog.Attr {
	return slog.String(FieldEventID, eventID)
}

// WithError はエラーのslog.Attrを返す。
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// WithRequestID は相関IDのslog.Attrを返す。
func WithRequestID(id string) slog.Attr {
	return slog.String(FieldRequestID, id)
}

// WithRetryCount は再送回数のslog.Attrを返す。
func WithRetryCount(count int) slog.Attr {
	return slog.Int(FieldRetryCount, count)
}

// Fields はマスキング設定を保持するログフィールド生成器。
type Fields struct {
	masker *Masker
}

// NewFields は新しいFieldsを生成する。
func NewFields(masker *Masker) *Fields {
	if masker == nil {
		masker = NewMasker(false)
	}
	return &Fields{masker: masker}
}

// WithIMSI はマスキングされたIMSIのslog.Attrを返す。
func (f *Fields) WithIMSI(imsi string) slog.Attr {
	return slog.String(FieldIMSI, f.masker.IMSI(imsi))
}

// WithGUTI はマスキングされたGUTIのslog.Attrを返す。
func (f *Fields) WithGUTI(guti string) slog.Attr {
	return slog.String(FieldGUTI, f.masker.GUTI(guti))
}

// UE は加入者単位ログの共通フィールドを返す。
// IMSIが未確定の場合はimsiフィールドを省略する。
func (f *Fields) UE(eventID string, mmeUeID, enbUeID uint32, imsi string) []any {
	attrs := []any{
		WithEventID(eventID),
		slog.Uint64(FieldMMEUeID, uint64(mmeUeID)),
		slog.Uint64(FieldEnbUeID, uint64(enbUeID)),
	}
	if imsi != "" {
		attrs = append(attrs, f.WithIMSI(imsi))
	}
	return attrs
}
