// Package logging はログ関連のユーティリティを提供する。
package logging

import "strings"

// MaskIMSI はIMSIをマスキングする。
// 先頭5桁（MCC+MNC）と末尾1桁を残す。
// 例: 001010000000001 → 00101*********1
// enabled=false の場合はマスキングせずにそのまま返す。
func MaskIMSI(imsi string, enabled bool) string {
	if !enabled {
		return imsi
	}
	return MaskPartial(imsi, 5, 1, '*')
}

// MaskGUTI はGUTI文字列のM-TMSI部（最後の'-'以降）をマスキングする。
func MaskGUTI(guti string, enabled bool) string {
	if !enabled {
		return guti
	}
	i := strings.LastIndexByte(guti, '-')
	if i < 0 {
		return MaskPartial(guti, 0, 2, '*')
	}
	return guti[:i+1] + MaskPartial(guti[i+1:], 0, 2, '*')
}

// MaskPartial は文字列の先頭keepPrefix文字と末尾keepSuffix文字以外をmaskCharで置換する。
// 文字列が短すぎる場合はそのまま返す。
func MaskPartial(s string, keepPrefix, keepSuffix int, maskChar rune) string {
	runes := []rune(s)
	if len(runes) <= keepPrefix+keepSuffix {
		return s
	}
	for i := keepPrefix; i < len(runes)-keepSuffix; i++ {
		runes[i] = maskChar
	}
	return string(runes)
}

// Masker はマスキング設定を保持する構造体。
type Masker struct {
	enabled bool
}

// NewMasker は新しいMaskerを生成する。
func NewMasker(enabled bool) *Masker {
	return &Masker{enabled: enabled}
}

// IMSI はIMSIをマスキングする。
func (m *Masker) IMSI(imsi string) string {
	return MaskIMSI(imsi, m.enabled)
}

// GUTI はGUTIをマスキングする。
func (m *Masker) GUTI(guti string) string {
	return MaskGUTI(guti, m.enabled)
}

// IsEnabled はマスキングが有効かどうかを返す。
func (m *Masker) IsEnabled() bool {
	return m.enabled
}
