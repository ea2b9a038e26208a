package common

import (
	"encoding/json"
	"errors"
	"io"
)

// ErrExtraJSONData 輸入在第一個 JSON 值之後仍有資料
var ErrExtraJSONData = errors.New("unexpected extra JSON data")

// DecodeJSON 解析單一 JSON 值，禁止未知欄位與多餘資料
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrExtraJSONData
	}
	return nil
}

// ToJSONIndent 將結構體轉換為縮排後的 JSON 字符串
func ToJSONIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
