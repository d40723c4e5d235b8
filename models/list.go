package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// StringList is an ordered list of strings stored as JSON text.
// An empty list is stored as NULL, never as "[]".
type StringList []string

// IntList is an ordered list of ids stored as JSON text, with the same NULL
// convention as StringList.
type IntList []int64

func (StringList) GormDataType() string { return "text" }
func (IntList) GormDataType() string    { return "text" }

func (l StringList) Value() (driver.Value, error) { return listValue(l) }
func (l IntList) Value() (driver.Value, error)    { return listValue(l) }

func (l *StringList) Scan(value any) error { return scanList(value, (*[]string)(l)) }
func (l *IntList) Scan(value any) error    { return scanList(value, (*[]int64)(l)) }

func listValue[T any](list []T) (driver.Value, error) {
	if len(list) == 0 {
		return nil, nil
	}
	// unescaped HTML keeps the stored text searchable with LIKE
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func scanList[T any](value any, dst *[]T) error {
	if value == nil {
		*dst = nil
		return nil
	}
	var decoded datatypes.JSONSlice[T]
	if err := decoded.Scan(value); err != nil {
		return err
	}
	if len(decoded) == 0 {
		*dst = nil
		return nil
	}
	*dst = []T(decoded)
	return nil
}
