package idgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// ID is a generated id as it appears on the wire. Snowflake ids do not fit in
// a float64, so they travel as decimal strings.
type ID uint

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

// UnmarshalJSON accepts the string form or a bare number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", data)
	}
	*id = ID(v)
	return nil
}

func (ID) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeString,
		Pattern:     "^[0-9]+$",
		Description: "Identifier, encoded as a decimal string",
		Examples:    []any{"1849238479283458048"},
	}
}

// Wire converts an optional stored id to its wire form.
func Wire(id *uint) *ID {
	if id == nil {
		return nil
	}
	v := ID(*id)
	return &v
}

// Stored is the inverse of Wire.
func Stored(id *ID) *uint {
	if id == nil {
		return nil
	}
	v := uint(*id)
	return &v
}
