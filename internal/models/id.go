package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NumericID is an id in a request body. HTML form controls post ids as
// strings, so both 3 and "3" decode; anything else is a decode error.
type NumericID int64

// UnmarshalJSON accepts a JSON integer or a string holding one.
func (n *NumericID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	v, err := strconv.ParseInt(string(bytes.TrimSpace(b)), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", b)
	}
	*n = NumericID(v)
	return nil
}
