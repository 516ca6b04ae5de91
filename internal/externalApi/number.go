package externalApi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number decodes a provider numeric field that may arrive as a JSON number,
// a numeric string, null, or a placeholder such as "NA".
type Number struct {
	decimal.NullDecimal
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.NullDecimal = decimal.NullDecimal{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			// placeholders like "NA" or "-" mean no data
			return nil
		}
		n.NullDecimal = decimal.NewNullDecimal(d)
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	n.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

// NonZero drops a zero value, which providers use for "unknown".
func (n Number) NonZero() decimal.NullDecimal {
	if !n.Valid || n.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return n.NullDecimal
}
