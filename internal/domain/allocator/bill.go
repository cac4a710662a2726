package allocator

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON keys of the recognised fields. Anything else on a bill or an item is
// carried through in Extra.
const (
	keyDiscountTotal  = "price_bill_discount"
	keyItems          = "lists"
	keyID             = "seq_number"
	keyGrandTotal     = "price_grand_total"
	keyRatio          = "proportion_discount_ratio"
	keyDiscountAmount = "proportion_discount_price"
)

// Bill holds the discount to distribute and the lines it is spread over.
// Allocate reads one Bill and returns a new one with every item's Ratio
// and DiscountAmount filled in.
type Bill struct {
	// DiscountTotal is the bill-level discount as a decimal string.
	DiscountTotal string
	Items         []LineItem

	// Extra holds unrecognised JSON members, passed through untouched.
	Extra map[string]json.RawMessage
}

// LineItem is one line of the bill.
type LineItem struct {
	// ID is the seq_number text. A numeric seq_number keeps its JSON type
	// on output.
	ID             *string
	GrandTotal     string
	Ratio          string
	DiscountAmount string

	Extra map[string]json.RawMessage

	numericID bool
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	out := Bill{
		DiscountTotal: b.DiscountTotal,
		Extra:         cloneExtra(b.Extra),
	}
	if b.Items != nil {
		out.Items = make([]LineItem, len(b.Items))
		for i, item := range b.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the item.
func (li LineItem) Clone() LineItem {
	out := li
	if li.ID != nil {
		id := *li.ID
		out.ID = &id
	}
	out.Extra = cloneExtra(li.Extra)
	return out
}

func cloneExtra(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = bytes.Clone(v)
	}
	return out
}

// MarshalJSON writes the recognised fields under their wire names merged
// with Extra. A nil item list is written as an empty array.
func (b Bill) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(b.Extra)+2)
	for k, v := range b.Extra {
		fields[k] = v
	}
	items := b.Items
	if items == nil {
		items = []LineItem{}
	}
	fields[keyDiscountTotal] = b.DiscountTotal
	fields[keyItems] = items
	return json.Marshal(fields)
}

// UnmarshalJSON accepts numeric fields as JSON strings or numbers.
func (b *Bill) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("bill must be a JSON object")
	}

	var out Bill
	if raw, ok := fields[keyDiscountTotal]; ok {
		v, err := decodeNumeric(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", keyDiscountTotal, err)
		}
		out.DiscountTotal = v
		delete(fields, keyDiscountTotal)
	}
	if raw, ok := fields[keyItems]; ok {
		if err := json.Unmarshal(raw, &out.Items); err != nil {
			return fmt.Errorf("%s: %w", keyItems, err)
		}
		delete(fields, keyItems)
	}
	if len(fields) > 0 {
		out.Extra = fields
	}

	*b = out
	return nil
}

// MarshalJSON writes the item with a null seq_number when ID is nil.
func (li LineItem) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(li.Extra)+4)
	for k, v := range li.Extra {
		fields[k] = v
	}
	switch {
	case li.ID == nil:
		fields[keyID] = nil
	case li.numericID:
		fields[keyID] = json.Number(*li.ID)
	default:
		fields[keyID] = *li.ID
	}
	fields[keyGrandTotal] = li.GrandTotal
	fields[keyRatio] = li.Ratio
	fields[keyDiscountAmount] = li.DiscountAmount
	return json.Marshal(fields)
}

// UnmarshalJSON reads seq_number as a string or number; numbers keep their
// literal text. A null line decodes to a zero item.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*li = LineItem{}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("line item must be a JSON object")
	}

	var out LineItem
	if raw, ok := fields[keyID]; ok {
		v, err := decodeNumeric(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", keyID, err)
		}
		if !isNull(raw) {
			out.ID = &v
			out.numericID = bytes.TrimSpace(raw)[0] != '"'
		}
		delete(fields, keyID)
	}

	targets := []struct {
		key string
		dst *string
	}{
		{keyGrandTotal, &out.GrandTotal},
		{keyRatio, &out.Ratio},
		{keyDiscountAmount, &out.DiscountAmount},
	}
	for _, t := range targets {
		raw, ok := fields[t.key]
		if !ok {
			continue
		}
		v, err := decodeNumeric(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", t.key, err)
		}
		*t.dst = v
		delete(fields, t.key)
	}
	if len(fields) > 0 {
		out.Extra = fields
	}

	*li = out
	return nil
}

// decodeNumeric returns the text of a JSON string or number. Null decodes
// to the empty string.
func decodeNumeric(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return "", nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", fmt.Errorf("must be a string or a number")
	}
	return n.String(), nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
