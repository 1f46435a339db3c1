package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies one remote record. Item ids arrive as JSON numbers, user ids
// as strings; both are kept in their textual form.
type ID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as used in item addresses.
func (id ID) String() string {
	return string(id)
}

// Item is one decoded record of the item store. Stories, comments, jobs,
// polls and user profiles all decode into it; Raw keeps the original object
// so fields without a dedicated member are not lost.
type Item struct {
	ID          ID     `json:"id"`
	Type        string `json:"type,omitempty"`
	By          string `json:"by,omitempty"`
	Time        int64  `json:"time,omitempty"`
	Parent      ID     `json:"parent,omitempty"`
	Title       string `json:"title,omitempty"`
	Text        string `json:"text,omitempty"`
	URL         string `json:"url,omitempty"`
	Score       int    `json:"score,omitempty"`
	Descendants int    `json:"descendants,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
	Dead        bool   `json:"dead,omitempty"`

	// User profile fields.
	Created int64  `json:"created,omitempty"`
	Karma   int    `json:"karma,omitempty"`
	About   string `json:"about,omitempty"`

	// Kids lists the direct replies of a story or comment.
	Kids []ID `json:"kids,omitempty"`

	// Submitted lists everything a user has posted.
	Submitted []ID `json:"submitted,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps a copy of the whole object.
//
// Only id, kids and submitted must have the expected shape, since they drive
// expansion. Descriptive fields of another type are left zero; their values
// remain available in Raw.
func (it *Item) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var item Item
	for name, dst := range map[string]any{
		"id":        &item.ID,
		"kids":      &item.Kids,
		"submitted": &item.Submitted,
	} {
		if raw, ok := fields[name]; ok {
			if err := json.Unmarshal(raw, dst); err != nil {
				return fmt.Errorf("decode field %q: %w", name, err)
			}
		}
	}

	looseField(fields, "type", &item.Type)
	looseField(fields, "by", &item.By)
	looseField(fields, "time", &item.Time)
	looseField(fields, "parent", &item.Parent)
	looseField(fields, "title", &item.Title)
	looseField(fields, "text", &item.Text)
	looseField(fields, "url", &item.URL)
	looseField(fields, "score", &item.Score)
	looseField(fields, "descendants", &item.Descendants)
	looseField(fields, "deleted", &item.Deleted)
	looseField(fields, "dead", &item.Dead)
	looseField(fields, "created", &item.Created)
	looseField(fields, "karma", &item.Karma)
	looseField(fields, "about", &item.About)

	item.Raw = append(json.RawMessage(nil), data...)
	*it = item
	return nil
}

// looseField sets *dst from fields[name] when the value decodes into T and
// leaves it untouched otherwise.
func looseField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err == nil {
		*dst = v
	}
}

// Children returns the child ids to expand: Kids when non-empty, otherwise
// Submitted, otherwise nil. An absent (nil) item has no children.
func (it *Item) Children() []ID {
	if it == nil {
		return nil
	}
	if len(it.Kids) > 0 {
		return it.Kids
	}
	if len(it.Submitted) > 0 {
		return it.Submitted
	}
	return nil
}
