package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Style is the presentation sub-record shared by every element type.
type Style struct {
	BackgroundColor string `mapstructure:"backgroundColor" validate:"omitempty,hexcolor"`
	FontFamily      string `mapstructure:"fontFamily" validate:"max=64"`
	FontSize        int    `mapstructure:"fontSize" validate:"omitempty,min=6,max=200"`
	TextAlign       string `mapstructure:"textAlign" validate:"omitempty,oneof=left center right"`
	Bold            bool   `mapstructure:"bold"`
	Italic          bool   `mapstructure:"italic"`
	Underline       bool   `mapstructure:"underline"`
}

// Content is the per-type payload. Which field applies is decided by the element type,
// see PayloadKey.
type Content struct {
	Text        string `mapstructure:"text"`
	Placeholder string `mapstructure:"placeholder"`
	Title       string `mapstructure:"title"`
	Src         string `mapstructure:"src" validate:"omitempty,uri"`
}

// Props holds the style and content of an element.
// Keys that are neither style nor payload are kept verbatim in Extra.
type Props struct {
	Style   `mapstructure:",squash"`
	Content `mapstructure:",squash"`
	Extra   map[string]any `mapstructure:",remain"`
}

// Patch is a shallow set of prop keys to overwrite.
type Patch map[string]any

// payloadKeys maps each payload key to the element types it belongs to.
var payloadKeys = map[string][]ElementType{
	"text":        {TypeText, TypeButton},
	"placeholder": {TypeField},
	"title":       {TypeContainer},
	"src":         {TypeImage},
}

// PayloadKey returns the content key carried by elements of type t, if any.
func PayloadKey(t ElementType) (string, bool) {
	for key, types := range payloadKeys {
		if slices.Contains(types, t) {
			return key, true
		}
	}
	return "", false
}

// DefaultProps returns the props a freshly added element of type t starts with.
func DefaultProps(t ElementType) Props {
	p := Props{
		Style: Style{
			BackgroundColor: "#ffffff",
			FontFamily:      "inherit",
		},
	}
	switch t {
	case TypeText:
		p.Text = "New text"
	case TypeButton:
		p.Text = "Button"
	case TypeField:
		p.Placeholder = "Enter value"
	case TypeContainer, TypeImage:
	}
	return p
}

// Clone returns a copy that shares no mutable state with p.
func (p Props) Clone() Props {
	c := p
	if p.Extra != nil {
		c.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Apply merges patch into a copy of p for an element of type t.
// Keys present in patch overwrite, absent keys are preserved. p itself is never modified.
func (p Props) Apply(t ElementType, patch Patch) (Props, error) {
	values, err := sanitizeValues(patch)
	if err != nil {
		return p, err
	}
	for key, value := range values {
		types, ok := payloadKeys[key]
		if !ok || slices.Contains(types, t) {
			continue
		}
		// An empty payload of another type reads as unset.
		if value == "" {
			delete(values, key)
			continue
		}
		return p, fmt.Errorf("%w: %q does not apply to %s elements", ErrInvalidProps, key, t)
	}
	if err := checkIntegers(values); err != nil {
		return p, err
	}

	next := p.Clone()
	if err := decodeProps(values, &next); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidProps, err)
	}
	if err := next.ValidateFor(t); err != nil {
		return p, err
	}
	return next, nil
}

// ValidateFor checks p and rejects payload values that belong to a different element type.
func (p Props) ValidateFor(t ElementType) error {
	if err := p.Validate(); err != nil {
		return err
	}
	set := map[string]bool{
		"text":        p.Text != "",
		"placeholder": p.Placeholder != "",
		"title":       p.Title != "",
		"src":         p.Src != "",
	}
	for key, present := range set {
		if present && !slices.Contains(payloadKeys[key], t) {
			return fmt.Errorf("%w: %q does not apply to %s elements", ErrInvalidProps, key, t)
		}
	}
	return nil
}

// Validate checks style ranges and formats.
func (p Props) Validate() error {
	if err := validate.Struct(p); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return fmt.Errorf("%w: %s", ErrInvalidProps, strings.Join(msgs, ", "))
	}
	return nil
}

// ToMap flattens props into the wire shape. Unset style and content values are omitted.
func (p Props) ToMap() map[string]any {
	m := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		m[k] = v
	}
	putString(m, "backgroundColor", p.BackgroundColor)
	putString(m, "fontFamily", p.FontFamily)
	if p.FontSize != 0 {
		m["fontSize"] = p.FontSize
	}
	putString(m, "textAlign", p.TextAlign)
	putBool(m, "bold", p.Bold)
	putBool(m, "italic", p.Italic)
	putBool(m, "underline", p.Underline)
	putString(m, "text", p.Text)
	putString(m, "placeholder", p.Placeholder)
	putString(m, "title", p.Title)
	putString(m, "src", p.Src)
	return m
}

// PropsFromMap decodes a wire props object.
func PropsFromMap(m map[string]any) (Props, error) {
	var p Props
	values, err := sanitizeValues(m)
	if err != nil {
		return Props{}, err
	}
	if err := checkIntegers(values); err != nil {
		return Props{}, err
	}
	if err := decodeProps(values, &p); err != nil {
		return Props{}, fmt.Errorf("%w: %v", ErrInvalidProps, err)
	}
	return p, nil
}

func (p Props) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

func (p *Props) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	decoded, err := PropsFromMap(m)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func (p Props) MarshalYAML() (any, error) {
	return p.ToMap(), nil
}

func decodeProps(input map[string]any, out *Props) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// integerKeys are the typed props decoded into ints.
var integerKeys = []string{"fontSize"}

// checkIntegers rejects fractional numbers for integer props instead of truncating them.
func checkIntegers(m map[string]any) error {
	for _, key := range integerKeys {
		var f float64
		switch v := m[key].(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		default:
			continue
		}
		if f != math.Trunc(f) {
			return fmt.Errorf("%w: %q must be a whole number, got %v", ErrInvalidProps, key, f)
		}
	}
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func putBool(m map[string]any, key string, value bool) {
	if value {
		m[key] = true
	}
}
