package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProps(t *testing.T) {
	assert.Equal(t, "New text", DefaultProps(TypeText).Text)
	assert.Equal(t, "Button", DefaultProps(TypeButton).Text)
	assert.Equal(t, "Enter value", DefaultProps(TypeField).Placeholder)
	assert.Empty(t, DefaultProps(TypeContainer).Title)
	assert.Empty(t, DefaultProps(TypeImage).Src)

	for _, typ := range ElementTypes {
		p := DefaultProps(typ)
		assert.Equal(t, "#ffffff", p.BackgroundColor, typ)
		assert.Equal(t, "inherit", p.FontFamily, typ)
		assert.NoError(t, p.ValidateFor(typ), typ)
	}
}

func TestPayloadKey(t *testing.T) {
	cases := map[ElementType]string{
		TypeText:      "text",
		TypeButton:    "text",
		TypeField:     "placeholder",
		TypeContainer: "title",
		TypeImage:     "src",
	}
	for typ, want := range cases {
		key, ok := PayloadKey(typ)
		assert.True(t, ok, typ)
		assert.Equal(t, want, key, typ)
	}
}

func TestProps_Apply(t *testing.T) {
	base := DefaultProps(TypeText)
	base.Extra = map[string]any{"data-test": "hero"}

	t.Run("Merges And Preserves", func(t *testing.T) {
		next, err := base.Apply(TypeText, Patch{"text": "Hi", "fontSize": 18, "bold": true})
		require.NoError(t, err)
		assert.Equal(t, "Hi", next.Text)
		assert.Equal(t, 18, next.FontSize)
		assert.True(t, next.Bold)
		assert.Equal(t, "#ffffff", next.BackgroundColor)
		assert.Equal(t, "hero", next.Extra["data-test"])

		assert.Equal(t, "New text", base.Text, "receiver must stay unchanged")
		assert.Zero(t, base.FontSize)
	})

	t.Run("Unknown Keys Go To Extra", func(t *testing.T) {
		next, err := base.Apply(TypeText, Patch{"aria-label": "greeting"})
		require.NoError(t, err)
		assert.Equal(t, "greeting", next.Extra["aria-label"])
		assert.Equal(t, "hero", next.Extra["data-test"])
		assert.NotContains(t, base.Extra, "aria-label")
	})

	t.Run("Number From JSON", func(t *testing.T) {
		next, err := base.Apply(TypeText, Patch{"fontSize": json.Number("24")})
		require.NoError(t, err)
		assert.Equal(t, 24, next.FontSize)
	})

	rejected := map[string]Patch{
		"Foreign Payload": {"placeholder": "Name"},
		"Image Src":       {"src": "https://example.com/a.png"},
		"Bad Color":       {"backgroundColor": "red"},
		"Font Too Large":  {"fontSize": 300},
		"Font Too Small":  {"fontSize": 2},
		"Bad Alignment":   {"textAlign": "justify"},
		"Nested Value":    {"style": map[string]any{"bold": true}},
		"Not A Number":    {"fontSize": "big"},
	}
	for name, patch := range rejected {
		t.Run(name, func(t *testing.T) {
			got, err := base.Apply(TypeText, patch)
			require.ErrorIs(t, err, ErrInvalidProps)
			assert.Equal(t, base.Text, got.Text)
		})
	}
}

func TestProps_ApplyKeysMatchExactly(t *testing.T) {
	base := DefaultProps(TypeText)

	next, err := base.Apply(TypeText, Patch{"Bold": true, "FONTSIZE": 18.7, "Src": "x"})
	require.NoError(t, err)
	assert.False(t, next.Bold)
	assert.Zero(t, next.FontSize)
	assert.Empty(t, next.Src)
	assert.Equal(t, true, next.Extra["Bold"])
	assert.Equal(t, 18.7, next.Extra["FONTSIZE"])
	assert.Equal(t, "x", next.Extra["Src"])
}

func TestProps_FontSizeMustBeWhole(t *testing.T) {
	base := DefaultProps(TypeText)

	for name, value := range map[string]any{
		"Float":       18.7,
		"JSON Number": json.Number("18.7"),
		"String":      "18.7",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := base.Apply(TypeText, Patch{"fontSize": value})
			assert.ErrorIs(t, err, ErrInvalidProps)
		})
	}

	next, err := base.Apply(TypeText, Patch{"fontSize": 18.0})
	require.NoError(t, err)
	assert.Equal(t, 18, next.FontSize)

	_, err = PropsFromMap(map[string]any{"fontSize": 12.5})
	assert.ErrorIs(t, err, ErrInvalidProps)
}

func TestProps_ApplyEmptyForeignPayload(t *testing.T) {
	next, err := DefaultProps(TypeContainer).Apply(TypeContainer, Patch{"text": "", "placeholder": ""})
	require.NoError(t, err)
	assert.Empty(t, next.Text)
	assert.Empty(t, next.Placeholder)
	assert.NotContains(t, next.Extra, "text")
}

func TestProps_ApplyPerType(t *testing.T) {
	next, err := DefaultProps(TypeContainer).Apply(TypeContainer, Patch{"title": "Hero"})
	require.NoError(t, err)
	assert.Equal(t, "Hero", next.Title)

	next, err = DefaultProps(TypeField).Apply(TypeField, Patch{"placeholder": "Email"})
	require.NoError(t, err)
	assert.Equal(t, "Email", next.Placeholder)

	next, err = DefaultProps(TypeImage).Apply(TypeImage, Patch{"src": "https://example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", next.Src)

	_, err = DefaultProps(TypeButton).Apply(TypeButton, Patch{"title": "x"})
	assert.ErrorIs(t, err, ErrInvalidProps)
}

func TestProps_JSON(t *testing.T) {
	p := DefaultProps(TypeButton)
	p.FontSize = 14
	p.Italic = true
	p.Extra = map[string]any{"href": "/signup"}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"backgroundColor": "#ffffff",
		"fontFamily": "inherit",
		"fontSize": 14,
		"italic": true,
		"text": "Button",
		"href": "/signup"
	}`, string(data))

	var back Props
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Text, back.Text)
	assert.Equal(t, 14, back.FontSize)
	assert.True(t, back.Italic)
	assert.Equal(t, "/signup", back.Extra["href"])
}

func TestPropsFromMap_RejectsNested(t *testing.T) {
	_, err := PropsFromMap(map[string]any{"style": []any{1}})
	assert.ErrorIs(t, err, ErrInvalidProps)
}

func TestProps_CloneIsolatesExtra(t *testing.T) {
	p := Props{Extra: map[string]any{"k": "v"}}
	c := p.Clone()
	c.Extra["k"] = "changed"
	assert.Equal(t, "v", p.Extra["k"])
}
