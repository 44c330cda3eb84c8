package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prev, next string
		want       Decision
		rule       string
	}{
		{"Package", "Element", Concatenate, "domain suffix"},
		{"SwComponent", "Prototype", Concatenate, "domain suffix"},
		{"ARPackage.ele", "ment", Concatenate, "lower-case start"},
		{"Identifiable", "Xy", Concatenate, "short fragment"},
		{"Ab", "Identifiable", Concatenate, "short prefix"},
		{"CAN_FD_", "ONLY", Concatenate, "open joiner"},
		{"ApplicationSw", "ComponentType", Concatenate, "known prefix"},
		{"Abstract", "Event", Concatenate, "known prefix"},
		{"Identifiable", "MultilanguageReferrable", NewItem, ""},
		{"CollectableElement", "Identifiable", NewItem, ""},
		{"", "Element", NewItem, ""},
		{"Package", "", NewItem, ""},
	}
	for _, tt := range tests {
		got, rule := explain(tt.prev, tt.next)
		assert.Equal(t, tt.want, got, "%s + %s", tt.prev, tt.next)
		assert.Equal(t, tt.rule, rule, "%s + %s", tt.prev, tt.next)
		assert.Equal(t, tt.want, Decide(tt.prev, tt.next))
	}
}

func TestFragmentOf_DenyList(t *testing.T) {
	t.Parallel()

	assert.False(t, fragmentOf("isService", "the"))
	assert.False(t, fragmentOf("isService", "of"))
	assert.False(t, fragmentOf("isService", "e.g."))
	assert.True(t, fragmentOf("isServ", "ice"))
	assert.True(t, fragmentOf("dataElement", "Ref"))
	assert.False(t, fragmentOf("dataElement", "0..1"))
}

func TestDecision_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "concatenate", Concatenate.String())
	assert.Equal(t, "new-item", NewItem.String())
}

func TestLastSegment(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"ApplicationSw", "Sw"},
		{"Ecu", "Ecu"},
		{"lower", "lower"},
		{"Zählerwert", "Zählerwert"},
		{"CanÄnderung", "Änderung"},
		{"größeÜ", "Ü"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lastSegment(tt.in), tt.in)
	}
}
