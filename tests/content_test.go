// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	businessflow "github.com/tavolo/tavolo/business_flow"
	"github.com/tavolo/tavolo/utils"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("ReplacesFirstName", func(t *testing.T) {
		out := businessflow.RenderTemplate("Hi {FirstName}, welcome back!", utils.ToPtr("Ada"))
		assert.Equal(t, "Hi Ada, welcome back!", out)
	})

	t.Run("ReplacesAllSpellings", func(t *testing.T) {
		out := businessflow.RenderTemplate("{FirstName} {firstname} {FIRSTNAME}", utils.ToPtr("Ada"))
		assert.Equal(t, "Ada Ada Ada", out)
	})

	t.Run("MissingNameRendersEmpty", func(t *testing.T) {
		out := businessflow.RenderTemplate("Hi {FirstName}!", nil)
		assert.Equal(t, "Hi !", out)
	})

	t.Run("BlankNameRendersEmpty", func(t *testing.T) {
		out := businessflow.RenderTemplate("Hi {FirstName}!", utils.ToPtr("   "))
		assert.Equal(t, "Hi !", out)
	})

	t.Run("NoPlaceholderUnchanged", func(t *testing.T) {
		out := businessflow.RenderTemplate("Free dessert tonight", utils.ToPtr("Ada"))
		assert.Equal(t, "Free dessert tonight", out)
	})
}

func TestHasFirstNamePlaceholder(t *testing.T) {
	assert.True(t, businessflow.HasFirstNamePlaceholder("Hi {FirstName}"))
	assert.True(t, businessflow.HasFirstNamePlaceholder("hi {firstname}"))
	assert.True(t, businessflow.HasFirstNamePlaceholder("{FIRSTNAME}!"))
	assert.False(t, businessflow.HasFirstNamePlaceholder("Hi {LastName}"))
	assert.False(t, businessflow.HasFirstNamePlaceholder(""))
}

func TestEnsureFirstNamePlaceholder(t *testing.T) {
	t.Run("LeavesExisting", func(t *testing.T) {
		out := businessflow.EnsureFirstNamePlaceholder("Hello {FirstName}, stop by!")
		assert.Equal(t, "Hello {FirstName}, stop by!", out)
	})

	t.Run("PrependsGreeting", func(t *testing.T) {
		out := businessflow.EnsureFirstNamePlaceholder("Two for one pasta tonight.")
		assert.Equal(t, "Hi {FirstName}! Two for one pasta tonight.", out)
	})
}

func TestTruncateAtWordBoundary(t *testing.T) {
	t.Run("ShortBodyUnchanged", func(t *testing.T) {
		out := businessflow.TruncateAtWordBoundary("short message", utils.MaxSMSBodyLength)
		assert.Equal(t, "short message", out)
	})

	t.Run("CapsSMSLength", func(t *testing.T) {
		long := strings.Repeat("tagliatelle ", 40)
		out := businessflow.TruncateAtWordBoundary(long, utils.MaxSMSBodyLength)
		assert.LessOrEqual(t, len([]rune(out)), utils.MaxSMSBodyLength)
		assert.True(t, strings.HasSuffix(out, "..."))
	})

	t.Run("CutsOnWordBoundary", func(t *testing.T) {
		long := strings.Repeat("penne arrabbiata ", 40)
		out := businessflow.TruncateAtWordBoundary(long, utils.MaxEmailBodyLength)
		trimmed := strings.TrimSuffix(out, "...")
		// The cut never leaves a partial word before the ellipsis
		assert.False(t, strings.HasSuffix(trimmed, "pen"))
		assert.LessOrEqual(t, len([]rune(out)), utils.MaxEmailBodyLength)
	})

	t.Run("ExactLimitUnchanged", func(t *testing.T) {
		exact := strings.Repeat("a", utils.MaxSMSBodyLength)
		out := businessflow.TruncateAtWordBoundary(exact, utils.MaxSMSBodyLength)
		assert.Equal(t, exact, out)
	})
}

func TestTidySubject(t *testing.T) {
	t.Run("CollapsesWhitespace", func(t *testing.T) {
		out := businessflow.TidySubject("  Special   Offer \n Tonight ")
		assert.Equal(t, "Special Offer Tonight", out)
	})

	t.Run("StripsQuotes", func(t *testing.T) {
		out := businessflow.TidySubject(`"Weekend Brunch Deal"`)
		assert.Equal(t, "Weekend Brunch Deal", out)
	})

	t.Run("CapsLength", func(t *testing.T) {
		long := strings.Repeat("brunch ", 30)
		out := businessflow.TidySubject(long)
		assert.LessOrEqual(t, len([]rune(out)), utils.MaxEmailSubjectLength)
	})
}

func TestDinerDisplayName(t *testing.T) {
	first := "Grace"
	last := "Hopper"

	t.Run("FullName", func(t *testing.T) {
		assert.Equal(t, "Grace Hopper", businessflow.DinerDisplayName(&first, &last))
	})

	t.Run("FirstOnly", func(t *testing.T) {
		assert.Equal(t, "Grace", businessflow.DinerDisplayName(&first, nil))
	})

	t.Run("LastOnly", func(t *testing.T) {
		assert.Equal(t, "Hopper", businessflow.DinerDisplayName(nil, &last))
	})

	t.Run("NoNameFallsBack", func(t *testing.T) {
		assert.Equal(t, "Diner", businessflow.DinerDisplayName(nil, nil))
	})
}
