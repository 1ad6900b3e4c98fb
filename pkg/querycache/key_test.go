package querycache

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestKey_Parts(t *testing.T) {
	k := NewKey("marketing", "campaigns", "search", "summer sale", 0, int64(20), true)

	want := []string{"marketing", "campaigns", "search", "summer sale", "0", "20", "true"}
	if diff := cmp.Diff(want, k.Parts()); diff != "" {
		t.Errorf("parts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 7, k.Len())
}

func TestKey_String__Escapes_Parts(t *testing.T) {
	a := NewKey("marketing", "campaigns", "search", "a/b")
	b := NewKey("marketing", "campaigns", "search", "a", "b")

	assert.Equal(t, "marketing/campaigns/search/a%2Fb", a.String())
	assert.Equal(t, "marketing/campaigns/search/a/b", b.String())
	assert.NotEqual(t, a.String(), b.String())
}

func TestKey_Append__Does_Not_Share_Parts(t *testing.T) {
	root := NewKey("marketing", "campaigns")
	a := root.Append("detail", 1)
	b := root.Append("detail", 2)

	assert.Equal(t, "marketing/campaigns/detail/1", a.String())
	assert.Equal(t, "marketing/campaigns/detail/2", b.String())
	assert.Equal(t, "marketing/campaigns", root.String())
}

func TestKey_HasPrefix(t *testing.T) {
	k := NewKey("marketing", "campaigns", "detail", 5)

	assert.Equal(t, true, k.HasPrefix(NewKey("marketing")))
	assert.Equal(t, true, k.HasPrefix(NewKey("marketing", "campaigns")))
	assert.Equal(t, true, k.HasPrefix(k))
	assert.Equal(t, false, k.HasPrefix(NewKey("marketing", "executions")))
	assert.Equal(t, false, k.HasPrefix(k.Append("extra")))
}

func TestKey_Prefixes(t *testing.T) {
	k := NewKey("a", "b", "c")

	var got []string
	for _, p := range k.prefixes() {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"a", "a/b", "a/b/c"}, got)
}
