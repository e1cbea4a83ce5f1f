package actions

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwright/docwright/internal/schema"
)

// callEditor records which operation ran.
type callEditor struct{ called string }

func (c *callEditor) record(name, instruction string) (string, error) {
	c.called = name
	return name + ":" + instruction, nil
}

func (c *callEditor) Find(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("Find", in)
}
func (c *callEditor) FindAll(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("FindAll", in)
}
func (c *callEditor) Highlight(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("Highlight", in)
}
func (c *callEditor) Replace(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("Replace", in)
}
func (c *callEditor) ReplaceAll(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("ReplaceAll", in)
}
func (c *callEditor) InsertTrackedChange(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("InsertTrackedChange", in)
}
func (c *callEditor) InsertTrackedChanges(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("InsertTrackedChanges", in)
}
func (c *callEditor) InsertComment(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("InsertComment", in)
}
func (c *callEditor) InsertComments(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("InsertComments", in)
}
func (c *callEditor) Summarize(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("Summarize", in)
}
func (c *callEditor) InsertContent(_ context.Context, in string, _ schema.Subscriber) (string, error) {
	return c.record("InsertContent", in)
}

func TestRegistry_SortedByKey(t *testing.T) {
	r := NewRegistry()
	list := r.List()
	require.Len(t, list, 11)

	keys := make([]string, len(list))
	for i, a := range list {
		keys[i] = a.Key()
	}
	assert.True(t, sort.StringsAreSorted(keys), "keys not sorted: %v", keys)
	assert.Equal(t, "find", keys[0])
	assert.Equal(t, "summarize", keys[len(keys)-1])
}

func TestRegistry_ListIsStable(t *testing.T) {
	r := NewRegistry()
	a, b := r.List(), r.List()
	for i := range a {
		assert.Equal(t, a[i].Key(), b[i].Key())
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	a, ok := r.Lookup("highlight")
	require.True(t, ok)
	assert.Equal(t, "Highlight", a.Label())

	_, ok = r.Lookup("deleteEverything")
	assert.False(t, ok)
}

func TestBuildSchemas_OnePerAction(t *testing.T) {
	list := NewRegistry().List()
	schemas := BuildSchemas(list)
	require.Len(t, schemas, len(list))

	for i, s := range schemas {
		assert.Equal(t, list[i].Key(), s.Name, "order must follow the registry")
		assert.Equal(t, list[i].Description(), s.Description)

		params := s.Parameters()
		props := params["properties"].(map[string]any)
		require.Len(t, props, 1)
		prompt := props["prompt"].(map[string]any)
		assert.Equal(t, "string", prompt["type"])
		assert.Equal(t, "The specific instruction or prompt for this action", prompt["description"])
		assert.Equal(t, []string{"prompt"}, params["required"])
	}
}

func TestDefinitions_WireFormat(t *testing.T) {
	defs := Definitions(BuildSchemas(NewRegistry().List()))
	fn := defs[0]["function"].(map[string]any)
	assert.Equal(t, "function", defs[0]["type"])
	assert.Equal(t, "find", fn["name"])
	assert.NotNil(t, fn["parameters"])
}

func TestExecute_DispatchesToEditorOperation(t *testing.T) {
	r := NewRegistry()
	cases := map[string]string{
		"find":                 "Find",
		"findAll":              "FindAll",
		"highlight":            "Highlight",
		"replace":              "Replace",
		"replaceAll":           "ReplaceAll",
		"insertTrackedChange":  "InsertTrackedChange",
		"insertTrackedChanges": "InsertTrackedChanges",
		"insertComment":        "InsertComment",
		"insertComments":       "InsertComments",
		"summarize":            "Summarize",
		"insertContent":        "InsertContent",
	}
	for key, method := range cases {
		a, ok := r.Lookup(key)
		require.True(t, ok, key)
		ed := &callEditor{}
		out, err := a.Execute(context.Background(), ed, "x", nil)
		require.NoError(t, err)
		assert.Equal(t, method, ed.called, key)
		assert.Equal(t, method+":x", out)
	}
}
