// Package actions holds the fixed catalog of document actions the model may
// invoke and projects it into model-callable tool schemas.
package actions

import (
	"context"

	"github.com/docwright/docwright/internal/schema"
)

// Key is the canonical identifier of a built-in action.
type Key string

const (
	KeyFind                 Key = "find"
	KeyFindAll              Key = "findAll"
	KeyHighlight            Key = "highlight"
	KeyInsertComment        Key = "insertComment"
	KeyInsertComments       Key = "insertComments"
	KeyInsertContent        Key = "insertContent"
	KeyInsertTrackedChange  Key = "insertTrackedChange"
	KeyInsertTrackedChanges Key = "insertTrackedChanges"
	KeyReplace              Key = "replace"
	KeyReplaceAll           Key = "replaceAll"
	KeySummarize            Key = "summarize"
)

// operation is the editor method an action adapts.
type operation func(e schema.Editor, ctx context.Context, instruction string, sub schema.Subscriber) (string, error)

// editorAction is the single implementation of schema.Action; each entry of
// the builtin table binds one editor operation.
type editorAction struct {
	key         Key
	label       string
	description string
	op          operation
}

func (a editorAction) Key() string         { return string(a.key) }
func (a editorAction) Label() string       { return a.label }
func (a editorAction) Description() string { return a.description }

func (a editorAction) Execute(ctx context.Context, editor schema.Editor, instruction string, sub schema.Subscriber) (string, error) {
	return a.op(editor, ctx, instruction, sub)
}

// builtin is the static action table.
var builtin = []editorAction{
	{
		key:         KeyFind,
		label:       "Find",
		description: "Find the first occurrence of content in the document that matches the instruction.",
		op:          schema.Editor.Find,
	},
	{
		key:         KeyFindAll,
		label:       "Find All",
		description: "Find every occurrence of content in the document that matches the instruction.",
		op:          schema.Editor.FindAll,
	},
	{
		key:         KeyHighlight,
		label:       "Highlight",
		description: "Highlight the passages of the document that match the instruction.",
		op:          schema.Editor.Highlight,
	},
	{
		key:         KeyReplace,
		label:       "Replace",
		description: "Replace the first passage that matches the instruction with rewritten text.",
		op:          schema.Editor.Replace,
	},
	{
		key:         KeyReplaceAll,
		label:       "Replace All",
		description: "Replace every occurrence of the content the instruction describes.",
		op:          schema.Editor.ReplaceAll,
	},
	{
		key:         KeyInsertTrackedChange,
		label:       "Insert Tracked Change",
		description: "Suggest a single edit as a tracked change that the author can accept or reject.",
		op:          schema.Editor.InsertTrackedChange,
	},
	{
		key:         KeyInsertTrackedChanges,
		label:       "Insert Tracked Changes",
		description: "Suggest several edits across the document as tracked changes.",
		op:          schema.Editor.InsertTrackedChanges,
	},
	{
		key:         KeyInsertComment,
		label:       "Insert Comment",
		description: "Add a single comment anchored on the passage the instruction refers to.",
		op:          schema.Editor.InsertComment,
	},
	{
		key:         KeyInsertComments,
		label:       "Insert Comments",
		description: "Add review comments across the document as the instruction asks.",
		op:          schema.Editor.InsertComments,
	},
	{
		key:         KeySummarize,
		label:       "Summarize",
		description: "Summarize the document, or the part of it the instruction names.",
		op:          schema.Editor.Summarize,
	},
	{
		key:         KeyInsertContent,
		label:       "Insert Content",
		description: "Write new content as instructed and insert it into the document.",
		op:          schema.Editor.InsertContent,
	},
}
