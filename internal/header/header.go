// Package header maps CSV header cells to logical task fields.
package header

import "strings"

// Field is a logical column of the task CSV.
type Field string

const (
	Category   Field = "category"
	Viewpoint  Field = "viewpoint"
	Task       Field = "task"
	Start      Field = "start"
	End        Field = "end"
	Assignee   Field = "assignee"
	Status     Field = "status"
	Priority   Field = "priority"
	Check      Field = "check"
	TaskID     Field = "task_id"
	Successors Field = "successors"
)

// Fields lists every field in resolution order.
var Fields = []Field{Category, Viewpoint, Task, Start, End, Assignee, Status, Priority, Check, TaskID, Successors}

// Mandatory fields must resolve for a dataset to be usable.
var Mandatory = []Field{Category, Start, End}

// Synonyms holds the accepted header spellings per field, English and Japanese.
var Synonyms = map[Field][]string{
	Category:   {"カテゴリ", "category"},
	Viewpoint:  {"観点", "小タスク", "サブ", "subtask", "viewpoint"},
	Task:       {"タスク", "task"},
	Start:      {"start", "開始", "開始日"},
	End:        {"end", "終了", "終了日"},
	Assignee:   {"担当者", "assignee", "責任者"},
	Status:     {"進行状況", "status"},
	Priority:   {"優先度", "priority"},
	Check:      {"check", "チェック", "中間", "中間チェック"},
	TaskID:     {"タスクno", "taskno", "task no", "id", "タスクNo"},
	Successors: {"後続タスクno", "後続タスク", "後続", "successors", "next", "後続タスクNo"},
}

// Normalize strips a leading byte order mark, maps ideographic spaces to ASCII
// spaces, trims, and lowercases every header cell.
func Normalize(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ReplaceAll(h, "\u3000", " ")
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// Index returns the column of the first synonym present in a normalized header,
// or -1.
func Index(synonyms []string, normalized []string) int {
	for _, name := range synonyms {
		key := strings.ToLower(name)
		for i, h := range normalized {
			if h == key {
				return i
			}
		}
	}
	return -1
}

// Columns maps each field to its column index (-1 when absent).
type Columns map[Field]int

// Resolve looks up every field in a raw header row. The second result lists
// mandatory fields that could not be found.
func Resolve(row []string) (Columns, []Field) {
	normalized := Normalize(row)
	cols := make(Columns, len(Fields))
	for _, f := range Fields {
		cols[f] = Index(Synonyms[f], normalized)
	}
	var missing []Field
	for _, f := range Mandatory {
		if cols[f] < 0 {
			missing = append(missing, f)
		}
	}
	return cols, missing
}

// Has reports whether the field resolved to a column.
func (c Columns) Has(f Field) bool {
	i, ok := c[f]
	return ok && i >= 0
}

// Get returns the column index for f, or -1.
func (c Columns) Get(f Field) int {
	if i, ok := c[f]; ok {
		return i
	}
	return -1
}
