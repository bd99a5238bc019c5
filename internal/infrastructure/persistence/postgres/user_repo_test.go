package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The activity feeds name their timestamp columns differently: expenses and
// incomes have created_at, lesson_completions has completed_at. A wrong
// column name in any UNION branch aborts the whole statement, so the query
// text is pinned against the schema here.
func TestListRecentlyActiveQuery_TimestampColumns(t *testing.T) {
	assert.Contains(t, listRecentlyActiveSQL, "SELECT user_id, created_at FROM expenses")
	assert.Contains(t, listRecentlyActiveSQL, "SELECT user_id, created_at FROM incomes")
	assert.Contains(t, listRecentlyActiveSQL, "SELECT user_id, completed_at AS created_at FROM lesson_completions")
}

func TestListRecentlyActiveQuery_LessonTableHasNoCreatedAt(t *testing.T) {
	table := lessonCompletionsDDL(t)

	assert.Contains(t, table, "completed_at")
	assert.NotContains(t, table, "created_at")
}

// lessonCompletionsDDL extracts the CREATE TABLE block for lesson_completions
// from the embedded migrations.
func lessonCompletionsDDL(t *testing.T) string {
	t.Helper()

	const marker = "CREATE TABLE IF NOT EXISTS lesson_completions"
	for _, m := range GetMigrations() {
		start := strings.Index(m.UpSQL, marker)
		if start < 0 {
			continue
		}
		rest := m.UpSQL[start:]
		end := strings.Index(rest, ");")
		if end < 0 {
			t.Fatalf("unterminated lesson_completions DDL in migration %q", m.Name)
		}
		return rest[:end]
	}

	t.Fatal("no migration creates lesson_completions")
	return ""
}
