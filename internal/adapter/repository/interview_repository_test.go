package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

func assignedColumns(record *entities.SessionRecord) []string {
	var cols []string
	for _, a := range upsertOnEmail(record).DoUpdates {
		cols = append(cols, a.Column.Name)
	}
	return cols
}

func TestUpsertOnEmail_KeepsStoredLanguageWhenEmpty(t *testing.T) {
	record := entities.NewSessionRecord(uuid.New(), "ada@example.com")

	conflict := upsertOnEmail(record)
	assert.Equal(t, entities.ColumnEmail, conflict.Columns[0].Name)

	cols := assignedColumns(record)
	assert.NotContains(t, cols, entities.ColumnLanguage)
	for _, c := range []string{entities.ColumnID, entities.ColumnResumeURL, entities.ColumnSkills, entities.ColumnEmail} {
		assert.NotContains(t, cols, c)
	}
	assert.ElementsMatch(t, []string{
		entities.ColumnTranscript, entities.ColumnFeedback, entities.ColumnTone,
		entities.ColumnDuration, entities.ColumnConducted, entities.ColumnUpdatedAt,
	}, cols)
}

func TestUpsertOnEmail_MatchesPartialUpdate(t *testing.T) {
	record := entities.NewSessionRecord(uuid.New(), "ada@example.com")
	record.Language = "fr"

	updates, err := entities.CompletionOf(record).Updates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}

	assert.ElementsMatch(t, keys, assignedColumns(record))
	assert.Contains(t, keys, entities.ColumnLanguage)
}
