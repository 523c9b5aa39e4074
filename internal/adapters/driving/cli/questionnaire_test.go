package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionnaireParseCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := writeFile(t, "ddq.pdf", "%PDF-1.4")

	out, err := execute(t, "questionnaire", "parse", path)

	require.NoError(t, err)
	assert.Contains(t, out, "ddq.pdf: 2 questions in 1 sections")
	assert.Contains(t, out, "Finance")
	assert.Contains(t, out, "q-1")
	assert.Contains(t, out, "Churn?")
}

func TestQuestionnaireParseCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "questionnaire", "parse", filepath.Join(t.TempDir(), "none.pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open questionnaire")
}

func TestQuestionnaireShowCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "questionnaire", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Finance")
	assert.Contains(t, out, "Revenue?")
}

func TestQuestionnaireShowCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{Questionnaires: &fakeQuestionnaires{}})

	out, err := execute(t, "questionnaire", "show", "p-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Project p-1 has no questionnaire.")
}
