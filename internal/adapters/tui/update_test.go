package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-classifier/internal/core"
)

type fakeService struct {
	result *core.ClassificationResult
	err    error
	texts  []string
	files  []*core.FileInput
}

func (f *fakeService) ClassifyText(_ context.Context, text string) (*core.ClassificationResult, error) {
	f.texts = append(f.texts, text)
	return f.result, f.err
}

func (f *fakeService) ClassifyFile(_ context.Context, file *core.FileInput) (*core.ClassificationResult, error) {
	f.files = append(f.files, file)
	if err := core.ValidateFile(file); err != nil {
		return nil, err
	}
	return f.result, f.err
}

func result(category core.Category, confidence float64) *core.ClassificationResult {
	return core.NewClassificationResult(&core.ClassificationResponse{
		Category:       category,
		Confidence:     confidence,
		SuggestedReply: "Thanks for the message.",
		MethodUsed:     core.MethodNLP,
	}, "input", time.Now())
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func TestSubmitText(t *testing.T) {
	service := &fakeService{result: result(core.CategoryProductive, 0.95)}
	m := typeText(NewModel(context.Background(), service), "Please send the monthly report")

	m, cmd := press(m, tea.KeyCtrlS)
	require.NotNil(t, cmd)
	assert.True(t, m.State.Loading)

	// Submitting again while loading does nothing
	again, againCmd := press(m, tea.KeyCtrlS)
	assert.Nil(t, againCmd)
	assert.Equal(t, m.State.Seq, again.State.Seq)

	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.False(t, m.State.Loading)
	require.NotNil(t, m.State.Result)
	assert.Equal(t, core.CategoryProductive, m.State.Result.Category)
	assert.Equal(t, []string{"Please send the monthly report"}, service.texts)
	assert.Contains(t, m.View(), "High confidence: 95.0%")
}

func TestSubmitText_Validation(t *testing.T) {
	service := &fakeService{result: result(core.CategoryProductive, 0.95)}
	m := typeText(NewModel(context.Background(), service), "short")

	m, cmd := press(m, tea.KeyCtrlS)

	assert.Nil(t, cmd)
	require.NotNil(t, m.State.Failure)
	assert.Equal(t, core.KindValidation, m.State.Failure.Kind)
	assert.Empty(t, service.texts)
	assert.Contains(t, m.View(), "Text too short")
}

func TestStaleResponseDropped(t *testing.T) {
	service := &fakeService{result: result(core.CategoryUnproductive, 0.5)}
	m := typeText(NewModel(context.Background(), service), "Happy holidays to the whole team")

	m, _ = press(m, tea.KeyCtrlS)
	staleSeq := m.State.Seq

	// Switching tab supersedes the submission in flight
	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, core.ModeFile, m.State.Mode)

	next, _ := m.Update(ClassifiedMsg{Seq: staleSeq, Result: result(core.CategoryUnproductive, 0.5)})
	m = next.(Model)
	assert.Nil(t, m.State.Result)

	next, _ = m.Update(ClassifiedMsg{Seq: staleSeq, Err: errors.New("late failure")})
	m = next.(Model)
	assert.Nil(t, m.State.Failure)
}

func TestFailureDisplayed(t *testing.T) {
	service := &fakeService{err: &core.TransportError{Message: "The service is starting (cold start)", Timeout: true}}
	m := typeText(NewModel(context.Background(), service), "Please send the monthly report")

	m, cmd := press(m, tea.KeyCtrlS)
	next, _ := m.Update(cmd())
	m = next.(Model)

	require.NotNil(t, m.State.Failure)
	assert.Equal(t, core.KindTransport, m.State.Failure.Kind)
	assert.False(t, m.State.Loading)
	assert.Contains(t, m.View(), "cold start")
}

func TestFileMode(t *testing.T) {
	service := &fakeService{result: result(core.CategoryProductive, 0.8)}
	m, _ := press(NewModel(context.Background(), service), tea.KeyTab)
	m = typeText(m, "notes.png")

	m, cmd := press(m, tea.KeyCtrlS)
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)

	// A missing file fails to load before the service is reached
	require.NotNil(t, m.State.Failure)
	assert.Empty(t, service.files)
	assert.Empty(t, m.Text)
}

func TestEditing(t *testing.T) {
	m := typeText(NewModel(context.Background(), &fakeService{}), "abc")
	m, _ = press(m, tea.KeySpace)
	m, _ = press(m, tea.KeyEnter)
	assert.Equal(t, "abc \n", string(m.Text))

	m, _ = press(m, tea.KeyBackspace)
	assert.Equal(t, "abc ", string(m.Text))

	m, _ = press(m, tea.KeyCtrlU)
	assert.Empty(t, m.Text)

	_, cmd := press(m, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
