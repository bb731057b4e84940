package draft

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/backend/apperr"
)

func newDraft() *Draft {
	return New("Go", "Learn Go", decimal.NewFromInt(30), decimal.Zero)
}

func TestAddChapterUsesMaxPlusOne(t *testing.T) {
	d := newDraft()

	first, err := d.AddChapter("One")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)

	second, _ := d.AddChapter("Two")
	third, _ := d.AddChapter("Three")
	assert.Equal(t, 3, third.Order)

	require.NoError(t, d.RemoveChapter(second.ID))

	next, err := d.AddChapter("Four")
	require.NoError(t, err)
	assert.Equal(t, 4, next.Order)

	orders := []int{}
	for _, ch := range d.Chapters {
		orders = append(orders, ch.Order)
	}
	assert.Equal(t, []int{1, 3, 4}, orders)
}

func TestAddChapterRejectsEmptyTitle(t *testing.T) {
	d := newDraft()
	_, err := d.AddChapter("  ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, d.Chapters)
}

func TestAddLecture(t *testing.T) {
	d := newDraft()
	ch, _ := d.AddChapter("One")

	l1, err := d.AddLecture(ch.ID, LectureInput{Title: "Intro", URL: "https://v/1", Duration: 5, IsPreviewFree: true})
	require.NoError(t, err)
	assert.Equal(t, 1, l1.Order)
	assert.NotEmpty(t, l1.ID)

	l2, _ := d.AddLecture(ch.ID, LectureInput{Title: "Deep", URL: "https://v/2", Duration: 10})
	require.NoError(t, d.RemoveLecture(ch.ID, l1.ID))

	l3, err := d.AddLecture(ch.ID, LectureInput{Title: "Deeper", URL: "https://v/3"})
	require.NoError(t, err)
	assert.Equal(t, l2.Order+1, l3.Order)
}

func TestAddLectureValidation(t *testing.T) {
	d := newDraft()
	ch, _ := d.AddChapter("One")

	_, err := d.AddLecture(ch.ID, LectureInput{Title: "", URL: "", Duration: -1})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 3)

	_, err = d.AddLecture("missing", LectureInput{Title: "x", URL: "y"})
	assert.ErrorIs(t, err, ErrChapterNotFound)
}

func TestRemoveMissing(t *testing.T) {
	d := newDraft()
	ch, _ := d.AddChapter("One")

	assert.ErrorIs(t, d.RemoveChapter("nope"), ErrChapterNotFound)
	assert.ErrorIs(t, d.RemoveLecture(ch.ID, "nope"), ErrLectureNotFound)
}

func TestToggleChapter(t *testing.T) {
	d := newDraft()
	ch, _ := d.AddChapter("One")

	collapsed, err := d.ToggleChapter(ch.ID)
	require.NoError(t, err)
	assert.True(t, collapsed)

	collapsed, _ = d.ToggleChapter(ch.ID)
	assert.False(t, collapsed)
}

func TestBuildProducesValidPayload(t *testing.T) {
	d := newDraft()
	ch, _ := d.AddChapter("One")
	_, _ = d.AddLecture(ch.ID, LectureInput{Title: "Intro", URL: "https://v/1", Duration: 3})

	payload := d.Build()

	require.NoError(t, payload.Validate())
	assert.Equal(t, "Go", payload.Title)
	assert.True(t, decimal.NewFromInt(30).Equal(*payload.Price))
	require.Len(t, payload.Chapters, 1)
	assert.Equal(t, ch.ID, payload.Chapters[0].ID)
	assert.Len(t, payload.Chapters[0].Lectures, 1)

	// the payload does not share lecture storage with the draft
	payload.Chapters[0].Lectures[0].Title = "changed"
	assert.Equal(t, "Intro", d.Chapters[0].Lectures[0].Title)
}
