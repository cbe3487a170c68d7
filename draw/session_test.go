package draw_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/drawbox/draw"
)

func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestSessionHistoryKeepsFiveNewestFirst(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F"}
	s := draw.NewSession(names, names, draw.WithIntN(seeded(5)), draw.WithClock(tickingClock()))

	var drawn []draw.Entry
	for i := 0; i < 6; i++ {
		e, err := s.Draw()
		require.NoError(t, err)
		drawn = append(drawn, e)
	}

	history := s.History()
	require.Len(t, history, 5)

	for i, e := range history {
		assert.Equal(t, drawn[5-i], e, "history[%d]", i)
	}
	assert.NotContains(t, history, drawn[0])
	assert.True(t, history[0].CreatedAt.After(history[4].CreatedAt))
}

func TestSessionSingleOutcomeResetsAfterFirstDraw(t *testing.T) {
	s := draw.NewSession([]string{"A", "B", "C"}, []string{"X"}, draw.WithIntN(seeded(9)))

	e, err := s.Draw()
	require.NoError(t, err)
	assert.Contains(t, []string{"A", "B", "C"}, e.Participant)
	assert.Equal(t, "X", e.Outcome)

	_, usedOutcomes := s.Consumed()
	assert.Equal(t, []int{0}, usedOutcomes)
	assert.True(t, s.Exhausted())

	_, err = s.Draw()
	require.ErrorIs(t, err, draw.ErrExhausted)

	usedParticipants, usedOutcomes := s.Consumed()
	assert.Empty(t, usedParticipants)
	assert.Empty(t, usedOutcomes)
	assert.Empty(t, s.History())
	assert.False(t, s.Exhausted())
}

func TestSessionTwoByTwo(t *testing.T) {
	s := draw.NewSession([]string{"A", "B"}, []string{"X", "Y"}, draw.WithIntN(seeded(11)))

	first, err := s.Draw()
	require.NoError(t, err)
	second, err := s.Draw()
	require.NoError(t, err)

	assert.NotEqual(t, first.Participant, second.Participant)
	assert.NotEqual(t, first.Outcome, second.Outcome)
	assert.ElementsMatch(t, []string{"X", "Y"}, []string{first.Outcome, second.Outcome})

	_, usedOutcomes := s.Consumed()
	assert.Equal(t, []int{0, 1}, usedOutcomes)

	_, err = s.Draw()
	require.ErrorIs(t, err, draw.ErrExhausted)
	assert.Empty(t, s.History())
}

func TestSessionOutcomesRunOutBeforeParticipants(t *testing.T) {
	s := draw.NewSession([]string{"A", "B", "C", "D"}, []string{"X", "Y"}, draw.WithIntN(seeded(2)))

	for i := 0; i < 2; i++ {
		_, err := s.Draw()
		require.NoError(t, err)
	}

	usedParticipants, _ := s.Consumed()
	assert.Len(t, usedParticipants, 2)
	assert.True(t, s.Exhausted())
}

func TestSessionParticipantsOnly(t *testing.T) {
	participants := []string{"하니", "해린", "민지"}
	s := draw.NewSession(participants, []string{"당번"},
		draw.WithMode(draw.ParticipantsOnly),
		draw.WithIntN(seeded(4)),
	)

	var got []string
	for range participants {
		e, err := s.Draw()
		require.NoError(t, err)
		assert.Equal(t, "당번", e.Outcome)
		got = append(got, e.Participant)
	}

	assert.ElementsMatch(t, participants, got)

	_, usedOutcomes := s.Consumed()
	assert.Empty(t, usedOutcomes)

	_, err := s.Draw()
	require.ErrorIs(t, err, draw.ErrExhausted)
}

func TestSessionWithoutCandidates(t *testing.T) {
	s := draw.NewSession(nil, []string{"X"})

	_, err := s.Draw()
	require.ErrorIs(t, err, draw.ErrNoCandidates)

	s = draw.NewSession([]string{"A"}, nil)

	_, err = s.Draw()
	require.ErrorIs(t, err, draw.ErrNoCandidates)
}

func TestSessionSetLists(t *testing.T) {
	s := draw.NewSession([]string{"A", "B"}, []string{"X", "Y"}, draw.WithIntN(seeded(6)))

	_, err := s.Draw()
	require.NoError(t, err)

	assert.False(t, s.SetLists([]string{"A", "B"}, []string{"X", "Y"}))
	assert.Len(t, s.History(), 1)

	assert.True(t, s.SetLists([]string{"A", "B", "C"}, []string{"X", "Y"}))
	assert.Empty(t, s.History())
	assert.Equal(t, []string{"A", "B", "C"}, s.Participants())
	assert.Equal(t, []string{"X", "Y"}, s.Outcomes())
}

func TestSessionReset(t *testing.T) {
	s := draw.NewSession([]string{"A", "B"}, []string{"X", "Y"}, draw.WithIntN(seeded(8)))

	_, err := s.Draw()
	require.NoError(t, err)

	s.Reset()

	usedParticipants, usedOutcomes := s.Consumed()
	assert.Empty(t, usedParticipants)
	assert.Empty(t, usedOutcomes)
	assert.Empty(t, s.History())
}

func TestSessionHistorySize(t *testing.T) {
	names := []string{"A", "B", "C"}
	s := draw.NewSession(names, names, draw.WithHistorySize(2), draw.WithIntN(seeded(1)))

	for range names {
		_, err := s.Draw()
		require.NoError(t, err)
	}

	assert.Len(t, s.History(), 2)

	s = draw.NewSession(names, names, draw.WithHistorySize(0))
	for range names {
		_, err := s.Draw()
		require.NoError(t, err)
	}

	assert.Len(t, s.History(), 3)
}

func TestSessionDoesNotAliasInput(t *testing.T) {
	participants := []string{"A", "B"}
	s := draw.NewSession(participants, []string{"X"})

	participants[0] = "Z"
	assert.Equal(t, []string{"A", "B"}, s.Participants())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "paired", draw.Paired.String())
	assert.Equal(t, "participants_only", draw.ParticipantsOnly.String())
}
