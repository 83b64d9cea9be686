package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candy-bianca-backend/internal/status"
)

type collectingSink struct {
	messages []string
}

func (c *collectingSink) Finished(_ string, message string) {
	c.messages = append(c.messages, message)
}

func modes(values ...string) []status.Raw {
	out := make([]status.Raw, 0, len(values))
	for _, v := range values {
		out = append(out, status.Raw{"MachMd": v, "PrCode": "65", "Pr": "1"})
	}
	return out
}

func TestFinishWatcher_Transitions(t *testing.T) {
	testCases := []struct {
		name  string
		seq   []status.Raw
		fires int
	}{
		{name: "washing then finished", seq: modes("2", "2", "7"), fires: 1},
		{name: "already finished at startup", seq: modes("7", "7", "7"), fires: 0},
		{name: "unavailable then finished", seq: modes("0", "7"), fires: 0},
		{name: "stopped then finished", seq: modes("1", "7"), fires: 0},
		{name: "unparsable then finished", seq: modes("x", "7"), fires: 0},
		{name: "paused then finished", seq: modes("4", "7"), fires: 1},
		{name: "two cycles", seq: modes("2", "7", "1", "2", "7"), fires: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &collectingSink{}
			w := NewFinishWatcher("washer", "Fine {program_name}", nil, sink)
			for _, raw := range tc.seq {
				w.OnStatus(context.Background(), "washer", raw)
			}
			assert.Len(t, sink.messages, tc.fires)
		})
	}
}

func TestFinishWatcher_Message(t *testing.T) {
	w := NewFinishWatcher("washer", "La lavasciuga ha terminato il programma {program_name}", nil)

	_, fire := w.Observe(status.Raw{"MachMd": "2"})
	assert.False(t, fire)

	msg, fire := w.Observe(status.Raw{"MachMd": "7", "PrCode": "999", "Pr": "1"})
	require.True(t, fire)
	assert.Equal(t, "La lavasciuga ha terminato il programma Other", msg)
}
