package pending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candy-bianca-backend/internal/command"
	"candy-bianca-backend/internal/programs"
	"candy-bianca-backend/internal/status"
)

func TestBuildStartIntent_PendingPresetWithLiveFallback(t *testing.T) {
	p := &Options{ProgramPreset: "Cotone", Spin: intPtr(5)}
	live := status.Raw{"Temp": "40", "SpinSp": "3", "DelVl": "0"}

	intent := BuildStartIntent(p, live, Overrides{})

	cotone, ok := programs.PresetFragment("Cotone")
	require.True(t, ok)
	assert.Equal(t, cotone, intent.ProgramFragment)
	require.NotNil(t, intent.Temperature)
	assert.Equal(t, 40, *intent.Temperature)
	require.NotNil(t, intent.Spin)
	assert.Equal(t, 5, *intent.Spin)
	require.NotNil(t, intent.Delay)
	assert.Equal(t, 0, *intent.Delay)

	assert.True(t, p.Empty(), "pending options must be consumed")
}

func TestBuildStartIntent_Priority(t *testing.T) {
	testCases := []struct {
		name     string
		pending  Options
		live     status.Raw
		override Overrides
		expected command.StartIntent
	}{
		{
			name:     "override URL beats every preset",
			pending:  Options{ProgramPreset: "Lana", ProgramURL: "PrNm=99"},
			override: Overrides{ProgramURL: "PrNm=1&PrStr=X", ProgramPreset: "Delicati"},
			expected: command.StartIntent{ProgramFragment: "PrNm=1&PrStr=X", Delay: intPtr(0)},
		},
		{
			name:     "override preset beats pending preset",
			pending:  Options{ProgramPreset: "Lana"},
			override: Overrides{ProgramPreset: "Delicati"},
			expected: command.StartIntent{ProgramFragment: "PrNm=5&PrCode=4&PrStr=Delicati&SLevTgt=0&Dry=0", Delay: intPtr(0)},
		},
		{
			name:     "pending preset beats pending URL",
			pending:  Options{ProgramPreset: "Lana", ProgramURL: "PrNm=99"},
			expected: command.StartIntent{ProgramFragment: "PrNm=4&PrCode=5&PrStr=Lana&SLevTgt=0&Dry=0", Delay: intPtr(0)},
		},
		{
			name:     "pending URL used last",
			pending:  Options{ProgramURL: "PrNm=99"},
			expected: command.StartIntent{ProgramFragment: "PrNm=99", Delay: intPtr(0)},
		},
		{
			name:     "unknown override preset falls through",
			pending:  Options{ProgramURL: "PrNm=99"},
			override: Overrides{ProgramPreset: "Nope"},
			expected: command.StartIntent{ProgramFragment: "PrNm=99", Delay: intPtr(0)},
		},
		{
			name:     "no program keeps live delay",
			live:     status.Raw{"DelVal": "120", "Temp": "30"},
			expected: command.StartIntent{Temperature: intPtr(30), Delay: intPtr(120)},
		},
		{
			name:     "override values beat pending and live",
			pending:  Options{Temperature: intPtr(60), Spin: intPtr(2), Delay: intPtr(3)},
			live:     status.Raw{"Temp": "30", "SpinSp": "7", "DelVl": "60"},
			override: Overrides{Temperature: intPtr(90), Spin: intPtr(9), Delay: intPtr(1)},
			expected: command.StartIntent{Temperature: intPtr(90), Spin: intPtr(9), Delay: intPtr(1)},
		},
		{
			name:     "malformed live values are dropped",
			live:     status.Raw{"Temp": "hot", "SpinSp": ""},
			expected: command.StartIntent{},
		},
		{
			name:     "nothing anywhere",
			expected: command.StartIntent{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.pending.Clone()
			got := BuildStartIntent(&p, tc.live, tc.override)
			assert.Equal(t, tc.expected, got)
			assert.True(t, p.Empty())
		})
	}
}

func TestBuildStartIntent_DoesNotAliasPending(t *testing.T) {
	temp := 40
	p := &Options{Temperature: &temp}
	intent := BuildStartIntent(p, nil, Overrides{})
	require.NotNil(t, intent.Temperature)

	*intent.Temperature = 90
	assert.Equal(t, 40, temp)
}

func TestOptions_Setters(t *testing.T) {
	var p Options
	assert.True(t, p.Empty())

	require.NoError(t, p.SetPreset("Cotone"))
	assert.ErrorIs(t, p.SetPreset("Missing"), ErrUnknownPreset)
	assert.Equal(t, "Cotone", p.ProgramPreset)

	require.NoError(t, p.SetTemperature(60))
	assert.ErrorIs(t, p.SetTemperature(55), ErrInvalidTemperature)

	require.NoError(t, p.SetSpin(10))
	assert.ErrorIs(t, p.SetSpin(-1), ErrInvalidSpin)

	require.NoError(t, p.SetDelay(2))
	assert.ErrorIs(t, p.SetDelay(-5), ErrInvalidDelay)

	p.SetProgramURL("PrNm=1")
	assert.False(t, p.Empty())

	clone := p.Clone()
	p.Clear()
	assert.True(t, p.Empty())
	assert.Equal(t, 60, *clone.Temperature)
}

func TestOverrides_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		o       Overrides
		errIs   error
		wantErr bool
		wantURL string
	}{
		{name: "empty", o: Overrides{}},
		{name: "known preset and options", o: Overrides{ProgramPreset: "Lana", Temperature: intPtr(30), Spin: intPtr(0), Delay: intPtr(0)}},
		{name: "fragment is normalized", o: Overrides{ProgramURL: " PrNm=1&&PrStr=Cotone "}, wantURL: "PrNm=1&PrStr=Cotone"},
		{name: "unknown preset", o: Overrides{ProgramPreset: "Cotton"}, errIs: ErrUnknownPreset},
		{name: "temperature not offered", o: Overrides{Temperature: intPtr(55)}, errIs: ErrInvalidTemperature},
		{name: "spin out of range", o: Overrides{Spin: intPtr(42)}, errIs: ErrInvalidSpin},
		{name: "negative spin", o: Overrides{Spin: intPtr(-1)}, errIs: ErrInvalidSpin},
		{name: "negative delay", o: Overrides{Delay: intPtr(-3)}, errIs: ErrInvalidDelay},
		{name: "fragment without PrNm", o: Overrides{ProgramURL: "PrCode=65"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := tc.o
			err := o.Validate()
			switch {
			case tc.errIs != nil:
				assert.ErrorIs(t, err, tc.errIs)
			case tc.wantErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				if tc.wantURL != "" {
					assert.Equal(t, tc.wantURL, o.ProgramURL)
				}
			}
		})
	}
}

func TestOverrides_ValidateListsPresets(t *testing.T) {
	o := Overrides{ProgramPreset: "Cotton"}
	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cotone")
}
