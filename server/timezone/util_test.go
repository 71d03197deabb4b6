package timezone

import (
	"testing"
	"time"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{name: "UTC", tz: "UTC"},
		{name: "empty string defaults to UTC", tz: ""},
		{name: "Asia/Kolkata", tz: "Asia/Kolkata"},
		{name: "America/New_York", tz: "America/New_York"},
		{name: "invalid timezone", tz: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimezone() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if loc == nil {
				t.Errorf("ParseTimezone() returned nil location")
			}
		})
	}
}

func TestParseInstant(t *testing.T) {
	kolkata := MustParseTimezone("Asia/Kolkata")
	want := time.Date(2026, 10, 20, 10, 30, 0, 0, kolkata)

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "offset in zone", value: "2026-10-20T10:30:00+05:30"},
		{name: "offset without seconds", value: "2026-10-20T12:00+05:30", want: time.Date(2026, 10, 20, 12, 0, 0, 0, kolkata)},
		{name: "UTC designator without seconds", value: "2026-10-20T06:30Z", want: time.Date(2026, 10, 20, 12, 0, 0, 0, kolkata)},
		{name: "fractional seconds with offset", value: "2026-10-20T10:30:00.000+05:30"},
		{name: "UTC designator", value: "2026-10-20T05:00:00Z"},
		{name: "other offset", value: "2026-10-20T01:00:00-04:00"},
		{name: "naive seconds", value: "2026-10-20T10:30:00"},
		{name: "naive minutes", value: "2026-10-20T10:30"},
		{name: "padded", value: "  2026-10-20T10:30:00+05:30 "},
		{name: "empty", value: "", wantErr: true},
		{name: "garbage", value: "next tuesday", wantErr: true},
		{name: "date only is midnight in zone", value: "2026-10-20", want: time.Date(2026, 10, 20, 0, 0, 0, 0, kolkata)},
		{name: "bad offset", value: "2026-10-20T10:30+5:30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.value, kolkata)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInstant() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			expected := want
			if !tt.want.IsZero() {
				expected = tt.want
			}
			if !got.Equal(expected) {
				t.Errorf("ParseInstant() = %v, want %v", got, expected)
			}
			if got.Location() != kolkata {
				t.Errorf("ParseInstant() location = %v, want %v", got.Location(), kolkata)
			}
		})
	}
}

func TestStartOfDayAndAtHour(t *testing.T) {
	kolkata := MustParseTimezone("Asia/Kolkata")
	// 22:00 UTC on the 19th is already the 20th in Kolkata.
	instant := time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC)

	start := StartOfDay(instant, kolkata)
	if want := time.Date(2026, 10, 20, 0, 0, 0, 0, kolkata); !start.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", start, want)
	}

	ten := AtHour(instant, 10, kolkata)
	if want := time.Date(2026, 10, 20, 10, 0, 0, 0, kolkata); !ten.Equal(want) {
		t.Errorf("AtHour() = %v, want %v", ten, want)
	}
}

func TestFormatSlotLabel(t *testing.T) {
	start := time.Date(2026, 10, 20, 10, 30, 0, 0, time.UTC)
	got := FormatSlotLabel(start, start.Add(time.Hour))
	if want := "Tue 20 Oct, 10:30 AM – 11:30 AM"; got != want {
		t.Errorf("FormatSlotLabel() = %q, want %q", got, want)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{"mon", time.Monday, false},
		{"Friday", time.Friday, false},
		{" SAT ", time.Saturday, false},
		{"sun", time.Sunday, false},
		{"funday", time.Sunday, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekday() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseWeekday() = %v, want %v", got, tt.want)
			}
		})
	}
}
