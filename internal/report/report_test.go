package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheetbot/internal/attendance"
)

var fixedDay = time.Date(2026, time.March, 7, 9, 30, 0, 0, time.UTC)

func TestFormat_PortalExample(t *testing.T) {
	s := attendance.Classify([]attendance.Row{
		{"ชั่วโมงการทำงานรายเดือน", "160"},
		{"TOTAL WORKING HOURS", "107.95", "13"},
		{"เข้าสาย", "0"},
		{"ขาดงาน", "16", "2"},
	})

	msg := Format(s, fixedDay)

	want := "📊 สรุปประวัติงาน 07/03/2026\n" +
		"━━━━━━━━━━━━━━━\n" +
		"🎯 เป้าหมายเดือนนี้: 160 ชม.\n" +
		"🕒 ทำงานไปแล้ว: 107.95 ชม.\n" +
		"📅 จำนวนวันที่ทำ: 13 วัน\n" +
		"✅ ไม่มีเข้าสาย\n" +
		"❌ ขาดงาน: 2 ครั้ง (16 ชม.)\n" +
		"━━━━━━━━━━━━━━━\n" +
		"ระบบส่งข้อมูลอัตโนมัติ"
	assert.Equal(t, want, msg)
	assert.Contains(t, msg, "เป้าหมายเดือนนี้: 160")
	assert.Contains(t, msg, "ทำงานไปแล้ว: 107.95")
}

func TestFormat_Deterministic(t *testing.T) {
	s := attendance.NewSummary()
	s.LateMinutes = 3
	require.Equal(t, Format(s, fixedDay), Format(s, fixedDay))
}

func TestFormat_ConditionalLines(t *testing.T) {
	tests := []struct {
		name       string
		late       int
		times      int
		hours      string
		contains   []string
		notContain []string
	}{
		{
			name:       "no lateness no absence",
			contains:   []string{"✅ ไม่มีเข้าสาย", "✅ ไม่มีขาดงาน"},
			notContain: []string{"🚨", "❌"},
		},
		{
			name:       "late fifteen minutes",
			late:       15,
			contains:   []string{"🚨 เข้าสาย: 15 นาที", "✅ ไม่มีขาดงาน"},
			notContain: []string{"ไม่มีเข้าสาย"},
		},
		{
			name:       "absent twice",
			times:      2,
			hours:      "16",
			contains:   []string{"❌ ขาดงาน: 2 ครั้ง (16 ชม.)", "✅ ไม่มีเข้าสาย"},
			notContain: []string{"ไม่มีขาดงาน"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := attendance.NewSummary()
			s.LateMinutes = tt.late
			s.AbsentTimes = tt.times
			if tt.hours != "" {
				s.AbsentHours = tt.hours
			}
			msg := Format(s, fixedDay)
			for _, c := range tt.contains {
				assert.Contains(t, msg, c)
			}
			for _, c := range tt.notContain {
				assert.NotContains(t, msg, c)
			}
		})
	}
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "⚠️ โปรแกรม RPA ผิดพลาด: boom", FailureMessage(errors.New("boom")))
	assert.Equal(t, "⚠️ โปรแกรม RPA ผิดพลาด: unknown error", FailureMessage(nil))
}
