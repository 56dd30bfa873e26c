// Package report renders attendance summaries into the text pushed to the user.
package report

import (
	"fmt"
	"strings"
	"time"

	"timesheetbot/internal/attendance"
)

const (
	divider = "━━━━━━━━━━━━━━━"
	footer  = "ระบบส่งข้อมูลอัตโนมัติ"

	// dateLayout is day/month/year.
	dateLayout = "02/01/2006"
)

// Format renders the fixed-layout report for s, stamped with today's date.
func Format(s attendance.Summary, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 สรุปประวัติงาน %s\n", today.Format(dateLayout))
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "🎯 เป้าหมายเดือนนี้: %s ชม.\n", s.TargetHours)
	fmt.Fprintf(&b, "🕒 ทำงานไปแล้ว: %s ชม.\n", s.TotalHours)
	fmt.Fprintf(&b, "📅 จำนวนวันที่ทำ: %s วัน\n", s.TotalDays)
	b.WriteString(lateLine(s.LateMinutes) + "\n")
	b.WriteString(absentLine(s.AbsentTimes, s.AbsentHours) + "\n")
	b.WriteString(divider + "\n")
	b.WriteString(footer)
	return b.String()
}

func lateLine(minutes int) string {
	if minutes > 0 {
		return fmt.Sprintf("🚨 เข้าสาย: %d นาที", minutes)
	}
	return "✅ ไม่มีเข้าสาย"
}

func absentLine(times int, hours string) string {
	if times > 0 {
		return fmt.Sprintf("❌ ขาดงาน: %d ครั้ง (%s ชม.)", times, hours)
	}
	return "✅ ไม่มีขาดงาน"
}

// FailureMessage is the optional notification sent when a run fails.
func FailureMessage(err error) string {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return "⚠️ โปรแกรม RPA ผิดพลาด: " + reason
}
