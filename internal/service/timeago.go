package service

import (
	"fmt"
	"time"
)

// TimeAgo 将时间格式化为相对描述，超过 30 天显示日期
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "刚刚"
	case d < time.Hour:
		return fmt.Sprintf("%d分钟前", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d小时前", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d天前", int(d.Hours()/24))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d周前", int(d.Hours()/24/7))
	default:
		return t.Format("2006-01-02")
	}
}
