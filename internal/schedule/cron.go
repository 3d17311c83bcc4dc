package schedule

import "github.com/robfig/cron/v3"

// cronParser accepts the standard 5-field syntax: minute hour day month weekday.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidCronExpr reports whether expr is a well-formed 5-field cron expression.
// Tick identities are matched against configured expressions by raw string
// equality; validation only decides whether a configured expression is
// eligible to match at all.
func ValidCronExpr(expr string) bool {
	_, err := cronParser.Parse(expr)
	return err == nil
}
