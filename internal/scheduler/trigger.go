package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskflowhq/taskflow-api/internal/apperr"
)

// TriggerKind identifies the schedule variant of a Trigger.
type TriggerKind int

const (
	KindInterval TriggerKind = iota
	KindDaily
	KindWeekly
	KindCron
)

// Trigger describes when a job fires. Immutable once constructed; use the
// constructor matching the variant.
type Trigger struct {
	Kind TriggerKind

	EveryMinutes int // KindInterval

	Hour    int          // KindDaily, KindWeekly
	Minute  int          // KindDaily, KindWeekly
	Weekday time.Weekday // KindWeekly

	Expression string // KindCron, 5-field crontab

	Timezone string // IANA zone; empty means UTC. Ignored for KindInterval.
}

// Interval fires every n minutes.
func Interval(minutes int) Trigger {
	return Trigger{Kind: KindInterval, EveryMinutes: minutes}
}

// DailyAt fires every day at hour:minute in the given timezone.
func DailyAt(hour, minute int, timezone string) Trigger {
	return Trigger{Kind: KindDaily, Hour: hour, Minute: minute, Timezone: timezone}
}

// WeeklyAt fires once a week on weekday at hour:minute in the given timezone.
func WeeklyAt(weekday time.Weekday, hour, minute int, timezone string) Trigger {
	return Trigger{Kind: KindWeekly, Weekday: weekday, Hour: hour, Minute: minute, Timezone: timezone}
}

// CronExpr fires per a raw 5-field cron expression in the given timezone.
func CronExpr(expression, timezone string) Trigger {
	return Trigger{Kind: KindCron, Expression: expression, Timezone: timezone}
}

// specParser accepts standard 5-field crontab plus @every/@daily descriptors
// and TZ/CRON_TZ prefixes.
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks the trigger's fields without registering it.
func (t Trigger) Validate() error {
	_, err := t.cronSpec()
	return err
}

// cronSpec validates the trigger and renders it as a robfig/cron spec string.
// Per-job timezones ride on the CRON_TZ prefix so a single cron instance can
// host jobs in different zones.
func (t Trigger) cronSpec() (string, error) {
	switch t.Kind {
	case KindInterval:
		if t.EveryMinutes < 1 {
			return "", apperr.Newf(apperr.InvalidTrigger, "interval must be at least 1 minute, got %d", t.EveryMinutes)
		}
		return fmt.Sprintf("@every %dm", t.EveryMinutes), nil

	case KindDaily:
		if err := t.validateClock(); err != nil {
			return "", err
		}
		return t.withTZ(fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)), nil

	case KindWeekly:
		if err := t.validateClock(); err != nil {
			return "", err
		}
		if t.Weekday < time.Sunday || t.Weekday > time.Saturday {
			return "", apperr.Newf(apperr.InvalidTrigger, "invalid weekday %d", t.Weekday)
		}
		return t.withTZ(fmt.Sprintf("%d %d * * %d", t.Minute, t.Hour, int(t.Weekday))), nil

	case KindCron:
		if t.Expression == "" {
			return "", apperr.New(apperr.InvalidTrigger, "cron expression is required")
		}
		if err := t.validateZone(); err != nil {
			return "", err
		}
		if _, err := specParser.Parse(t.Expression); err != nil {
			return "", apperr.Wrap(apperr.InvalidTrigger, fmt.Sprintf("malformed cron expression %q", t.Expression), err)
		}
		return t.withTZ(t.Expression), nil

	default:
		return "", apperr.Newf(apperr.InvalidTrigger, "unknown trigger kind %d", t.Kind)
	}
}

func (t Trigger) validateClock() error {
	if t.Hour < 0 || t.Hour > 23 {
		return apperr.Newf(apperr.InvalidTrigger, "hour %d out of range [0,23]", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return apperr.Newf(apperr.InvalidTrigger, "minute %d out of range [0,59]", t.Minute)
	}
	return t.validateZone()
}

func (t Trigger) validateZone() error {
	if t.Timezone == "" {
		return nil
	}
	if _, err := time.LoadLocation(t.Timezone); err != nil {
		return apperr.Wrap(apperr.InvalidTrigger, fmt.Sprintf("unknown timezone %q", t.Timezone), err)
	}
	return nil
}

func (t Trigger) withTZ(spec string) string {
	if t.Timezone == "" || t.Timezone == "UTC" {
		return spec
	}
	return fmt.Sprintf("CRON_TZ=%s %s", t.Timezone, spec)
}
