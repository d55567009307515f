package credential

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Select picks one eligible account uniformly at random.
func (p *Pool) Select() (Snapshot, bool) {
	now := p.clock.Now()

	var usable []Snapshot
	for _, name := range p.names() {
		p.locks.Lock(name)
		if acc := p.lookup(name); acc != nil && p.eligible(acc, now) {
			usable = append(usable, acc.snapshot())
		}
		p.locks.Unlock(name)
	}

	if len(usable) == 0 {
		return Snapshot{}, false
	}
	return usable[p.intn(len(usable))], true
}

// eligible applies the selection rules in order: validity, time window,
// then the cached validity horizon and traffic.
func (p *Pool) eligible(acc *account, now time.Time) bool {
	if !acc.valid {
		return false
	}

	if window := acc.options[OptionTime]; len(window) > 0 {
		w, err := parseTimeWindow(window[0])
		if err != nil {
			// A malformed window keeps the account usable.
			p.log.Warn("Your Time %s has wrong format, use: 1:22-3:44", window[0])
		} else if !w.contains(now.In(p.loc)) {
			return false
		}
	}

	if info := acc.info; info != nil {
		if info.ValidUntil != nil && info.ValidUntil.Unix() > 0 && now.After(*info.ValidUntil) {
			return false
		}
		if info.TrafficLeft != nil && *info.TrafficLeft == 0 {
			return false
		}
	}
	return true
}

type timeOfDay struct {
	hour, minute int
}

func (t timeOfDay) before(o timeOfDay) bool {
	return t.hour < o.hour || (t.hour == o.hour && t.minute < o.minute)
}

type timeWindow struct {
	start, end timeOfDay
}

var errWindowFormat = errors.New("want H:M-H:M")

func parseTimeWindow(s string) (timeWindow, error) {
	startRaw, endRaw, ok := strings.Cut(s, "-")
	if !ok || strings.Contains(endRaw, "-") {
		return timeWindow{}, &ConfigError{Option: OptionTime, Value: s, Err: errWindowFormat}
	}
	start, err := parseTimeOfDay(startRaw)
	if err != nil {
		return timeWindow{}, &ConfigError{Option: OptionTime, Value: s, Err: err}
	}
	end, err := parseTimeOfDay(endRaw)
	if err != nil {
		return timeWindow{}, &ConfigError{Option: OptionTime, Value: s, Err: err}
	}
	return timeWindow{start: start, end: end}, nil
}

func parseTimeOfDay(s string) (timeOfDay, error) {
	hourRaw, minuteRaw, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return timeOfDay{}, errWindowFormat
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hourRaw))
	if err != nil {
		return timeOfDay{}, err
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minuteRaw))
	if err != nil {
		return timeOfDay{}, err
	}
	return timeOfDay{hour: hour, minute: minute}, nil
}

// contains compares at minute resolution with exclusive bounds. Equal start
// and end mean the whole day; start after end wraps past midnight.
func (w timeWindow) contains(now time.Time) bool {
	cur := timeOfDay{hour: now.Hour(), minute: now.Minute()}
	switch {
	case w.start == w.end:
		return true
	case w.start.before(w.end):
		return w.start.before(cur) && cur.before(w.end)
	default:
		return w.start.before(cur) || cur.before(w.end)
	}
}
