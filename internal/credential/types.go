package credential

import (
	"maps"
	"slices"
	"time"
)

// OptionTime is the only option the pool interprets itself: a list whose
// first entry is a "H:M-H:M" window during which the account may be used.
const OptionTime = "time"

// Options maps an option name to its values.
type Options map[string][]string

func (o Options) clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = slices.Clone(v)
	}
	return out
}

func (o Options) equal(other Options) bool {
	return maps.EqualFunc(o, other, slices.Equal[[]string])
}

// Config is the raw per-account configuration supplied by the host.
type Config struct {
	Name    string
	Secret  string
	Options Options
}

// Info is the cached remote metadata of one account. It is replaced as a
// whole on every fetch; nil pointer fields mean "unknown".
type Info struct {
	// ValidUntil is the end of the account's validity. A non-positive Unix
	// time means unlimited.
	ValidUntil *time.Time
	// TrafficLeft and MaxTraffic are in KB; 0 means exhausted, -1 unlimited.
	TrafficLeft *int64
	MaxTraffic  *int64
	Premium     *bool
	FetchedAt   time.Time
	// Error is set when the fetch that produced this record failed.
	Error string
}

func (i *Info) clone() *Info {
	if i == nil {
		return nil
	}
	out := *i
	if i.ValidUntil != nil {
		v := *i.ValidUntil
		out.ValidUntil = &v
	}
	if i.TrafficLeft != nil {
		v := *i.TrafficLeft
		out.TrafficLeft = &v
	}
	if i.MaxTraffic != nil {
		v := *i.MaxTraffic
		out.MaxTraffic = &v
	}
	if i.Premium != nil {
		v := *i.Premium
		out.Premium = &v
	}
	return &out
}

// account is the single owned record per name. All fields are guarded by the
// pool's per-name lock.
type account struct {
	name        string
	secret      string
	options     Options
	valid       bool
	lastLoginAt time.Time
	info        *Info
	// refreshPending is set while an asynchronous refresh job is queued.
	refreshPending bool
}

// AccountInfo is the merged view returned to the host: default shape with
// the cached Info fields laid over it.
type AccountInfo struct {
	Login       string     `json:"login"`
	Type        string     `json:"type"`
	Options     Options    `json:"options"`
	Valid       bool       `json:"valid"`
	ValidUntil  *time.Time `json:"validuntil"`
	TrafficLeft *int64     `json:"trafficleft"`
	MaxTraffic  *int64     `json:"maxtraffic"`
	Premium     bool       `json:"premium"`
	FetchedAt   time.Time  `json:"timestamp"`
	Error       string     `json:"error,omitempty"`
}

// Snapshot is a copy of an account's configuration and session state,
// without the secret.
type Snapshot struct {
	Name        string
	Options     Options
	Valid       bool
	LastLoginAt time.Time
}

func (a *account) snapshot() Snapshot {
	return Snapshot{
		Name:        a.name,
		Options:     a.options.clone(),
		Valid:       a.valid,
		LastLoginAt: a.lastLoginAt,
	}
}
