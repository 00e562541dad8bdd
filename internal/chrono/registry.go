package chrono

import (
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/beaconlabs/beacon/internal/store"
)

// cronParser parses the daily "0 H * * *" expressions derived from each
// definition's target hour, used for next-fire display.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Registry is the static table of chrono definitions. Duplicate handles and
// out-of-range hours are programming errors caught at construction.
type Registry struct {
	defs map[string]Definition
}

func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if def.Handle == "" {
			return nil, fmt.Errorf("chrono definition requires a handle")
		}
		if def.UTCHour < 0 || def.UTCHour > 23 {
			return nil, fmt.Errorf("chrono %s: utc hour %d out of range", def.Handle, def.UTCHour)
		}
		if def.Run == nil {
			return nil, fmt.Errorf("chrono %s: run function is required", def.Handle)
		}
		if _, exists := r.defs[def.Handle]; exists {
			return nil, fmt.Errorf("duplicate chrono handle %q", def.Handle)
		}
		r.defs[def.Handle] = def
	}
	return r, nil
}

func (r *Registry) Get(handle string) (Definition, bool) {
	def, ok := r.defs[handle]
	return def, ok
}

// List returns all definitions ordered by target hour, then handle.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UTCHour != out[j].UTCHour {
			return out[i].UTCHour < out[j].UTCHour
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}

// Defs maps the registry into the store's sync representation.
func (r *Registry) Defs() []store.ChronoDef {
	defs := r.List()
	out := make([]store.ChronoDef, 0, len(defs))
	for _, def := range defs {
		out = append(out, store.ChronoDef{
			Handle:  def.Handle,
			UTCHour: def.UTCHour,
			Feature: def.RequiredFeature,
		})
	}
	return out
}

// NextFire returns the next wall-clock time the chrono's daily schedule
// fires after from, in UTC. Used for operator-facing listings.
func (r *Registry) NextFire(handle string, from time.Time) (time.Time, error) {
	def, ok := r.defs[handle]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown chrono handle %q", handle)
	}

	sched, err := cronParser.Parse(fmt.Sprintf("0 %d * * *", def.UTCHour))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule for %s: %w", handle, err)
	}
	return sched.Next(from.UTC()), nil
}
