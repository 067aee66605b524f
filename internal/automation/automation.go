package automation

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Event sets Param to Value at time At. With Until > At the previous value
// is restored at Until.
type Event struct {
	At    float64 `yaml:"at"`
	Until float64 `yaml:"until"`
	Param string  `yaml:"param"`
	Value float64 `yaml:"value"`
}

// Scenario is a named list of events that can be stored on its own.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Events      []Event `yaml:"events"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}

	return &scenario, nil
}

// Resolver maps a parameter name to its live handle.
type Resolver func(name string) (*float64, error)

type action struct {
	at      float64
	handle  *float64
	value   float64
	restore *action
}

// Timeline applies the events of a scenario as simulation time advances.
type Timeline struct {
	actions []*action
	next    int
	last    float64
	logger  *zap.Logger
}

type Option func(*Timeline)

func WithLogger(logger *zap.Logger) Option {
	return func(tl *Timeline) { tl.logger = logger }
}

// NewTimeline resolves every event parameter up front.
func NewTimeline(events []Event, resolve Resolver, opts ...Option) (*Timeline, error) {
	tl := &Timeline{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(tl)
	}

	for i, ev := range events {
		h, err := resolve(ev.Param)
		if err != nil {
			return nil, errors.Wrapf(err, "event %d", i)
		}
		set := &action{at: ev.At, handle: h, value: ev.Value}
		tl.actions = append(tl.actions, set)
		if ev.Until > ev.At {
			undo := &action{at: ev.Until, handle: h}
			set.restore = undo
			tl.actions = append(tl.actions, undo)
		}
	}
	sort.SliceStable(tl.actions, func(i, j int) bool { return tl.actions[i].at < tl.actions[j].at })
	return tl, nil
}

func (tl *Timeline) Len() int { return len(tl.actions) }

// Reset rewinds the timeline. Values already written are left as they are.
func (tl *Timeline) Reset() {
	tl.next = 0
	tl.last = 0
}

// Apply runs every action due at or before t. Going back in time rewinds
// the timeline first.
func (tl *Timeline) Apply(t float64) error {
	if t < tl.last {
		tl.Reset()
	}
	tl.last = t

	for tl.next < len(tl.actions) && tl.actions[tl.next].at <= t {
		a := tl.actions[tl.next]
		if a.restore != nil {
			a.restore.value = *a.handle
		}
		*a.handle = a.value
		tl.next++
		tl.logger.Debug("scenario event", zap.Float64("t", t), zap.Float64("value", a.value))
	}
	return nil
}
