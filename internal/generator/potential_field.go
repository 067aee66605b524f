package generator

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/registry"
	"github.com/san-kum/phrictl/internal/spatial"
)

// MinObjectDistance is the distance below which an object is ignored.
const MinObjectDistance = 1e-3

type ObjectType int

const (
	Attractive ObjectType = iota
	Repulsive
)

func (t ObjectType) String() string {
	if t == Attractive {
		return "attractive"
	}
	return "repulsive"
}

func ParseObjectType(s string) (ObjectType, error) {
	switch s {
	case "attractive":
		return Attractive, nil
	case "repulsive":
		return Repulsive, nil
	}
	return Repulsive, errors.Errorf("generator: unknown object type %q", s)
}

// Object is a point source of the potential field. Position is a shared
// handle expressed in Frame.
type Object struct {
	Type      ObjectType
	Gain      float64
	Threshold float64
	Position  *r3.Vector
	Frame     spatial.Frame
}

// PotentialField attracts the control point toward targets and pushes it
// away from obstacles closer than their threshold distance. The torque part
// of the output is always zero.
type PotentialField struct {
	forceBase
	objects *registry.Ordered[Object]
}

// NewPotentialField returns a generator whose output is expressed in frame.
func NewPotentialField(frame spatial.Frame) *PotentialField {
	g := &PotentialField{objects: registry.New[Object]()}
	g.forceBase = newForceBase(g, frame)
	return g
}

// Add registers an object. With force set, an object with the same name is replaced.
func (g *PotentialField) Add(name string, obj Object, force bool) error {
	if obj.Position == nil {
		return errors.Errorf("generator: object %q has no position", name)
	}
	return g.objects.Add(name, obj, force)
}

func (g *PotentialField) Remove(name string) error {
	_, err := g.objects.Remove(name)
	return err
}

func (g *PotentialField) Get(name string) (Object, error) {
	return g.objects.Get(name)
}

func (g *PotentialField) Objects() *registry.Ordered[Object] { return g.objects }

func (g *PotentialField) update(out *spatial.Wrench) {
	if g.robot == nil {
		return
	}
	pose := &g.robot.Task.State.Pose
	origin := pose.Origin(g.frame)

	var total r3.Vector
	for _, obj := range g.objects.Items() {
		pos := pose.Express(*obj.Position, obj.Frame, g.frame)
		total = total.Add(objectForce(&obj, pos.Sub(origin)))
	}
	out.SetLinear(total)
}

// objectForce returns the contribution of obj given the vector from the
// control point to it.
func objectForce(obj *Object, toObject r3.Vector) r3.Vector {
	distance := toObject.Norm()
	if distance <= MinObjectDistance {
		return r3.Vector{}
	}
	unit := toObject.Mul(1 / distance)

	if obj.Type == Attractive {
		return unit.Mul(obj.Gain)
	}
	if distance < obj.Threshold {
		return unit.Mul(obj.Gain * (1/obj.Threshold - 1/distance))
	}
	return r3.Vector{}
}
