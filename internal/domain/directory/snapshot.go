package directory

// Snapshot is an immutable view of the directory at a point in time.
// It is safe to share across concurrent resolutions; nothing in this core
// mutates it after construction.
type Snapshot struct {
	actors  []Actor
	units   []OrgUnit
	byID    map[string]Actor
	unitsBy map[string]OrgUnit
	reports map[string][]string
}

// NewSnapshot builds a snapshot with lookup indexes from directory data
func NewSnapshot(actors []Actor, units []OrgUnit) *Snapshot {
	s := &Snapshot{
		actors:  actors,
		units:   units,
		byID:    make(map[string]Actor, len(actors)),
		unitsBy: make(map[string]OrgUnit, len(units)),
		reports: make(map[string][]string),
	}
	for _, a := range actors {
		s.byID[a.ID] = a
		if a.ManagerID != "" {
			s.reports[a.ManagerID] = append(s.reports[a.ManagerID], a.ID)
		}
	}
	for _, u := range units {
		s.unitsBy[u.ID] = u
	}
	return s
}

// Actors returns all actors in the snapshot
func (s *Snapshot) Actors() []Actor {
	return s.actors
}

// Units returns all org units in the snapshot
func (s *Snapshot) Units() []OrgUnit {
	return s.units
}

// Actor looks up an actor by id
func (s *Snapshot) Actor(id string) (Actor, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Unit looks up an org unit by id
func (s *Snapshot) Unit(id string) (OrgUnit, bool) {
	u, ok := s.unitsBy[id]
	return u, ok
}

// UnitName resolves a unit id to its name, empty if unknown
func (s *Snapshot) UnitName(id string) string {
	if u, ok := s.unitsBy[id]; ok {
		return u.Name
	}
	return ""
}

// DirectReportIDs returns the ids of actors whose manager is the given actor.
// Direct reports only, never transitive.
func (s *Snapshot) DirectReportIDs(managerID string) []string {
	return s.reports[managerID]
}
