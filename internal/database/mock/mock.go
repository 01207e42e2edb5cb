// Package mock provides in-memory implementations of the database
// interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/match"
)

// ProfessorStore is an in-memory database.ProfessorStore.
type ProfessorStore struct {
	mu     sync.RWMutex
	nextID int64
	profs  map[string]*database.Professor

	// Error injection
	CreateError error
	GetError    error
}

// NewProfessorStore creates a mock professor store.
func NewProfessorStore() *ProfessorStore {
	return &ProfessorStore{profs: make(map[string]*database.Professor)}
}

func (m *ProfessorStore) Create(ctx context.Context, prof *database.Professor) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.profs[prof.Username]; exists {
		return fmt.Errorf("username %s already exists", prof.Username)
	}
	m.nextID++
	prof.ID = m.nextID
	cp := *prof
	m.profs[prof.Username] = &cp
	return nil
}

func (m *ProfessorStore) GetByUsername(ctx context.Context, username string) (*database.Professor, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profs[username]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ClassStore is an in-memory database.ClassStore.
type ClassStore struct {
	mu      sync.RWMutex
	nextID  int64
	classes map[int64]*database.ClassRoom

	CreateError error
	GetError    error
	ListError   error
}

// NewClassStore creates a mock class store.
func NewClassStore() *ClassStore {
	return &ClassStore{classes: make(map[int64]*database.ClassRoom)}
}

func (m *ClassStore) Create(ctx context.Context, class *database.ClassRoom) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	class.ID = m.nextID
	cp := *class
	m.classes[class.ID] = &cp
	return nil
}

func (m *ClassStore) Get(ctx context.Context, id int64) (*database.ClassRoom, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *ClassStore) ListByProfessor(ctx context.Context, professorID int64) ([]database.ClassRoom, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []database.ClassRoom
	for _, c := range m.classes {
		if c.ProfessorID == professorID {
			list = append(list, *c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// RosterStore is an in-memory database.RosterStore.
type RosterStore struct {
	mu       sync.RWMutex
	nextID   int64
	students []*database.Student

	CreateError error
	ListError   error
	GetError    error
}

// NewRosterStore creates a mock roster store.
func NewRosterStore() *RosterStore {
	return &RosterStore{}
}

func (m *RosterStore) CreateStudent(ctx context.Context, student *database.Student) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	student.ID = m.nextID
	cp := *student
	m.students = append(m.students, &cp)
	return nil
}

func (m *RosterStore) ListStudents(ctx context.Context, classroomID int64) ([]database.Student, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []database.Student
	for _, s := range m.students {
		if s.ClassroomID == classroomID {
			list = append(list, *s)
		}
	}
	return list, nil
}

func (m *RosterStore) GetStudentByRoll(ctx context.Context, classroomID int64, roll string) (*database.Student, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.students {
		if s.ClassroomID == classroomID && s.RollNumber == roll {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// EventStore is an in-memory database.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	nextID int64
	events []attendance.MatchEvent

	AppendError error
	QueryError  error
	DeleteError error
}

// NewEventStore creates a mock event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

func (m *EventStore) Append(ctx context.Context, ev *attendance.MatchEvent) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ev.ID = m.nextID
	m.events = append(m.events, *ev)
	return nil
}

func (m *EventStore) QueryDay(ctx context.Context, classroomID int64, date string) ([]attendance.MatchEvent, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []attendance.MatchEvent
	for _, ev := range m.events {
		if ev.ClassroomID == classroomID && ev.Date == date {
			list = append(list, ev)
		}
	}
	return list, nil
}

func (m *EventStore) DeleteStudentDay(ctx context.Context, studentID int64, date string) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []attendance.MatchEvent
	var removed int64
	for _, ev := range m.events {
		if ev.StudentID == studentID && ev.Date == date {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	m.events = kept
	return removed, nil
}

// ProbeLog is an in-memory database.ProbeLog.
type ProbeLog struct {
	mu     sync.RWMutex
	probes []database.Probe

	AppendError error
	FindError   error
}

// NewProbeLog creates a mock probe log.
func NewProbeLog() *ProbeLog {
	return &ProbeLog{}
}

func (m *ProbeLog) Append(ctx context.Context, probe *database.Probe) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, *probe)
	return nil
}

func (m *ProbeLog) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]database.Probe, []float64, error) {
	if m.FindError != nil {
		return nil, nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		probe database.Probe
		dist  float64
	}
	all := make([]scored, 0, len(m.probes))
	for _, p := range m.probes {
		all = append(all, scored{probe: p, dist: match.CosineDistance(embedding, p.Embedding)})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	probes := make([]database.Probe, len(all))
	distances := make([]float64, len(all))
	for i, s := range all {
		probes[i] = s.probe
		distances[i] = s.dist
	}
	return probes, distances, nil
}

// Count returns the number of logged probes.
func (m *ProbeLog) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.probes)
}
