package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/openHPI/customers/pkg/monitoring"
)

var (
	// ErrInvalidArgument is returned when a nil entity is passed to Save.
	ErrInvalidArgument = errors.New("entity cannot be nil")
	ErrUnknownIDPolicy = errors.New("unknown id policy")
	// ErrIDOverflow is returned by Save when no id above the highest assigned one is left.
	ErrIDOverflow = errors.New("no id left to assign")
)

// ID identifies an entity in a Storage. UnsetID marks an entity that has not been saved yet.
type ID int64

const UnsetID ID = 0

// NewID parses a string into an ID.
func NewID(id string) (ID, error) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	return ID(parsed), err
}

// ToString parses an ID back to a string.
func (id ID) ToString() string {
	return strconv.FormatInt(int64(id), 10)
}

// Entity is the capability a type needs to be stored in a Storage.
// The zero value of T (usually a nil pointer) is treated as an absent entity.
type Entity[T any] interface {
	comparable
	ID() ID
	SetID(id ID)
	// Equal reports whether both entities hold the same values.
	Equal(other T) bool
}

// Storage is an interface for storing entities keyed by their ID.
type Storage[T Entity[T]] interface {
	// FindAll returns all entities from the storage in no particular order.
	FindAll() []T

	// FindByID returns the entity with the passed id.
	// Iff the entity does not exist in the storage, ok will be false.
	FindByID(id ID) (o T, ok bool)

	// Save stores the entity and returns it.
	// If the entity has no id yet, the next id is assigned according to the IDPolicy.
	// It overwrites the old entity if one with the same id was already stored.
	Save(o T) (T, error)

	// Delete removes all entities that are equal to the passed one.
	// It does nothing if no such entity is present in the storage.
	Delete(o T)

	// DeleteByID removes the entity with the passed id from the storage.
	// It reports whether an entity was removed.
	DeleteByID(id ID) (deleted bool)

	// Purge removes all entities from the storage.
	Purge()

	// Length returns the number of currently stored entities.
	Length() uint
}

// IDPolicy decides which id is assigned to an entity saved without one.
type IDPolicy string

const (
	// IDPolicyReuse assigns the highest stored id plus one, or 1 for an empty storage.
	// Ids of deleted entities at the top of the range are handed out again.
	IDPolicyReuse IDPolicy = "reuse"
	// IDPolicySequence assigns ids from a counter that never goes backwards.
	IDPolicySequence IDPolicy = "sequence"
)

// ParseIDPolicy returns the IDPolicy with the passed name.
func ParseIDPolicy(policy string) (IDPolicy, error) {
	switch p := IDPolicy(policy); p {
	case IDPolicyReuse, IDPolicySequence:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIDPolicy, policy)
	}
}

// EventType is an enum type to declare the different causes of a monitoring event.
type EventType string

const (
	Creation     EventType = "creation"
	Deletion     EventType = "deletion"
	Periodically EventType = "periodically"
)

// WriteCallback is called before an event gets monitored.
// Iff eventType is Periodically it is no object provided.
type WriteCallback[T any] func(p *write.Point, object T, eventType EventType)

// localStorage stores entities in the local application memory.
type localStorage[T Entity[T]] struct {
	sync.RWMutex
	objects     map[ID]T
	policy      IDPolicy
	lastID      ID
	measurement string
	callback    WriteCallback[T]
}

// NewLocalStorage responds with a Storage implementation.
// This implementation stores the data thread-safe in the local application memory.
func NewLocalStorage[T Entity[T]](policy IDPolicy) *localStorage[T] {
	return &localStorage[T]{
		objects: make(map[ID]T),
		policy:  policy,
	}
}

// NewMonitoredLocalStorage responds with a Storage implementation.
// All write operations are monitored in the passed measurement.
// Iff callback is set, it will be called on a write operation.
// Iff additionalEvents not zero, the duration will be used to periodically send additional monitoring events.
func NewMonitoredLocalStorage[T Entity[T]](ctx context.Context, policy IDPolicy,
	measurement string, callback WriteCallback[T], additionalEvents time.Duration,
) *localStorage[T] {
	s := NewLocalStorage[T](policy)
	s.measurement = measurement
	s.callback = callback
	if additionalEvents != 0 {
		go s.periodicallySendMonitoringData(ctx, additionalEvents)
	}
	return s
}

func (s *localStorage[T]) FindAll() []T {
	s.RLock()
	defer s.RUnlock()
	o := make([]T, 0, len(s.objects))
	for _, value := range s.objects {
		o = append(o, value)
	}
	return o
}

func (s *localStorage[T]) FindByID(id ID) (o T, ok bool) {
	s.RLock()
	defer s.RUnlock()
	o, ok = s.objects[id]
	return
}

func (s *localStorage[T]) Save(o T) (T, error) {
	var absent T
	if o == absent {
		return absent, ErrInvalidArgument
	}

	s.Lock()
	defer s.Unlock()
	if o.ID() == UnsetID {
		id, err := s.unsafeNextID()
		if err != nil {
			return absent, err
		}
		o.SetID(id)
	}
	if o.ID() > s.lastID {
		s.lastID = o.ID()
	}
	s.objects[o.ID()] = o
	s.sendMonitoringData(o.ID(), o, Creation, s.unsafeLength())
	return o, nil
}

func (s *localStorage[T]) Delete(o T) {
	s.Lock()
	defer s.Unlock()
	for id, stored := range s.objects {
		if stored.Equal(o) {
			s.unsafeDelete(id, stored)
		}
	}
}

func (s *localStorage[T]) DeleteByID(id ID) (deleted bool) {
	s.Lock()
	defer s.Unlock()
	for key, stored := range s.objects {
		if stored.ID() == id {
			s.unsafeDelete(key, stored)
			deleted = true
		}
	}
	return deleted
}

func (s *localStorage[T]) Purge() {
	s.Lock()
	defer s.Unlock()
	for id, object := range s.objects {
		s.sendMonitoringData(id, object, Deletion, 0)
	}
	s.objects = make(map[ID]T)
}

func (s *localStorage[T]) Length() uint {
	s.RLock()
	defer s.RUnlock()
	return s.unsafeLength()
}

func (s *localStorage[T]) unsafeDelete(key ID, o T) {
	delete(s.objects, key)
	s.sendMonitoringData(key, o, Deletion, s.unsafeLength())
}

// unsafeNextID must be called while holding the write lock.
func (s *localStorage[T]) unsafeNextID() (ID, error) {
	highest := s.lastID
	if s.policy != IDPolicySequence {
		highest = 0
		for id := range s.objects {
			if id > highest {
				highest = id
			}
		}
	}
	if highest == math.MaxInt64 {
		return UnsetID, ErrIDOverflow
	}
	return highest + 1, nil
}

func (s *localStorage[T]) unsafeLength() uint {
	length := len(s.objects)
	return uint(length)
}

func (s *localStorage[T]) sendMonitoringData(id ID, object T, eventType EventType, count uint) {
	if s.measurement != "" {
		dataPoint := influxdb2.NewPointWithMeasurement(s.measurement)
		dataPoint.AddTag("id", id.ToString())
		dataPoint.AddTag("event_type", string(eventType))
		dataPoint.AddField("count", count)

		if s.callback != nil {
			s.callback(dataPoint, object, eventType)
		}

		monitoring.WriteInfluxPoint(dataPoint)
	}
}

func (s *localStorage[T]) periodicallySendMonitoringData(ctx context.Context, d time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
			var stub T
			s.sendMonitoringData(UnsetID, stub, Periodically, s.Length())
		}
	}
}
